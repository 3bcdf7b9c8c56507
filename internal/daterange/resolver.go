// Package daterange turns natural-language time windows such as
// "last 7 days" or "Dec 1 to Dec 15" into concrete half-open intervals.
package daterange

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/models"
)

// DefaultMaxSpan caps how far back a query may reach.
const DefaultMaxSpan = 365 * day

type Resolver struct {
	matchers []matcher
	maxSpan  time.Duration
}

// NewResolver returns a resolver that rejects ranges longer than maxSpan.
// A non-positive maxSpan disables the cap.
func NewResolver(maxSpan time.Duration) *Resolver {
	return &Resolver{
		// precedence order: an absolute interval wins over relative phrases
		matchers: []matcher{
			absoluteIntervalMatcher{},
			relativeCountMatcher{},
			namedPeriodMatcher{},
		},
		maxSpan: maxSpan,
	}
}

// Resolve parses query relative to now.
func (r *Resolver) Resolve(query string, now time.Time) (models.ResolvedRange, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return models.ResolvedRange{}, apperrors.InvalidInput("range query is empty")
	}

	for _, m := range r.matchers {
		rng, ok, err := m.match(normalized, now)
		if !ok {
			continue
		}
		if err != nil {
			return models.ResolvedRange{}, err
		}
		if rng.Start.After(rng.End) {
			return models.ResolvedRange{}, apperrors.UnparseableRange(query)
		}
		if r.maxSpan > 0 && rng.Duration() > r.maxSpan {
			return models.ResolvedRange{}, apperrors.InvalidInput("range %q exceeds %d days", query, int(r.maxSpan/day))
		}

		slog.Debug("[DateRangeResolver] Resolved range",
			slog.String("query", query),
			slog.String("pattern", string(m.kind())),
			slog.Time("start", rng.Start),
			slog.Time("end", rng.End))
		return rng, nil
	}

	return models.ResolvedRange{}, apperrors.UnparseableRange(query)
}

// Resolve uses a resolver with the default span cap.
func Resolve(query string, now time.Time) (models.ResolvedRange, error) {
	return NewResolver(DefaultMaxSpan).Resolve(query, now)
}
