package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
)

var now = time.Date(2024, 12, 20, 15, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRelativeCount(t *testing.T) {
	tests := []struct {
		query string
		span  time.Duration
	}{
		{"last 7 days", 7 * day},
		{"Show sentiment trends for the LAST 7 DAYS", 7 * day},
		{"past 2 weeks", 14 * day},
		{"Generate a plot for the last 14 days", 14 * day},
		{"last 3 months", 90 * day},
		{"previous 1 day", day},
		{"past 1 year", 365 * day},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rng, err := Resolve(tt.query, now)
			require.NoError(t, err)
			assert.Equal(t, now, rng.End)
			assert.Equal(t, tt.span, rng.End.Sub(rng.Start))
		})
	}
}

func TestResolveNamedPeriod(t *testing.T) {
	tests := []struct {
		query string
		span  time.Duration
	}{
		{"Create visualization for the past month", 30 * day},
		{"last week", 7 * day},
		{"past day", day},
		{"previous year", 365 * day},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rng, err := Resolve(tt.query, now)
			require.NoError(t, err)
			assert.Equal(t, now, rng.End)
			assert.Equal(t, tt.span, rng.Duration())
		})
	}
}

func TestResolveRejectsBadCounts(t *testing.T) {
	for _, query := range []string{
		"last 0 days", "past -3 weeks", "last few days", "last 2.5 weeks",
		"last 106753 days", "last 213504 days", "last 30501 weeks",
	} {
		t.Run(query, func(t *testing.T) {
			_, err := Resolve(query, now)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestResolveUnparseable(t *testing.T) {
	for _, query := range []string{"nonsense query", "show me everything", "weekly report", "Dec 5"} {
		t.Run(query, func(t *testing.T) {
			_, err := Resolve(query, now)
			assert.ErrorIs(t, err, apperrors.ErrUnparseableRange)
		})
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	_, err := Resolve("   ", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveAbsoluteInterval(t *testing.T) {
	tests := []struct {
		query string
		start time.Time
		end   time.Time
	}{
		{"Dec 1 to Dec 15", date(2024, 12, 1), date(2024, 12, 16)},
		{"December 1st - December 15th", date(2024, 12, 1), date(2024, 12, 16)},
		{"2024-11-03 to 2024-11-05", date(2024, 11, 3), date(2024, 11, 6)},
		{"from 11/28 to 12/02", date(2024, 11, 28), date(2024, 12, 3)},
		{"Nov 30, 2023 through Dec 2, 2023", date(2023, 11, 30), date(2023, 12, 3)},
		{"Dec 1 to Dec 3, 2023", date(2023, 12, 1), date(2023, 12, 4)},
		{"Dec 4 to Dec 4", date(2024, 12, 4), date(2024, 12, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rng, err := Resolve(tt.query, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, rng.Start)
			assert.Equal(t, tt.end, rng.End)
		})
	}
}

func TestResolveReversedAbsoluteInterval(t *testing.T) {
	forward, err := Resolve("Dec 1 to Dec 15", now)
	require.NoError(t, err)
	reversed, err := Resolve("Dec 15 to Dec 1", now)
	require.NoError(t, err)

	assert.Equal(t, forward, reversed)
}

func TestResolveAbsoluteTakesPrecedence(t *testing.T) {
	rng, err := Resolve("last 7 days between Dec 1 and Dec 3", now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, 12, 1), rng.Start)
	assert.Equal(t, date(2024, 12, 4), rng.End)
}

func TestResolveInvalidCalendarDate(t *testing.T) {
	_, err := Resolve("Feb 30 to Mar 2", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Resolve("13/01 to 14/01", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	rng, err := Resolve("Dec 1 to Dec 2", now.In(loc))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, loc), rng.Start)
	assert.Equal(t, loc, rng.Start.Location())
}

func TestResolverMaxSpan(t *testing.T) {
	r := NewResolver(30 * day)

	_, err := r.Resolve("last 31 days", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = r.Resolve("last 30 days", now)
	assert.NoError(t, err)

	_, err = r.Resolve("last 100000 days", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewResolver(0).Resolve("last 10 years", now)
	assert.NoError(t, err)

	_, err = NewResolver(0).Resolve("last 213504 days", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestResolveAcrossNewYear(t *testing.T) {
	rng, err := Resolve("Dec 28 to Jan 3", now)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 12, 28), rng.Start)
	assert.Equal(t, date(2024, 1, 4), rng.End)

	january := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	rng, err = Resolve("Dec 28 to Jan 3", january)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 12, 28), rng.Start)
	assert.Equal(t, date(2025, 1, 4), rng.End)

	// an explicit year keeps the literal, reversed reading
	rng, err = Resolve("Dec 28, 2024 to Jan 3, 2024", now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 3), rng.Start)
	assert.Equal(t, date(2024, 12, 29), rng.End)
}

func TestResolveRejectsOutOfRangeYears(t *testing.T) {
	for _, query := range []string{"1500-01-01 to 1500-01-05", "2300-01-01 to 2300-01-05", "Dec 1 to Dec 3, 1066"} {
		t.Run(query, func(t *testing.T) {
			_, err := Resolve(query, now)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}
