package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_KEY = "steamnoodles:processed_reviews"
	processedTTLSeconds  = 86400
)

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type ValkeyClient struct {
	Client valkey.Client
	cfg    ValkeyConfig
	mu     sync.Mutex
}

func NewValkeyClient(cfg ValkeyConfig) (*ValkeyClient, error) {
	client, err := connectValkey(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.Address))
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func connectValkey(cfg ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Address,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")

	client, err := connectValkey(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// MarkProcessed records key as ingested for the next 24 hours.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, key string) error {
	c := vc.client()
	completed := []valkey.Completed{
		c.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(key).Build().Pin(),
		c.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(processedTTLSeconds).Build().Pin(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, 3)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Marked review as processed",
		slog.String("key", key))
	return nil
}

// IsProcessed reports whether key was marked. Lookup errors count as not
// processed so ingestion never drops a review because the cache is down.
func (vc *ValkeyClient) IsProcessed(ctx context.Context, key string) bool {
	c := vc.client()
	res := vc.DoWithRetry(ctx, c.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(key).Build().Pin(), 3)

	if err := res.Error(); isConnectionError(err) {
		vc.recreateClient()
	}

	ok, err := res.AsBool()
	if err != nil {
		return false
	}

	return ok
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.client().DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.client().Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
