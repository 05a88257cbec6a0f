package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/decoder"
	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/models"
	"github.com/dharmasatrya/flightquery/internal/returnflow"
	"github.com/dharmasatrya/flightquery/internal/tfs"
)

// Mode names the render mode handed to the transport. Which mode works for a
// given deployment is the transport's concern.
type Mode string

const (
	ModeCommon   Mode = "common"
	ModeFallback Mode = "fallback"
	ModeLocal    Mode = "local"
	ModeRemote   Mode = "remote"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCommon, ModeFallback, ModeLocal, ModeRemote:
		return m, nil
	case "":
		return ModeCommon, nil
	}
	return "", fmt.Errorf("unknown fetch mode %q", s)
}

// Fetcher retrieves the raw result body for a token. Implementations live
// outside this module.
type Fetcher interface {
	FetchPayload(ctx context.Context, token tfs.Token, session models.SessionToken, mode Mode) ([]byte, error)
}

type FetchError struct {
	Mode     Mode
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%d attempts): %s", e.Mode, e.Attempts, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Config struct {
	Mode        Mode
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:       ModeCommon,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		RetryDelays: []time.Duration{
			200 * time.Millisecond,
			500 * time.Millisecond,
		},
	}
}

type Client struct {
	fetcher Fetcher
	decoder *decoder.Decoder
	store   diagnostics.Store
	log     *zap.Logger
	config  Config
}

type Result struct {
	Token    tfs.Token             `json:"token"`
	Session  models.SessionToken   `json:"session,omitempty"`
	Decoded  *models.DecodedResult `json:"result"`
	Attempts int                   `json:"attempts"`
	Elapsed  time.Duration         `json:"elapsed"`
}

func NewClient(f Fetcher, dec *decoder.Decoder, store diagnostics.Store, log *zap.Logger, config Config) *Client {
	if dec == nil {
		dec = decoder.New(decoder.WithLogger(log))
	}
	if store == nil {
		store = diagnostics.NewNoOpStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if config.Mode == "" {
		config.Mode = ModeCommon
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Client{
		fetcher: f,
		decoder: dec,
		store:   store,
		log:     log,
		config:  config,
	}
}

// Search encodes q, fetches the result body and decodes it. A partial decode
// is returned as a result, not an error; see DecodedResult.Loss.
func (c *Client) Search(ctx context.Context, q models.SearchQuery, session models.SessionToken) (*Result, error) {
	token, err := tfs.Encode(q)
	if err != nil {
		return nil, err
	}
	c.incr(ctx, diagnostics.CounterTokensIssued)
	return c.SearchToken(ctx, token, session)
}

// SearchReturn continues a round trip from a chosen outbound itinerary,
// carrying its session token into the return search.
func (c *Client) SearchReturn(ctx context.Context, outbound models.Itinerary, returnDate models.Date, opts returnflow.Options) (*Result, error) {
	req, err := returnflow.Continue(outbound, returnDate, opts)
	if err != nil {
		return nil, err
	}
	c.incr(ctx, diagnostics.CounterTokensIssued)
	return c.SearchToken(ctx, req.Token, req.Session)
}

func (c *Client) SearchToken(ctx context.Context, token tfs.Token, session models.SessionToken) (*Result, error) {
	start := time.Now()

	searchCtx := ctx
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, attempts, err := c.fetchWithRetry(searchCtx, token, session)
	if err != nil {
		return nil, &FetchError{Mode: c.config.Mode, Attempts: attempts, Err: err}
	}

	decoded, err := c.decoder.DecodeBody(body, session)
	if err != nil {
		return nil, err
	}

	if err := c.store.RecordDecode(ctx, diagnostics.ReportFor(decoded, session)); err != nil {
		c.log.Warn("record decode failed", zap.Error(err))
	}

	return &Result{
		Token:    token,
		Session:  session,
		Decoded:  decoded,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, token tfs.Token, session models.SessionToken) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		default:
		}

		if attempt > 0 && len(c.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(c.config.RetryDelays) {
				delayIdx = len(c.config.RetryDelays) - 1
			}

			select {
			case <-time.After(c.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			}
		}

		body, err := c.fetcher.FetchPayload(ctx, token, session, c.config.Mode)
		if err == nil {
			return body, attempt + 1, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, attempt + 1, err
		}

		lastErr = err
		c.log.Warn("fetch attempt failed",
			zap.String("mode", string(c.config.Mode)),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, c.config.MaxRetries + 1, lastErr
}

func (c *Client) incr(ctx context.Context, counter string) {
	if err := c.store.Incr(ctx, counter); err != nil {
		c.log.Warn("diagnostics counter failed", zap.String("counter", counter), zap.Error(err))
	}
}
