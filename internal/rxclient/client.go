// Package rxclient reads the message list and stats snapshot from the backend API.
package rxclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/metrics"
	"github.com/tOgg1/rxconsole/internal/models"
)

const (
	OpMessages = "messages"
	OpStats    = "stats"

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds each request; zero keeps the transport default.
	Timeout time.Duration
	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// Client fetches poll cycles from the backend. It never retries; the next
// scheduled cycle is the retry.
type Client struct {
	base   string
	token  string
	http   *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

// Snapshot is the result of one successful poll cycle.
type Snapshot struct {
	Messages  []models.Message
	Stats     models.Stats
	CycleID   string
	FetchedAt time.Time
}

// FetchError reports a failed read within a poll cycle.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: GET %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", parsed.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		base:   base,
		token:  strings.TrimSpace(cfg.Token),
		http:   httpClient,
		logger: logging.Component("rxclient"),
		now:    time.Now,
	}, nil
}

// MessagesURL returns the message list endpoint for q.
func (c *Client) MessagesURL(q models.QueryParams) string {
	return fmt.Sprintf("%s/messages/?role=%s&limit=%d", c.base, url.QueryEscape(q.Role), q.Limit)
}

// StatsURL returns the stats endpoint.
func (c *Client) StatsURL() string {
	return c.base + "/stats/"
}

// Fetch reads the message list and stats concurrently and returns once both
// reads finish. If either read fails the whole cycle fails, the other read is
// cancelled, and no partial snapshot is returned. A logger attached to ctx with
// logging.WithContext scopes the cycle's log lines.
func (c *Client) Fetch(ctx context.Context, q models.QueryParams) (Snapshot, error) {
	if err := q.Validate(); err != nil {
		return Snapshot{}, err
	}

	cycleID := uuid.NewString()
	logger := logging.WithCycle(logging.FromContext(ctx, c.logger), cycleID)
	started := c.now()

	var (
		messages         []models.Message
		stats            models.Stats
		msgErr, statsErr error
	)
	group, readCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		msgErr = c.getJSON(readCtx, OpMessages, c.MessagesURL(q), cycleID, &messages)
		return msgErr
	})
	group.Go(func() error {
		statsErr = c.getJSON(readCtx, OpStats, c.StatsURL(), cycleID, &stats)
		return statsErr
	})
	err := group.Wait()

	elapsed := c.now().Sub(started)
	if err != nil {
		metrics.ObservePoll(elapsed, 0, false)
		return Snapshot{}, cycleError(ctx, err, msgErr, statsErr)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	metrics.ObservePoll(elapsed, len(messages), true)
	logger.Debug().
		Int("messages", len(messages)).
		Int("stats_fields", stats.Len()).
		Dur("elapsed", elapsed).
		Msg("poll cycle complete")

	return Snapshot{
		Messages:  messages,
		Stats:     stats,
		CycleID:   cycleID,
		FetchedAt: c.now(),
	}, nil
}

// cycleError reports first, plus any read that failed on its own rather than
// through the cancellation first triggered.
func cycleError(ctx context.Context, first error, reads ...error) error {
	errs := []error{first}
	for _, err := range reads {
		if err == nil || err == first {
			continue
		}
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		errs = append(errs, err)
	}
	if len(errs) == 1 {
		return first
	}
	return errors.Join(errs...)
}

func (c *Client) getJSON(ctx context.Context, op, target, cycleID string, out any) error {
	redacted := logging.RedactURL(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{Op: op, URL: redacted, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, cycleID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error repeats the unredacted URL.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &FetchError{Op: op, URL: redacted, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = resp.Status
		}
		return &FetchError{Op: op, URL: redacted, Status: resp.StatusCode, Err: errors.New(detail)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, URL: redacted, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
