// Package airtable is the job and contact store backed by an Airtable base.
package airtable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	at "github.com/mehanizm/airtable"
)

const (
	// DefaultTimeout bounds each API request.
	DefaultTimeout = 30 * time.Second

	DefaultJobsTable     = "Applications"
	DefaultContactsTable = "Contacts"
)

// Config configures a Client.
type Config struct {
	APIKey        string
	BaseID        string
	JobsTable     string
	ContactsTable string
	// BaseURL overrides the public API endpoint (tests).
	BaseURL string
	// RateLimit is requests per second; zero keeps the library default.
	RateLimit int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Client reads and writes job applications and contacts.
type Client struct {
	jobs     *at.Table
	contacts *at.Table
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a Client. The API key and base ID are required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("airtable API key is required")
	}
	if cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}

	api := at.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		if err := api.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")); err != nil {
			return nil, fmt.Errorf("invalid airtable base URL: %w", err)
		}
	}
	if cfg.RateLimit > 0 {
		api.SetRateLimit(cfg.RateLimit)
	}

	c := &Client{
		jobs:     api.GetTable(cfg.BaseID, orDefault(cfg.JobsTable, DefaultJobsTable)),
		contacts: api.GetTable(cfg.BaseID, orDefault(cfg.ContactsTable, DefaultContactsTable)),
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// query narrows a list call.
type query struct {
	formula string
	fields  []string
}

// list fetches every page of a filtered table query.
func (c *Client) list(ctx context.Context, op string, table *at.Table, q query) ([]*at.Record, error) {
	var (
		all    []*at.Record
		offset string
	)
	for {
		req := table.GetRecords().WithFilterFormula(q.formula)
		if len(q.fields) > 0 {
			req = req.ReturnFields(q.fields...)
		}
		if offset != "" {
			req = req.WithOffset(offset)
		}

		page, err := withTimeout(ctx, c.timeout, req.DoContext)
		if err != nil {
			return nil, c.fail(ctx, op, err)
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

func (c *Client) get(ctx context.Context, op string, table *at.Table, id string) (*at.Record, error) {
	rec, err := withTimeout(ctx, c.timeout, func(ctx context.Context) (*at.Record, error) {
		return table.GetRecordContext(ctx, id)
	})
	if err != nil {
		return nil, c.fail(ctx, op, err)
	}
	return rec, nil
}

func (c *Client) patch(ctx context.Context, op string, table *at.Table, id string, fields map[string]any) error {
	_, err := withTimeout(ctx, c.timeout, func(ctx context.Context) (*at.Records, error) {
		return table.UpdateRecordsPartialContext(ctx, &at.Records{
			Records: []*at.Record{{ID: id, Fields: fields}},
		})
	})
	if err != nil {
		return c.fail(ctx, op, err)
	}
	return nil
}

func (c *Client) create(ctx context.Context, op string, table *at.Table, fields map[string]any) (string, error) {
	created, err := withTimeout(ctx, c.timeout, func(ctx context.Context) (*at.Records, error) {
		return table.AddRecordsContext(ctx, &at.Records{
			Records: []*at.Record{{Fields: fields}},
		})
	})
	if err != nil {
		return "", c.fail(ctx, op, err)
	}
	if len(created.Records) == 0 {
		return "", fmt.Errorf("%s: no record returned", op)
	}
	return created.Records[0].ID, nil
}

// fail turns an HTTP failure from the library into *APIError and wraps
// everything else with op.
func (c *Client) fail(ctx context.Context, op string, err error) error {
	var httpErr *at.HTTPClientError
	if !errors.As(err, &httpErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.WarnContext(ctx, "airtable request failed",
		slog.String("op", op),
		slog.Int("status", httpErr.StatusCode))
	body := ""
	if httpErr.Err != nil {
		body = strings.TrimSpace(httpErr.Err.Error())
	}
	return &APIError{Op: op, StatusCode: httpErr.StatusCode, Body: body}
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// quote renders s as a formula string literal.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
