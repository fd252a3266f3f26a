// Package irdb downloads protocol parameters from the IRDB code tables.
//
// Each table is a CSV file with the header
//
//	functionname,protocol,device,subdevice,function
package irdb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/eivy/irgen/protocol"
)

// DefaultBaseURL serves the tables of github.com/probonopd/irdb.
const DefaultBaseURL = "https://cdn.jsdelivr.net/gh/probonopd/irdb@master/codes"

var header = []string{"functionname", "protocol", "device", "subdevice", "function"}

// Row is one function of a device table.
type Row struct {
	FunctionName string
	Protocol     string
	Device       int
	Subdevice    int
	Function     int
}

// Proto resolves the protocol name of the row.
func (r Row) Proto() (protocol.Protocol, error) {
	return protocol.Parse(r.Protocol)
}

// Params returns the row as protocol parameters.
func (r Row) Params() protocol.Params {
	return protocol.Params{
		Device:    r.Device,
		Subdevice: r.Subdevice,
		Function:  r.Function,
	}
}

type options struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxTries   uint
	// Retry intervals grow exponentially from InitialInterval up to
	// MaxInterval.
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             *zap.SugaredLogger
}

func newOptions() *options {
	return &options{
		BaseURL:         DefaultBaseURL,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
		MaxTries:        5,
		InitialInterval: backoff.DefaultInitialInterval,
		MaxInterval:     10 * time.Second,
		Log:             zap.NewNop().Sugar(),
	}
}

// ClientOption configures a Client.
type ClientOption func(*options)

// WithBaseURL sets the URL table paths are resolved against.
func WithBaseURL(url string) ClientOption {
	return func(o *options) {
		o.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(o *options) {
		o.HTTPClient = client
	}
}

// WithRetry sets how often and how fast failed downloads are retried.
func WithRetry(maxTries uint, initialInterval, maxInterval time.Duration) ClientOption {
	return func(o *options) {
		o.MaxTries = maxTries
		o.InitialInterval = initialInterval
		o.MaxInterval = maxInterval
	}
}

// WithMaxTries limits the number of download attempts.
func WithMaxTries(maxTries uint) ClientOption {
	return func(o *options) {
		o.MaxTries = maxTries
	}
}

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) ClientOption {
	return func(o *options) {
		o.Log = log
	}
}

// Client fetches IRDB tables.
type Client struct {
	baseURL         string
	http            *http.Client
	maxTries        uint
	initialInterval time.Duration
	maxInterval     time.Duration
	log             *zap.SugaredLogger
}

// NewClient creates a new Client.
func NewClient(opts ...ClientOption) *Client {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Client{
		baseURL:         strings.TrimSuffix(o.BaseURL, "/"),
		http:            o.HTTPClient,
		maxTries:        o.MaxTries,
		initialInterval: o.InitialInterval,
		maxInterval:     o.MaxInterval,
		log:             o.Log,
	}
}

// Fetch downloads and parses the table at path, for example
// "Sony/Unknown_RM-U305A/26,-1.csv". Network errors and server errors are
// retried, client errors are not.
func (c *Client) Fetch(ctx context.Context, path string) ([]Row, error) {
	url := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.get(ctx, url)
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     c.initialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         c.maxInterval,
		}),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warnw("irdb download failed, retrying",
				zap.String("url", url),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", path, err)
	}

	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	c.log.Debugw("fetched irdb table", zap.String("url", url), zap.Int("rows", len(rows)))
	return rows, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
	}
	return body, nil
}

// ParseCSV reads a table. Columns are matched by header name, so their order
// does not matter.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty table")
		}
		return nil, err
	}
	columns := make(map[string]int, len(names))
	for i, name := range names {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range header {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		values := make([]int, 3)
		for i, name := range header[2:] {
			v, err := strconv.Atoi(strings.TrimSpace(record[columns[name]]))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, name, err)
			}
			values[i] = v
		}
		rows = append(rows, Row{
			FunctionName: record[columns["functionname"]],
			Protocol:     record[columns["protocol"]],
			Device:       values[0],
			Subdevice:    values[1],
			Function:     values[2],
		})
	}
}
