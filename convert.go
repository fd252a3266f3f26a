// Package irgen converts IR remote codes between protocol parameters, raw
// timings and the wire formats of IR blasters.
package irgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eivy/irgen/broadlink"
	"github.com/eivy/irgen/irdb"
	"github.com/eivy/irgen/metrics"
	"github.com/eivy/irgen/pronto"
	"github.com/eivy/irgen/protocol"
	"github.com/eivy/irgen/raw"
	"github.com/eivy/irgen/remo"
)

// Request describes one conversion.
type Request struct {
	Input  Input  `json:"input"`
	Output Output `json:"output"`
	// Data holds protocol parameters or the encoded input, depending on
	// Input.
	Data []string `json:"data"`
	// Repeats concatenates the signal with itself.
	Repeats int `json:"repeats"`
	// Path is the table to download for SourceIRDB.
	Path string `json:"path"`
}

// Code is a named raw signal.
type Code struct {
	Name   string
	Signal raw.Signal
}

// Result is the outcome of a conversion.
type Result struct {
	Codes []Code
	// Lines is the rendered output.
	Lines []string
}

// Fetcher downloads IRDB tables.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]irdb.Row, error)
}

type converterOptions struct {
	Log        *zap.SugaredLogger
	Metrics    *metrics.Collector
	Fetcher    Fetcher
	ProntoBase uint16
	RemoFreq   int
}

func newConverterOptions() *converterOptions {
	return &converterOptions{
		Log:        zap.NewNop().Sugar(),
		ProntoBase: 0x73,
		RemoFreq:   remo.DefaultFreq,
	}
}

// ConverterOption configures a Converter.
type ConverterOption func(*converterOptions)

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) ConverterOption {
	return func(o *converterOptions) {
		o.Log = log
	}
}

// WithMetrics records every conversion in collector.
func WithMetrics(collector *metrics.Collector) ConverterOption {
	return func(o *converterOptions) {
		o.Metrics = collector
	}
}

// WithFetcher sets the source of IRDB tables.
func WithFetcher(fetcher Fetcher) ConverterOption {
	return func(o *converterOptions) {
		o.Fetcher = fetcher
	}
}

// WithProntoBase sets the frequency base of generated Pronto codes.
func WithProntoBase(base uint16) ConverterOption {
	return func(o *converterOptions) {
		o.ProntoBase = base
	}
}

// WithRemoFreq sets the carrier frequency in kHz of generated Nature Remo
// signals.
func WithRemoFreq(freq int) ConverterOption {
	return func(o *converterOptions) {
		o.RemoFreq = freq
	}
}

// Converter runs conversion requests. It is safe for concurrent use.
type Converter struct {
	log        *zap.SugaredLogger
	metrics    *metrics.Collector
	fetcher    Fetcher
	prontoBase uint16
	remoFreq   int
}

// NewConverter creates a new Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	o := newConverterOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Converter{
		log:        o.Log,
		metrics:    o.Metrics,
		fetcher:    o.Fetcher,
		prontoBase: o.ProntoBase,
		remoFreq:   o.RemoFreq,
	}
}

// Convert loads, repeats and renders the codes of req. On error no partial
// result is returned.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result, err := c.convert(ctx, req)
	if c.metrics != nil {
		c.metrics.ObserveConversion(req.Input.String(), req.Output.String(), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Converter) convert(ctx context.Context, req Request) (*Result, error) {
	codes, err := c.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Repeats > 1 {
		for i := range codes {
			codes[i].Signal = raw.Repeat(codes[i].Signal, req.Repeats)
		}
	}

	lines, err := c.Render(codes, req.Output)
	if err != nil {
		return nil, err
	}
	return &Result{Codes: codes, Lines: lines}, nil
}

// HandleRequest converts a JSON encoded Request and returns the rendered
// lines.
func (c *Converter) HandleRequest(ctx context.Context, payload []byte) ([]string, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	result, err := c.Convert(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Lines, nil
}

// Load reads the codes described by the input of req.
func (c *Converter) Load(ctx context.Context, req Request) ([]Code, error) {
	switch req.Input.Source {
	case SourceProtocol:
		args, err := parseArgs(req.Data)
		if err != nil {
			return nil, err
		}
		s, err := encode(req.Input.Protocol, args)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s(%s)", req.Input.Protocol, strings.Join(req.Data, ","))
		return []Code{{Name: name, Signal: s}}, nil

	case SourceRaw:
		s, err := raw.Parse(req.Data)
		if err != nil {
			return nil, err
		}
		return []Code{{Name: "raw", Signal: s}}, nil

	case SourceIRDB:
		return c.loadIRDB(ctx, req.Path)

	case SourceBroadlink:
		p, err := broadlink.DecodeHex(strings.Join(req.Data, ""), broadlink.WithLog(c.log))
		if err != nil {
			return nil, err
		}
		return []Code{{Name: "broadlink", Signal: p.Signal}}, nil

	case SourceBroadlinkBase64:
		p, err := broadlink.DecodeBase64(strings.Join(req.Data, ""), broadlink.WithLog(c.log))
		if err != nil {
			return nil, err
		}
		return []Code{{Name: "base64", Signal: p.Signal}}, nil

	case SourcePronto:
		values, err := pronto.Parse(strings.Join(req.Data, " "))
		if err != nil {
			return nil, err
		}
		code, err := pronto.Decode(values)
		if err != nil {
			return nil, err
		}
		return []Code{{Name: "pronto", Signal: code.Signal()}}, nil

	case SourceRemo:
		s, err := remo.Unmarshal([]byte(strings.Join(req.Data, " ")))
		if err != nil {
			return nil, err
		}
		return []Code{{Name: "remo", Signal: s}}, nil

	default:
		return nil, fmt.Errorf("unsupported input %s", req.Input)
	}
}

func parseArgs(data []string) ([]int, error) {
	args := make([]int, len(data))
	for i, d := range data {
		v, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return nil, fmt.Errorf("invalid protocol argument %q: %w", d, err)
		}
		args[i] = v
	}
	return args, nil
}

// encode returns the normalized signal of one protocol frame.
func encode(p protocol.Protocol, args []int) (raw.Signal, error) {
	params, err := protocol.ParseParams(p, args)
	if err != nil {
		return nil, err
	}
	s, err := protocol.Encode(p, params)
	if err != nil {
		return nil, err
	}
	return raw.Normalize(s, 0), nil
}

func (c *Converter) loadIRDB(ctx context.Context, path string) ([]Code, error) {
	if c.fetcher == nil {
		return nil, errors.New("irdb input is not configured")
	}
	if path == "" {
		return nil, errors.New("irdb input needs a table path")
	}

	rows, err := c.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	codes := make([]Code, 0, len(rows))
	for _, row := range rows {
		p, err := row.Proto()
		if err != nil {
			c.log.Warnw("skipping irdb row",
				zap.String("function", row.FunctionName),
				zap.String("protocol", row.Protocol),
				zap.Error(err),
			)
			continue
		}
		s, err := protocol.Encode(p, row.Params())
		if err != nil {
			return nil, fmt.Errorf("irdb row %q: %w", row.FunctionName, err)
		}
		codes = append(codes, Code{Name: row.FunctionName, Signal: raw.Normalize(s, 0)})
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("irdb table %q has no supported codes", path)
	}
	return codes, nil
}
