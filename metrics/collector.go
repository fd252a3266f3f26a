package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "irgen"
)

// Status labels of a conversion.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

type Collector struct {
	mu             sync.RWMutex
	conversions    map[conversionKey]*ConversionStats
	frames         map[string]float64 // key: protocol
	apiMetrics     *APIMetrics
	lastUpdateTime time.Time

	// Prometheus metric descriptors
	conversionsTotalDesc    *prometheus.Desc
	conversionDurationDesc  *prometheus.Desc
	decodedFramesTotalDesc  *prometheus.Desc
	apiRequestTotalDesc     *prometheus.Desc
	apiRequestDurationDesc  *prometheus.Desc
	lastUpdateTimestampDesc *prometheus.Desc
}

type conversionKey struct {
	Input  string
	Output string
}

// ConversionStats are the counters of one input, output pair.
type ConversionStats struct {
	OK           float64
	Failed       float64
	LastDuration float64 // seconds
}

type APIMetrics struct {
	RequestCount    map[string]float64 // key: "endpoint:status_code"
	RequestDuration map[string]float64 // key: "endpoint"
}

func NewCollector() *Collector {
	return &Collector{
		conversions: make(map[conversionKey]*ConversionStats),
		frames:      make(map[string]float64),
		apiMetrics: &APIMetrics{
			RequestCount:    make(map[string]float64),
			RequestDuration: make(map[string]float64),
		},

		conversionsTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "conversion", "total"),
			"Total number of conversions",
			[]string{"input", "output", "status"}, nil,
		),
		conversionDurationDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "conversion", "last_duration_seconds"),
			"Duration of the last conversion in seconds",
			[]string{"input", "output"}, nil,
		),
		decodedFramesTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "decoder", "frames_total"),
			"Total number of frames decoded to protocol parameters",
			[]string{"protocol"}, nil,
		),
		apiRequestTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "api", "requests_total"),
			"Total number of API requests",
			[]string{"endpoint", "status"}, nil,
		),
		apiRequestDurationDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "api", "request_duration_seconds"),
			"Duration of the last API request in seconds",
			[]string{"endpoint"}, nil,
		),
		lastUpdateTimestampDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_update_timestamp"),
			"Timestamp of the last metrics update",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.conversionsTotalDesc
	ch <- c.conversionDurationDesc
	ch <- c.decodedFramesTotalDesc
	ch <- c.apiRequestTotalDesc
	ch <- c.apiRequestDurationDesc
	ch <- c.lastUpdateTimestampDesc
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for key, stats := range c.conversions {
		ch <- prometheus.MustNewConstMetric(
			c.conversionsTotalDesc,
			prometheus.CounterValue,
			stats.OK,
			key.Input, key.Output, StatusOK,
		)
		ch <- prometheus.MustNewConstMetric(
			c.conversionsTotalDesc,
			prometheus.CounterValue,
			stats.Failed,
			key.Input, key.Output, StatusError,
		)
		ch <- prometheus.MustNewConstMetric(
			c.conversionDurationDesc,
			prometheus.GaugeValue,
			stats.LastDuration,
			key.Input, key.Output,
		)
	}

	for proto, count := range c.frames {
		ch <- prometheus.MustNewConstMetric(
			c.decodedFramesTotalDesc,
			prometheus.CounterValue,
			count,
			proto,
		)
	}

	for key, count := range c.apiMetrics.RequestCount {
		endpoint, status := splitKey(key)
		ch <- prometheus.MustNewConstMetric(
			c.apiRequestTotalDesc,
			prometheus.CounterValue,
			count,
			endpoint,
			status,
		)
	}

	for endpoint, duration := range c.apiMetrics.RequestDuration {
		ch <- prometheus.MustNewConstMetric(
			c.apiRequestDurationDesc,
			prometheus.GaugeValue,
			duration,
			endpoint,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.lastUpdateTimestampDesc,
		prometheus.GaugeValue,
		float64(c.lastUpdateTime.Unix()),
	)
}

// splitKey parses "endpoint:status". The endpoint may itself contain colons.
func splitKey(key string) (endpoint, status string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// ObserveConversion records the outcome of one conversion.
func (c *Collector) ObserveConversion(input, output string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := conversionKey{Input: input, Output: output}
	stats, ok := c.conversions[key]
	if !ok {
		stats = &ConversionStats{}
		c.conversions[key] = stats
	}
	if err != nil {
		stats.Failed++
	} else {
		stats.OK++
	}
	stats.LastDuration = duration.Seconds()
	c.lastUpdateTime = time.Now()
}

// AddDecodedFrames counts frames decoded as proto.
func (c *Collector) AddDecodedFrames(proto string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames[proto] += float64(n)
	c.lastUpdateTime = time.Now()
}

// UpdateAPIMetrics updates API-related metrics
func (c *Collector) UpdateAPIMetrics(endpoint string, statusCode int, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := endpoint + ":" + strconv.Itoa(statusCode)
	c.apiMetrics.RequestCount[key]++
	c.apiMetrics.RequestDuration[endpoint] = duration
	c.lastUpdateTime = time.Now()
}

// Conversions returns a copy of the stats of an input, output pair.
func (c *Collector) Conversions(input, output string) ConversionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if stats, ok := c.conversions[conversionKey{Input: input, Output: output}]; ok {
		return *stats
	}
	return ConversionStats{}
}

// DecodedFrames returns the number of frames decoded as proto.
func (c *Collector) DecodedFrames(proto string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.frames[proto]
}
