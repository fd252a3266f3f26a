package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics descriptions
var (
	protocolInfo = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "protocol_info"),
		"Supported IR protocols, 1 when signals can also be decoded",
		[]string{"protocol"}, nil,
	)

	mqttConnected = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "mqtt", "connected"),
		"Whether the MQTT client is connected to the broker",
		nil, nil,
	)
)

// Connection reports the state of a broker connection.
type Connection interface {
	IsConnected() bool
}

// Exporter exposes static capabilities of the converter and the state of its
// MQTT connection.
type Exporter struct {
	protocols map[string]bool
	conn      Connection
}

// NewExporter returns an initialized exporter. protocols maps every protocol
// name to whether it can be decoded. conn may be nil when MQTT is disabled.
func NewExporter(protocols map[string]bool, conn Connection) *Exporter {
	return &Exporter{
		protocols: protocols,
		conn:      conn,
	}
}

// Describe is to describe the metrics for Prometheus
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- protocolInfo
	ch <- mqttConnected
}

// Collect collects data to be consumed by prometheus
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	names := make([]string, 0, len(e.protocols))
	for name := range e.protocols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := 0.0
		if e.protocols[name] {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(protocolInfo, prometheus.GaugeValue, v, name)
	}

	if e.conn == nil {
		return
	}
	connected := 0.0
	if e.conn.IsConnected() {
		connected = 1
	}
	ch <- prometheus.MustNewConstMetric(mqttConnected, prometheus.GaugeValue, connected)
}
