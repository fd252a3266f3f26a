package metrics

// Config configures the HTTP listener of the conversion service.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsPath string `yaml:"metrics_path"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":9150",
		MetricsPath: "/metrics",
	}
}
