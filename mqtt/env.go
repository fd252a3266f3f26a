package mqtt

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnv overrides c with MQTT_BROKER, MQTT_PORT, MQTT_USERNAME,
// MQTT_PASSWORD and MQTT_CLIENT_ID when they are set. An empty broker, port
// or client ID keeps the configured value.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MQTT_BROKER"); ok && v != "" {
		c.Broker = v
	}
	if v, ok := lookup("MQTT_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PORT: %w", err)
		}
		c.Port = port
	}
	if v, ok := lookup("MQTT_USERNAME"); ok {
		c.Username = v
	}
	if v, ok := lookup("MQTT_PASSWORD"); ok {
		c.Password = v
	}
	if v, ok := lookup("MQTT_CLIENT_ID"); ok && v != "" {
		c.ClientID = v
	}
	return nil
}
