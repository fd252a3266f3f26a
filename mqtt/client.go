package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config holds MQTT configuration
type Config struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	// Prefix is the first level of every topic.
	Prefix string `yaml:"prefix"`
}

// DefaultConfig leaves MQTT disabled.
func DefaultConfig() Config {
	return Config{
		Port:     1883,
		ClientID: "irgen",
		Prefix:   "irgen",
	}
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool {
	return c.Broker != ""
}

// Client wraps MQTT client functionality
type Client struct {
	client      mqtt.Client
	config      Config
	requestChan chan Request
	log         *zap.SugaredLogger
}

// Request is a conversion request received on <prefix>/convert/<id>.
type Request struct {
	ID      string
	Payload []byte
}

// Result is published to <prefix>/result/<id>.
type Result struct {
	ID        string    `json:"id"`
	Lines     []string  `json:"lines,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestHandler converts the payload of a request.
type RequestHandler interface {
	HandleRequest(ctx context.Context, payload []byte) ([]string, error)
}

// NewClient creates a new MQTT client
func NewClient(config Config, log *zap.SugaredLogger) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.Broker, config.Port))
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		log.Debugw("received message", zap.String("topic", msg.Topic()), zap.ByteString("payload", msg.Payload()))
	})
	opts.SetPingTimeout(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warnw("MQTT connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info("MQTT connected successfully")
	})

	return newClient(mqtt.NewClient(opts), config, log)
}

func newClient(client mqtt.Client, config Config, log *zap.SugaredLogger) *Client {
	return &Client{
		client:      client,
		config:      config,
		requestChan: make(chan Request, 100),
		log:         log,
	}
}

// wait blocks until token completes or ctx is done.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect(ctx context.Context) error {
	if err := wait(ctx, c.client.Connect()); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	c.log.Infow("connected to MQTT broker", zap.String("broker", c.config.Broker), zap.Int("port", c.config.Port))
	return nil
}

// Disconnect closes the connection to MQTT broker
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

func (c *Client) topic(kind, id string) string {
	return c.config.Prefix + "/" + kind + "/" + id
}

// SubscribeRequests subscribes to <prefix>/convert/+ and answers every request
// until ctx is done.
func (c *Client) SubscribeRequests(ctx context.Context, handler RequestHandler) error {
	requestTopic := c.topic("convert", "+")

	token := c.client.Subscribe(requestTopic, 1, func(client mqtt.Client, msg mqtt.Message) {
		id, ok := strings.CutPrefix(msg.Topic(), c.config.Prefix+"/convert/")
		if !ok || id == "" || strings.Contains(id, "/") {
			c.log.Warnw("invalid request topic", zap.String("topic", msg.Topic()))
			return
		}

		select {
		case c.requestChan <- Request{ID: id, Payload: msg.Payload()}:
		default:
			c.log.Warnw("request channel full, dropping request", zap.String("id", id))
		}
	})
	if err := wait(ctx, token); err != nil {
		return fmt.Errorf("failed to subscribe to requests: %w", err)
	}

	c.log.Infow("subscribed to MQTT request topic", zap.String("topic", requestTopic))

	go c.processRequests(ctx, handler)

	return nil
}

// processRequests handles incoming requests from MQTT
func (c *Client) processRequests(ctx context.Context, handler RequestHandler) {
	for {
		select {
		case req := <-c.requestChan:
			result := Result{ID: req.ID, Timestamp: time.Now()}
			lines, err := handler.HandleRequest(ctx, req.Payload)
			if err != nil {
				c.log.Warnw("failed to handle request", zap.String("id", req.ID), zap.Error(err))
				result.Error = err.Error()
			} else {
				result.Lines = lines
			}
			if err := c.PublishResult(ctx, result); err != nil {
				c.log.Errorw("failed to publish result", zap.String("id", req.ID), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	if err := wait(ctx, c.client.Publish(topic, 1, retained, payload)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// PublishResult publishes the answer to a request
func (c *Client) PublishResult(ctx context.Context, result Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return c.publish(ctx, c.topic("result", result.ID), false, payload)
}

// PublishCode publishes a converted code, retained, to <prefix>/code/<entity>
func (c *Client) PublishCode(ctx context.Context, entity, code string) error {
	if err := c.publish(ctx, c.topic("code", entity), true, []byte(code)); err != nil {
		return err
	}
	c.log.Debugw("published code", zap.String("entity", entity))
	return nil
}

// IsConnected checks if the client is connected
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
