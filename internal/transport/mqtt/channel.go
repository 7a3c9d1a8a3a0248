package mqtt

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// qosAtLeastOnce is used for every publish and subscription.
const qosAtLeastOnce byte = 1

// errNoTopics is returned when Connect is asked to subscribe to nothing.
var errNoTopics = errors.New("at least one topic must be subscribed")

// Channel is a publish/subscribe session with the broker.
type Channel struct {
	// cm manages the connection and reconnects it when it drops.
	cm *autopaho.ConnectionManager
	// inbox buffers inbound messages until the next Poll.
	inbox *Inbox
	// timeout bounds a single publish.
	timeout time.Duration
	// topics are re-subscribed on every connection.
	topics []string
}

// Connect starts the broker session, subscribes to topics and blocks until
// the first connection is up. The session lives until ctx is cancelled or
// Close is called; connection attempts are retried until then.
func Connect(ctx context.Context, cfg *config.MQTT, timeout time.Duration, topics ...string) (*Channel, error) {
	if len(topics) == 0 {
		return nil, errNoTopics
	}

	channel := &Channel{
		inbox:   NewInbox(DefaultInboxSize),
		timeout: timeout,
		topics:  append([]string(nil), topics...),
	}

	clientConfig, err := channel.clientConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cm, err := autopaho.NewConnection(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("start mqtt session: %w", err)
	}

	channel.cm = cm

	if err = cm.AwaitConnection(ctx); err != nil {
		return nil, fmt.Errorf("await mqtt connection: %w", err)
	}

	return channel, nil
}

// Publish sends payload to topic with at-least-once delivery.
func (c *Channel) Publish(ctx context.Context, topic string, payload []byte) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	_, err := c.cm.Publish(ctx, &paho.Publish{
		QoS:     qosAtLeastOnce,
		Topic:   topic,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Poll hands inbound messages to handle; see Inbox.Poll.
func (c *Channel) Poll(ctx context.Context, timeout time.Duration, handle Handler) int {
	return c.inbox.Poll(ctx, timeout, handle)
}

// Close disconnects from the broker.
func (c *Channel) Close(ctx context.Context) error {
	if c == nil || c.cm == nil {
		return nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.cm.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	return nil
}

// clientConfig translates the settings into an autopaho configuration.
func (c *Channel) clientConfig(ctx context.Context, cfg *config.MQTT) (autopaho.ClientConfig, error) {
	brokerURL, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return autopaho.ClientConfig{}, fmt.Errorf("parse broker url: %w", err)
	}

	//nolint:exhaustruct // Remaining autopaho settings keep their defaults.
	clientConfig := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		TlsCfg:                        tlsConfig(cfg, brokerURL),
		KeepAlive:                     uint16(cfg.KeepAlive / time.Second),
		CleanStartOnInitialConnection: true,
		ConnectUsername:               cfg.Username,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			c.subscribe(ctx, cm)
		},
		OnConnectError: func(err error) {
			logger.WarnKV(ctx, "MQTT connection attempt failed", "broker", brokerURL.Redacted(), "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID:          cfg.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){c.receive(ctx)},
			OnClientError: func(err error) {
				logger.ErrorKV(ctx, "MQTT client error", "error", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				logger.WarnKV(ctx, "MQTT server requested disconnect", "reason_code", d.ReasonCode)
			},
		},
	}

	if cfg.Password != "" {
		clientConfig.ConnectPassword = []byte(cfg.Password)
	}

	return clientConfig, nil
}

// subscribe (re-)subscribes to every topic after a connection comes up.
func (c *Channel) subscribe(ctx context.Context, cm *autopaho.ConnectionManager) {
	subscriptions := make([]paho.SubscribeOptions, 0, len(c.topics))
	for _, topic := range c.topics {
		subscriptions = append(subscriptions, paho.SubscribeOptions{Topic: topic, QoS: qosAtLeastOnce})
	}

	if _, err := cm.Subscribe(ctx, &paho.Subscribe{Subscriptions: subscriptions}); err != nil {
		logger.ErrorKV(ctx, "MQTT subscribe failed", "topics", c.topics, "error", err)

		return
	}

	logger.InfoKV(ctx, "MQTT connected", "topics", c.topics)
}

// receive queues inbound publishes for the next Poll. It never blocks the
// client goroutine. A full inbox drops the message after it has been
// acknowledged to the broker, so the broker will not redeliver it.
func (c *Channel) receive(ctx context.Context) func(paho.PublishReceived) (bool, error) {
	return func(pr paho.PublishReceived) (bool, error) {
		if pr.Packet == nil {
			return false, nil
		}

		message := Message{
			Topic:   pr.Packet.Topic,
			Payload: bytes.Clone(pr.Packet.Payload),
		}

		if !c.inbox.Push(message) {
			logger.ErrorKV(ctx, "Inbox full, message lost",
				"topic", message.Topic,
				"payload", string(message.Payload),
				"dropped", c.inbox.Dropped(),
			)
		}

		return true, nil
	}
}

// tlsConfig returns the TLS settings for secure broker schemes, nil otherwise.
func tlsConfig(cfg *config.MQTT, brokerURL *url.URL) *tls.Config {
	switch brokerURL.Scheme {
	case "mqtts", "ssl", "tls", "wss":
		return &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ServerName:         brokerURL.Hostname(),
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // Opt-in for brokers with self-signed certificates.
		}
	default:
		return nil
	}
}
