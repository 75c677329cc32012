package publisher

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Config"
	logger "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Logger"
	api_models "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Models/api"
)

const publishTimeout = 5 * time.Second

// ErrNotConnected is returned when publishing while the broker connection is down.
var ErrNotConnected = errors.New("mqtt client not connected")

// MQTTPublisher announces stored readings on an MQTT topic
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	logger      *logger.Logger
}

// Connect creates a publisher connected to the configured broker
func Connect(cfg *config.Config, log *logger.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.GetMQTTBrokerURL()).
		SetClientID(cfg.MQTT.ClientID).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetCleanSession(true)

	if cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(cfg.MQTT.BrokerUser)
		opts.SetPassword(cfg.MQTT.BrokerPass)
	}

	if cfg.MQTT.UseTLS {
		tlsCfg, err := tlsConfig(cfg.MQTT.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	log = log.WithComponent("mqtt-publisher")
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(_ mqtt.Client) {
		log.Logger.Info().Str("broker", cfg.GetMQTTBrokerURL()).Msg("MQTT connected")
	}

	client := mqtt.NewClient(opts)
	if tk := client.Connect(); tk.Wait() && tk.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", tk.Error())
	}

	return newPublisher(client, cfg.MQTT.TopicPrefix, log), nil
}

func newPublisher(client mqtt.Client, topicPrefix string, log *logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      log,
	}
}

// Topic returns the topic acknowledgments are published to
func (p *MQTTPublisher) Topic() string {
	return p.topicPrefix + "/ack"
}

// PublishReading publishes the acknowledgment of a stored reading at QoS 1
func (p *MQTTPublisher) PublishReading(ack api_models.ReadingAck) error {
	if p.client == nil || !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("failed to marshal acknowledgment: %w", err)
	}

	token := p.client.Publish(p.Topic(), 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", p.Topic())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.Topic(), err)
	}

	p.logger.Logger.Debug().Str("topic", p.Topic()).Str("id", ack.ID).Msg("Published reading acknowledgment")
	return nil
}

// Close disconnects from the broker, waiting briefly for in-flight messages
func (p *MQTTPublisher) Close() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(500)
	}
	return nil
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
