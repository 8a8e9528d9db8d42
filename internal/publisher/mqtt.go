package publisher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-json-experiment/json"

	"github.com/jgoulah/powerchart/internal/aggregate"
	"github.com/jgoulah/powerchart/internal/config"
)

// ErrDisabled is returned when publishing is not enabled in config
var ErrDisabled = errors.New("MQTT publishing is not enabled in config")

const publishTimeout = 10 * time.Second

// Publisher sends aggregated bucket totals to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	send        func(topic string, payload []byte) error
}

// New connects to the configured MQTT broker
func New(mqttCfg config.MQTTConfig) (*Publisher, error) {
	if !mqttCfg.Enabled {
		return nil, ErrDisabled
	}
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID(mqttCfg.GetClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	// Create and connect client
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	p := newPublisher(mqttCfg.GetTopicPrefix(), func(topic string, payload []byte) error {
		token := client.Publish(topic, 1, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publishing to %s: timed out after %s", topic, publishTimeout)
		}
		return token.Error()
	})
	p.client = client

	return p, nil
}

func newPublisher(topicPrefix string, send func(topic string, payload []byte) error) *Publisher {
	return &Publisher{topicPrefix: topicPrefix, send: send}
}

// BucketPayload is the retained message published for each bucket
type BucketPayload struct {
	File        string             `json:"file"`
	Granularity string             `json:"granularity"`
	Bucket      string             `json:"bucket"`
	Start       string             `json:"start"`
	Flows       map[string]float64 `json:"flows"`
	RunID       string             `json:"run_id,omitempty"`
}

// Topic returns the topic for one bucket of a file: <prefix>/<stem>/<granularity>/<bucket>
func (p *Publisher) Topic(stem string, table *aggregate.Table, b aggregate.Bucket) string {
	return strings.Join([]string{
		p.topicPrefix,
		topicSegment(stem),
		strings.ToLower(table.Granularity.String()),
		b.Label,
	}, "/")
}

// PublishTable sends one message per bucket and returns how many were sent.
// It stops at the first failure.
func (p *Publisher) PublishTable(stem, runID string, table *aggregate.Table) (int, error) {
	published := 0
	for _, b := range table.Buckets {
		payload := BucketPayload{
			File:        stem,
			Granularity: table.Granularity.String(),
			Bucket:      b.Label,
			Start:       b.Start.Format(time.RFC3339),
			Flows:       make(map[string]float64, len(b.Values)),
			RunID:       runID,
		}
		for flow, v := range b.Values {
			payload.Flows[flow] = v.InexactFloat64()
		}

		body, err := json.Marshal(payload, json.Deterministic(true))
		if err != nil {
			return published, fmt.Errorf("encoding payload for %s: %w", b.Label, err)
		}

		topic := p.Topic(stem, table, b)
		if err := p.send(topic, body); err != nil {
			return published, fmt.Errorf("publishing %s: %w", topic, err)
		}
		published++
	}

	return published, nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// topicSegment strips characters MQTT reserves in topic names
func topicSegment(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(s)
}
