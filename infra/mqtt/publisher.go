package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/pvcompare/core/mqtt"
	"github.com/kilianp07/pvcompare/core/scenario"
	"github.com/kilianp07/pvcompare/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher announces the plants of a run and publishes every row's
// installed capacity ceiling. It satisfies scenario.ProductionRecorder.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	retain bool

	maxRetries int
	backoff    time.Duration
	logger     logger.Logger

	mu sync.Mutex
}

var _ scenario.ProductionRecorder = (*Publisher)(nil)

// NewPublisher connects to the broker and marks the status topic online.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	status := coremqtt.Topic(cfg.TopicPrefix, coremqtt.TopicStatus)
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(status, cfg.QoS, true, coremqtt.StatusOnline); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// Prepare publishes the plant labels of the run.
func (p *Publisher) Prepare(ctx context.Context, labels []string) error {
	return p.publish(ctx, coremqtt.Topic(p.prefix, coremqtt.TopicPlants), coremqtt.Plants{
		Labels:    labels,
		Timestamp: coremqtt.Now(),
	})
}

// Record publishes the ceiling of one plant to <prefix>/ceiling/<label>.
func (p *Publisher) Record(ctx context.Context, rec scenario.PlantRecord) error {
	return p.publish(ctx, coremqtt.Topic(p.prefix, coremqtt.TopicCeiling, rec.Label), coremqtt.Ceiling{
		Label:       rec.Label,
		SurfaceType: rec.SurfaceType,
		Technology:  string(rec.Technology),
		FileName:    rec.FileName,
		CeilingKWp:  rec.CeilingKWp,
		Timestamp:   coremqtt.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return publishErr
}

// Close marks the status topic offline and disconnects.
func (p *Publisher) Close() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	token := p.cli.Publish(coremqtt.Topic(p.prefix, coremqtt.TopicStatus), p.qos, true, coremqtt.StatusOffline)
	token.WaitTimeout(time.Second)
	p.cli.Disconnect(250)
}
