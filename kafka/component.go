package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/logger"
)

// Producer is the part of producer.Producer the component manages.
type Producer interface {
	Stats() WriterMetrics
	Close() error
}

// Component owns the producer's lifecycle and reports broker health.
type Component struct {
	cfg      Config
	log      *logger.Logger
	producer Producer
	mu       sync.Mutex
	running  bool
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a Kafka component. SetProducer must be called before Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("kafka"),
	}
}

// SetProducer injects the producer closed by Stop.
func (c *Component) SetProducer(p Producer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.producer = p
}

// Config returns the component configuration with defaults applied.
func (c *Component) Config() Config { return c.cfg }

func (c *Component) Name() string { return "kafka" }

// Start marks the component running. The producer connects lazily on first write.
func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.producer == nil {
		return fmt.Errorf("kafka start: no producer set")
	}
	c.running = true
	c.log.Info("kafka component started", logger.Fields("brokers", c.cfg.Brokers, "client_id", c.cfg.ClientID))
	return nil
}

// Stop closes the producer, flushing pending writes.
func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	var err error
	if c.producer != nil {
		err = c.producer.Close()
		c.producer = nil
	}
	c.log.Info("kafka component stopped")
	return err
}

// Health dials the first broker and asks for cluster metadata.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	producer := c.producer
	c.mu.Unlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !running {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}

	dialer, err := CreateDialer(&c.cfg)
	if err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = fmt.Sprintf("dialer: %v", err)
		return h
	}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Brokers[0])
	if err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = fmt.Sprintf("broker unreachable: %v", err)
		return h
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("broker metadata: %v", err)
		return h
	}

	if producer != nil {
		m := producer.Stats()
		h.Message = fmt.Sprintf("messages=%d errors=%d", m.Messages, m.Errors)
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Kafka",
		Type:    "kafka",
		Details: c.cfg.Describe(),
	}
}
