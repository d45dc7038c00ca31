// Package producer writes clinic events to Kafka through a kafka-go Writer.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/clinic/kafka"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/resilience"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("kafka producer is closed")

// writer is the subset of *kafkago.Writer the producer uses.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Stats() kafkago.WriterStats
	Close() error
}

// Producer wraps a kafka-go Writer with retries and logging.
type Producer struct {
	writer  writer
	cfg     kafka.Config
	retry   resilience.RetryConfig
	log     *logger.Logger
	mu      sync.RWMutex
	closed  bool
	metrics kafka.WriterMetrics
}

var _ kafka.Producer = (*Producer)(nil)

// NewProducer builds a producer for cfg. The writer dials brokers lazily, so
// this succeeds while Kafka is down.
func NewProducer(cfg kafka.Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	transport, err := kafka.CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}

	log = log.WithComponent("kafka.producer")
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: kafka.ParseDuration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  kafka.ResolveCompression(cfg.Compression),
		WriteTimeout: kafka.ParseDuration(cfg.WriteTimeout),
		// Retries are handled by the producer so they can honor ctx.
		MaxAttempts: 1,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}

	log.Info("kafka producer initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"compression", cfg.Compression,
		"batch_size", cfg.BatchSize,
	))
	return newProducer(cfg, w, log), nil
}

func newProducer(cfg kafka.Config, w writer, log *logger.Logger) *Producer {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Retries
	retry.RetryIf = func(err error) bool {
		return resilience.DefaultRetryIf(err) && !kafka.IsNonRetryableError(err)
	}
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("kafka write failed, retrying", logger.Fields(
			"attempt", attempt,
			"backoff", backoff.String(),
			"connection_error", kafka.IsConnectionError(err),
			"error", err.Error(),
		))
	}
	return &Producer{writer: w, cfg: cfg, retry: retry, log: log}
}

// WriteMessages writes msgs, retrying transient failures up to cfg.Retries attempts.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	err := resilience.RetryFunc(ctx, p.retry, func() error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Stats returns writer metrics accumulated since the producer was created.
func (p *Producer) Stats() kafka.WriterMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		p.metrics.Add(kafka.CollectWriterMetrics(p.writer.Stats()))
	}
	return p.metrics
}

// Close flushes and closes the writer. It waits for in-flight writes.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("kafka producer closing")
	return p.writer.Close()
}
