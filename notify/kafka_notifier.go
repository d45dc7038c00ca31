package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/kafka"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/resilience"
)

// Outcome attribute values on clinic.notify.events.
const (
	outcomePublished = "published"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
)

// KafkaNotifier publishes events to Kafka in the background.
type KafkaNotifier struct {
	pub      kafka.Publisher
	topics   kafka.Topics
	timeout  time.Duration
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
	events   metric.Int64Counter
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var (
	_ Notifier            = (*KafkaNotifier)(nil)
	_ component.Component = (*KafkaNotifier)(nil)
)

// NewKafkaNotifier wraps pub. Topics and the per-publish timeout come from kcfg.
func NewKafkaNotifier(pub kafka.Publisher, kcfg kafka.Config, cfg Config, log *logger.Logger) *KafkaNotifier {
	kcfg.ApplyDefaults()
	cfg.ApplyDefaults()
	log = log.WithComponent("notify")

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "notify",
		MaxFailures: cfg.BreakerFailures,
		Timeout:     cfg.BreakerTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed", logger.Fields(
				"breaker", name, "from", from.String(), "to", to.String(),
			))
		},
	})

	events, err := otel.Meter("github.com/kbukum/clinic/notify").Int64Counter(
		"clinic.notify.events", metric.WithDescription("Domain events by outcome"))
	if err != nil {
		events = noop.Int64Counter{}
	}

	return &KafkaNotifier{
		pub:      pub,
		topics:   kcfg.Topics,
		timeout:  kafka.ParseDuration(kcfg.Timeout),
		breaker:  breaker,
		bulkhead: resilience.NewBulkhead(cfg.MaxInFlight),
		log:      log,
		events:   events,
		now:      time.Now,
	}
}

func (n *KafkaNotifier) AppointmentCreated(ctx context.Context, a records.Appointment) {
	n.dispatch(ctx, n.topics.Appointments, TypeAppointmentCreated, a.PatientID, appointmentPayload(a))
}

func (n *KafkaNotifier) PrescriptionCreated(ctx context.Context, p records.Prescription) {
	n.dispatch(ctx, n.topics.Prescriptions, TypePrescriptionCreated, p.PatientID, prescriptionPayload(p))
}

// dispatch hands the event to a background publish. Events are keyed by
// patient id so that one patient's events stay ordered within a partition.
func (n *KafkaNotifier) dispatch(ctx context.Context, topic, eventType string, patientID int64, payload interface{}) {
	log := n.log.WithContext(ctx)

	ev, err := kafka.NewEvent(uuid.NewString(), eventType, Source, n.now(), payload)
	if err != nil {
		log.Error("event not built", logger.ErrorFields(eventType, err))
		return
	}
	key := strconv.FormatInt(patientID, 10)
	ev.Subject = fmt.Sprintf("patient:%d", patientID)

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.count(ctx, eventType, outcomeDropped)
		log.Warn("event dropped, notifier stopped", logger.Fields("type", eventType, "event_id", ev.ID))
		return
	}

	// The publish outlives the request, so it keeps ctx values but not its deadline.
	base := context.WithoutCancel(ctx)
	n.wg.Add(1)
	started := n.bulkhead.Go(func() {
		defer n.wg.Done()
		n.publish(base, topic, key, ev, log)
	})
	if !started {
		n.wg.Done()
		n.count(ctx, eventType, outcomeDropped)
		log.Warn("event dropped, too many in flight", logger.Fields("type", eventType, "event_id", ev.ID))
	}
}

func (n *KafkaNotifier) publish(ctx context.Context, topic, key string, ev kafka.Event, log *logger.Logger) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	err := n.breaker.Execute(func() error {
		return n.pub.Publish(ctx, topic, ev, key)
	})
	if err != nil {
		n.count(ctx, ev.Type, outcomeFailed)
		log.Warn("event not published", logger.Fields(
			"type", ev.Type,
			"event_id", ev.ID,
			"topic", topic,
			"breaker", n.breaker.State().String(),
			logger.FieldError, err.Error(),
		))
		return
	}
	n.count(ctx, ev.Type, outcomePublished)
	log.Debug("event published", logger.Fields("type", ev.Type, "event_id", ev.ID, "topic", topic))
}

func (n *KafkaNotifier) count(ctx context.Context, eventType, outcome string) {
	n.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("outcome", outcome),
	))
}

// Wait blocks until every accepted event has been published or has failed.
func (n *KafkaNotifier) Wait() { n.wg.Wait() }

func (n *KafkaNotifier) Name() string { return "notify" }

func (n *KafkaNotifier) Start(context.Context) error { return nil }

// Stop refuses new events and waits for in-flight publishes until ctx is done.
func (n *KafkaNotifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify stop: %d events still in flight: %w", n.bulkhead.InUse(), ctx.Err())
	}
}

// Health is degraded while the circuit breaker is not closed.
func (n *KafkaNotifier) Health(context.Context) component.Health {
	h := component.Health{Name: n.Name(), Status: component.StatusHealthy}
	if state := n.breaker.State(); state != resilience.StateClosed {
		h.Status = component.StatusDegraded
		h.Message = "circuit breaker " + state.String()
	}
	return h
}

func (n *KafkaNotifier) Describe() component.Description {
	return component.Description{
		Name:    "Notifications",
		Type:    "kafka",
		Details: fmt.Sprintf("topics=%s,%s", n.topics.Appointments, n.topics.Prescriptions),
	}
}
