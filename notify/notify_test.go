package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/kafka"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
)

type published struct {
	topic string
	key   string
	event kafka.Event
}

type fakePublisher struct {
	mu    sync.Mutex
	err   error
	block chan struct{}
	sent  []published
	calls int
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, ev kafka.Event, key string) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, key: key, event: ev})
	return nil
}

func (f *fakePublisher) snapshot() ([]published, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.sent...), f.calls
}

func newNotifier(pub kafka.Publisher, cfg Config) *KafkaNotifier {
	return NewKafkaNotifier(pub, kafka.Config{Enabled: true}, cfg, logger.Nop())
}

var (
	appointment  = records.Appointment{ID: 11, PatientID: 7, DoctorID: 3, Date: records.NewDate(2026, time.April, 2)}
	prescription = records.Prescription{ID: 21, PatientID: 7, DoctorID: 3, MedicationID: 5, Date: records.NewDate(2026, time.April, 3)}
)

func TestKafkaNotifier_PublishesKeyedEvents(t *testing.T) {
	pub := &fakePublisher{}
	n := newNotifier(pub, Config{})

	ctx := context.Background()
	n.AppointmentCreated(ctx, appointment)
	n.PrescriptionCreated(ctx, prescription)
	n.Wait()

	sent, _ := pub.snapshot()
	if len(sent) != 2 {
		t.Fatalf("published %d events, want 2", len(sent))
	}

	byType := map[string]published{}
	for _, p := range sent {
		byType[p.event.Type] = p
		if p.key != "7" || p.event.Subject != "patient:7" || p.event.Source != Source {
			t.Errorf("%s: key %q subject %q source %q", p.event.Type, p.key, p.event.Subject, p.event.Source)
		}
		if p.event.ID == "" {
			t.Errorf("%s: empty event id", p.event.Type)
		}
	}

	appt, ok := byType[TypeAppointmentCreated]
	if !ok || appt.topic != "appointments" {
		t.Fatalf("appointment event = %+v", appt)
	}
	var ap AppointmentCreated
	if err := appt.event.ParseData(&ap); err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if ap.AppointmentID != 11 || ap.DoctorID != 3 || ap.AppointmentDate.String() != "2026-04-02" {
		t.Errorf("payload = %+v", ap)
	}

	rx, ok := byType[TypePrescriptionCreated]
	if !ok || rx.topic != "prescriptions" {
		t.Fatalf("prescription event = %+v", rx)
	}
	var pp PrescriptionCreated
	if err := rx.event.ParseData(&pp); err != nil || pp.MedicationID != 5 {
		t.Errorf("payload = %+v, %v", pp, err)
	}
}

func TestKafkaNotifier_FailuresTripBreaker(t *testing.T) {
	pub := &fakePublisher{err: errors.New("dial tcp: connection refused")}
	n := newNotifier(pub, Config{BreakerFailures: 2, BreakerTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n.AppointmentCreated(ctx, appointment)
		n.Wait()
	}
	if h := n.Health(ctx); h.Status != component.StatusDegraded || !strings.Contains(h.Message, "open") {
		t.Fatalf("health = %+v, want degraded with open breaker", h)
	}

	n.AppointmentCreated(ctx, appointment)
	n.Wait()
	if _, calls := pub.snapshot(); calls != 2 {
		t.Errorf("publisher calls = %d, want 2 (breaker should short-circuit)", calls)
	}
}

func TestKafkaNotifier_DropsWhenFull(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	n := newNotifier(pub, Config{MaxInFlight: 1})
	ctx := context.Background()

	n.AppointmentCreated(ctx, appointment)
	n.AppointmentCreated(ctx, appointment)
	close(pub.block)
	n.Wait()

	if sent, _ := pub.snapshot(); len(sent) != 1 {
		t.Errorf("published %d events, want 1", len(sent))
	}
}

func TestKafkaNotifier_RequestCancelDoesNotAbortPublish(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	n := newNotifier(pub, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	n.AppointmentCreated(ctx, appointment)
	cancel()
	close(pub.block)
	n.Wait()

	if sent, _ := pub.snapshot(); len(sent) != 1 {
		t.Errorf("published %d events after request cancel, want 1", len(sent))
	}
}

func TestKafkaNotifier_StopDrainsThenRefuses(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	n := newNotifier(pub, Config{})
	ctx := context.Background()

	n.AppointmentCreated(ctx, appointment)

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := n.Stop(stopCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop with blocked publish: err = %v", err)
	}

	close(pub.block)
	if err := n.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	n.PrescriptionCreated(ctx, prescription)
	n.Wait()

	if sent, _ := pub.snapshot(); len(sent) != 1 || sent[0].event.Type != TypeAppointmentCreated {
		t.Errorf("sent = %+v, want only the appointment", sent)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "clinic", &buf)
	n := NewLogNotifier(log)

	n.PrescriptionCreated(context.Background(), prescription)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if line["type"] != TypePrescriptionCreated || line["medication_id"] != float64(5) {
		t.Errorf("line = %v", line)
	}
	if line[logger.FieldComponent] != "notify" {
		t.Errorf("component = %v", line[logger.FieldComponent])
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.BreakerFailures != 5 || cfg.MaxInFlight != 64 || cfg.BreakerTimeout != 30*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg.MaxInFlight = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative max_in_flight accepted")
	}
}
