package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/security"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()

	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.Topics.Appointments != "appointments" || cfg.Topics.Prescriptions != "prescriptions" {
		t.Errorf("Topics = %+v", cfg.Topics)
	}
	if cfg.ClientID != "clinic-api" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.RequiredAcks != -1 || cfg.Retries != 3 || cfg.Timeout != "5s" {
		t.Errorf("acks=%d retries=%d timeout=%q", cfg.RequiredAcks, cfg.Retries, cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	custom := Config{Brokers: []string{"b1:9092"}, Topics: Topics{Appointments: "appt"}, RequiredAcks: 1}
	custom.ApplyDefaults()
	if custom.Brokers[0] != "b1:9092" || custom.Topics.Appointments != "appt" || custom.RequiredAcks != 1 {
		t.Errorf("defaults overwrote explicit values: %+v", custom)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Enabled: true}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"disabled skips checks", func(c *Config) { c.Enabled = false; c.Brokers = nil }, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "brokers"},
		{"no topic", func(c *Config) { c.Topics.Prescriptions = "" }, "topics"},
		{"bad duration", func(c *Config) { c.Timeout = "soon" }, "timeout"},
		{"bad sasl", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "GSSAPI" }, "SASL mechanism"},
		{"sasl without user", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "PLAIN" }, "username"},
		{"zero retries", func(c *Config) { c.Retries = 0 }, "retries"},
		{"bad acks", func(c *Config) { c.RequiredAcks = 2 }, "required_acks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("250ms"); got != 250*time.Millisecond {
		t.Errorf("ParseDuration(250ms) = %v", got)
	}
	if got := ParseDuration("nope"); got != 0 {
		t.Errorf("ParseDuration(nope) = %v, want 0", got)
	}
}

func TestResolveCompression(t *testing.T) {
	tests := []struct {
		name string
		want kafkago.Compression
	}{
		{"gzip", kafkago.Gzip},
		{"lz4", kafkago.Lz4},
		{"zstd", kafkago.Zstd},
		{"snappy", kafkago.Snappy},
		{"none", 0},
		{"brotli", kafkago.Snappy},
	}
	for _, tt := range tests {
		if got := ResolveCompression(tt.name); got != tt.want {
			t.Errorf("ResolveCompression(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCreateTransportAndDialer(t *testing.T) {
	cfg := Config{Enabled: true, EnableSASL: true, Username: "clinic", Password: "secret"}
	cfg.ApplyDefaults()

	tr, err := CreateTransport(&cfg)
	if err != nil {
		t.Fatalf("CreateTransport: %v", err)
	}
	if tr.ClientID != "clinic-api" || tr.SASL == nil || tr.TLS != nil {
		t.Errorf("transport = client %q sasl %v tls %v", tr.ClientID, tr.SASL, tr.TLS)
	}
	if tr.DialTimeout != 10*time.Second {
		t.Errorf("DialTimeout = %v", tr.DialTimeout)
	}

	d, err := CreateDialer(&cfg)
	if err != nil {
		t.Fatalf("CreateDialer: %v", err)
	}
	if d.SASLMechanism == nil || d.Timeout != 10*time.Second {
		t.Errorf("dialer = sasl %v timeout %v", d.SASLMechanism, d.Timeout)
	}

	for _, mech := range []string{"SCRAM-SHA-256", "SCRAM-SHA-512"} {
		cfg.SASLMechanism = mech
		if _, err := CreateTransport(&cfg); err != nil {
			t.Errorf("%s: %v", mech, err)
		}
	}

	cfg.SASLMechanism = "GSSAPI"
	if _, err := CreateTransport(&cfg); err == nil {
		t.Error("unsupported SASL mechanism accepted")
	}

	tlsCfg := Config{TLS: security.TLSConfig{Enabled: true, CAFile: "/does/not/exist.pem"}}
	if _, err := CreateDialer(&tlsCfg); err == nil {
		t.Error("missing CA file accepted")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		err          error
		connection   bool
		nonRetryable bool
	}{
		{nil, false, false},
		{errors.New("dial tcp 127.0.0.1:9092: connection refused"), true, false},
		{errors.New("i/o timeout"), true, false},
		{errors.New("[3] Unknown Topic Or Partition: the request is for a topic that does not exist"), false, true},
		{errors.New("message too large"), false, true},
		{kafkago.MessageSizeTooLarge, false, true},
		{fmt.Errorf("write: %w", kafkago.LeaderNotAvailable), true, false},
		{errors.New("something else"), false, false},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.connection {
				t.Errorf("IsConnectionError = %v, want %v", got, tt.connection)
			}
			if got := IsNonRetryableError(tt.err); got != tt.nonRetryable {
				t.Errorf("IsNonRetryableError = %v, want %v", got, tt.nonRetryable)
			}
		})
	}
}

func TestWriterMetrics(t *testing.T) {
	var total WriterMetrics
	total.Add(CollectWriterMetrics(kafkago.WriterStats{
		Writes: 2, Messages: 3, Errors: 1,
		WriteTime: kafkago.DurationStats{Avg: 10 * time.Millisecond, Max: 50 * time.Millisecond},
	}))
	total.Add(CollectWriterMetrics(kafkago.WriterStats{
		Writes: 1, Messages: 1,
		WriteTime: kafkago.DurationStats{Avg: 4 * time.Millisecond, Max: 4 * time.Millisecond},
	}))

	if total.Writes != 3 || total.Messages != 4 || total.Errors != 1 {
		t.Errorf("totals = %+v", total)
	}
	if total.MaxWriteTime != 50 || total.AvgWriteTime != 4 {
		t.Errorf("write times = avg %v max %v", total.AvgWriteTime, total.MaxWriteTime)
	}
}

func TestEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	ev, err := NewEvent("evt-1", "appointment.created", "clinic-api", at, map[string]int64{"patient_id": 7})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if ev.Version != "1" || ev.Timestamp.Location() != time.UTC {
		t.Errorf("event = %+v", ev)
	}

	raw, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(raw), `"data":{"patient_id":7}`) {
		t.Errorf("json = %s", raw)
	}

	var payload struct {
		PatientID int64 `json:"patient_id"`
	}
	if err := ev.ParseData(&payload); err != nil || payload.PatientID != 7 {
		t.Errorf("ParseData = %+v, %v", payload, err)
	}

	if _, err := NewEvent("evt-2", "bad", "clinic-api", at, make(chan int)); err == nil {
		t.Error("unmarshalable payload accepted")
	}
}

type fakeProducer struct {
	closed  int
	metrics WriterMetrics
}

func (f *fakeProducer) Stats() WriterMetrics { return f.metrics }
func (f *fakeProducer) Close() error { f.closed++; return nil }

func TestComponent_Lifecycle(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, logger.Nop())
	if c.Name() != "kafka" {
		t.Errorf("Name = %q", c.Name())
	}
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start without producer succeeded")
	}

	p := &fakeProducer{}
	c.SetProducer(p)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if p.closed != 1 {
		t.Errorf("producer closed %d times, want 1", p.closed)
	}

	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("stopped health = %s", h.Status)
	}
	if d := c.Describe(); d.Type != "kafka" || !strings.Contains(d.Details, "appointments") {
		t.Errorf("Describe = %+v", d)
	}
}
