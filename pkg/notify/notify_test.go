package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

func sample() Notification {
	return Notification{
		Kind:       KindOrderConfirmed,
		Subject:    "Order confirmed",
		Body:       "Thank you",
		Recipients: []string{"buyer@example.com"},
	}
}

type recordingPublisher struct {
	topic string
	msgs  []*message.Message
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	p.topic = topic
	p.msgs = append(p.msgs, msgs...)
	return p.err
}

func TestEncodeDecode_StampsIDAndTime(t *testing.T) {
	b, stamped, err := Encode(sample())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if stamped.ID == uuid.Nil || stamped.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt to be stamped: %+v", stamped)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != stamped.ID || got.Kind != KindOrderConfirmed || got.Recipients[0] != "buyer@example.com" {
		t.Fatalf("unexpected decoded notification: %+v", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidate(t *testing.T) {
	n := sample()
	n.Recipients = nil
	if !errors.Is(n.Validate(), ErrNoRecipients) {
		t.Fatal("expected ErrNoRecipients")
	}
	n = sample()
	n.Subject = ""
	if n.Validate() == nil {
		t.Fatal("expected error for empty subject")
	}
	if err := sample().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestMetrics() (*Metrics, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return NewMetrics(mp.Meter(MeterName)), reader
}

// failedCount sums notifications.failed data points carrying reason.
func failedCount(t *testing.T, reader *sdkmetric.ManualReader, reason string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "notifications.failed" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key("reason")); ok && v.AsString() == reason {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics_NilRecordsNothing(t *testing.T) {
	var m *Metrics
	m.Failed(context.Background(), KindOrderConfirmed, "publish")
}

func TestEventBusDispatcher_PublishesToEmailTopic(t *testing.T) {
	pub := &recordingPublisher{}
	NewEventBusDispatcher(pub, logger.Discard(), nil).Enqueue(context.Background(), sample())

	if pub.topic != TopicEmail {
		t.Fatalf("topic: got %q, want %q", pub.topic, TopicEmail)
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.msgs))
	}
	if pub.msgs[0].Metadata.Get("kind") != string(KindOrderConfirmed) {
		t.Errorf("kind metadata: got %q", pub.msgs[0].Metadata.Get("kind"))
	}
	n, err := Decode(pub.msgs[0].Payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n.Subject != "Order confirmed" {
		t.Errorf("subject: got %q", n.Subject)
	}
}

func TestEventBusDispatcher_PublishErrorIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	pub := &recordingPublisher{err: errors.New("db down")}
	m, reader := newTestMetrics()
	d := NewEventBusDispatcher(pub, logger.NewWithWriter(&buf, "debug"), m)

	d.Enqueue(context.Background(), sample())

	if !strings.Contains(buf.String(), "notify: publish failed") {
		t.Fatalf("expected failure to be logged, got %s", buf.String())
	}
	if got := failedCount(t, reader, "publish"); got != 1 {
		t.Fatalf("publish failure count: got %d, want 1", got)
	}
}

func TestSafe_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	boom := DispatcherFunc(func(context.Context, Notification) { panic("boom") })

	m, reader := newTestMetrics()
	Safe(boom, logger.NewWithWriter(&buf, "info"), m).Enqueue(context.Background(), sample())

	if !strings.Contains(buf.String(), "dispatcher panicked") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
	if got := failedCount(t, reader, "panic"); got != 1 {
		t.Fatalf("panic count: got %d, want 1", got)
	}
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
	block  chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaDispatcher_FlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	d := newKafkaDispatcher(w, 8, logger.Discard(), nil)

	for i := 0; i < 3; i++ {
		d.Enqueue(context.Background(), sample())
	}
	d.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.msgs) != 3 {
		t.Fatalf("expected 3 messages written, got %d", len(w.msgs))
	}
	if !w.closed {
		t.Fatal("expected writer to be closed")
	}
	if headerValue(w.msgs[0].Headers, "kind") != string(KindOrderConfirmed) {
		t.Errorf("missing kind header: %+v", w.msgs[0].Headers)
	}
}

func TestKafkaDispatcher_DropsWhenBufferFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	var buf bytes.Buffer
	m, reader := newTestMetrics()
	d := newKafkaDispatcher(w, 1, logger.NewWithWriter(&buf, "info"), m)

	done := make(chan struct{})
	go func() {
		// The first message is taken by the drain loop and blocks in the
		// writer; the second fills the buffer; the rest are dropped.
		for i := 0; i < 5; i++ {
			d.Enqueue(context.Background(), sample())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}

	close(w.block)
	d.Close()

	if !strings.Contains(buf.String(), "buffer full") {
		t.Fatalf("expected dropped notifications to be logged, got %s", buf.String())
	}
	// At most two of the five fit: one in flight, one buffered.
	if got := failedCount(t, reader, "buffer_full"); got < 3 {
		t.Fatalf("buffer_full count: got %d, want at least 3", got)
	}
}

func TestKafkaDispatcher_EnqueueAfterClose(t *testing.T) {
	m, reader := newTestMetrics()
	d := newKafkaDispatcher(&fakeWriter{}, 1, logger.Discard(), m)
	d.Close()

	// Must not panic on a closed channel.
	d.Enqueue(context.Background(), sample())

	if got := failedCount(t, reader, "closed"); got != 1 {
		t.Fatalf("closed count: got %d, want 1", got)
	}
}

func TestKafkaDispatcher_CloseWithoutEnqueueReturns(t *testing.T) {
	w := &fakeWriter{}
	d := newKafkaDispatcher(w, 1, logger.Discard(), nil)

	done := make(chan struct{})
	go func() {
		d.Close()
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on an idle dispatcher")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		t.Fatal("expected writer to be closed")
	}
}

type captureMailer struct{ got []Notification }

func (m *captureMailer) Send(_ context.Context, n Notification) error {
	m.got = append(m.got, n)
	return nil
}

func TestDeliver(t *testing.T) {
	m := &captureMailer{}
	payload, _, err := Encode(sample())
	if err != nil {
		t.Fatal(err)
	}
	if err := Deliver(m)(context.Background(), payload); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(m.got) != 1 || m.got[0].Kind != KindOrderConfirmed {
		t.Fatalf("unexpected deliveries: %+v", m.got)
	}
	if err := Deliver(m)(context.Background(), []byte("nope")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLogMailer_RejectsNoRecipients(t *testing.T) {
	n := sample()
	n.Recipients = nil
	if err := NewLogMailer(logger.Discard()).Send(context.Background(), n); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m := NewSMTPMailer("smtp.example.com:587", "orders@example.com", "", "")
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := m.Send(context.Background(), sample()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "orders@example.com" || len(gotTo) != 1 {
		t.Fatalf("unexpected envelope: %s %s %v", gotAddr, gotFrom, gotTo)
	}
	if !bytes.Contains(gotMsg, []byte("Subject: Order confirmed\r\n")) {
		t.Fatalf("missing subject header: %q", gotMsg)
	}
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	n := sample()
	n.Subject = "hi\r\nBcc: evil@example.com"
	msg := string(buildMessage("a@example.com", n, time.Unix(0, 0)))
	if strings.Contains(msg, "\r\nBcc:") {
		t.Fatalf("header injection not neutralised: %q", msg)
	}
}
