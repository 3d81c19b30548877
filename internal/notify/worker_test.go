package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SixTanDev/BTG/internal/domain"
)

type recordingSender struct {
	channel string
	err     error

	mu    sync.Mutex
	calls []string
}

func (s *recordingSender) Channel() string { return s.channel }

func (s *recordingSender) Send(ctx context.Context, to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, to+"|"+message)
	return s.err
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() Event {
	return Event{
		TransactionID: "tx-1",
		UserID:        "usr-1",
		Name:          "Jane",
		Email:         "jane@example.com",
		Phone:         "+573001112233",
		Channels:      []string{domain.ChannelEmail, domain.ChannelSMS},
		Message:       "You have subscribed to fund DEUDAPRIVADA for $500,000.00.",
		OccurredAt:    time.Now().UTC(),
	}
}

func TestDispatchFansOutPerChannel(t *testing.T) {
	email := &recordingSender{channel: domain.ChannelEmail}
	sms := &recordingSender{channel: domain.ChannelSMS}
	d := NewDispatcher(NewChanQueue(1), []Sender{email, sms}, testLogger(), 1)

	d.Dispatch(context.Background(), testEvent())

	if got := email.sent(); len(got) != 1 || !strings.HasPrefix(got[0], "jane@example.com|") {
		t.Fatalf("email calls = %v", got)
	}
	if got := sms.sent(); len(got) != 1 || !strings.HasPrefix(got[0], "+573001112233|") {
		t.Fatalf("sms calls = %v", got)
	}
}

func TestDispatchRespectsPreference(t *testing.T) {
	email := &recordingSender{channel: domain.ChannelEmail}
	sms := &recordingSender{channel: domain.ChannelSMS}
	d := NewDispatcher(NewChanQueue(1), []Sender{email, sms}, testLogger(), 1)

	e := testEvent()
	e.Channels = []string{domain.ChannelSMS}
	d.Dispatch(context.Background(), e)

	if len(email.sent()) != 0 {
		t.Fatal("email sent despite preference")
	}
	if len(sms.sent()) != 1 {
		t.Fatal("sms not sent")
	}
}

func TestDispatchDeliveryFailureIsSwallowed(t *testing.T) {
	email := &recordingSender{channel: domain.ChannelEmail, err: errors.New("smtp down")}
	sms := &recordingSender{channel: domain.ChannelSMS}
	d := NewDispatcher(NewChanQueue(1), []Sender{email, sms}, testLogger(), 1)

	// Must not panic or stop the remaining channels.
	d.Dispatch(context.Background(), testEvent())

	if len(sms.sent()) != 1 {
		t.Fatal("sms skipped after email failure")
	}
}

func TestDispatcherConsumesQueueUntilCancelled(t *testing.T) {
	queue := NewChanQueue(8)
	email := &recordingSender{channel: domain.ChannelEmail}
	d := NewDispatcher(queue, []Sender{email}, testLogger(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	e := testEvent()
	e.Channels = []string{domain.ChannelEmail}
	for i := 0; i < 5; i++ {
		if err := queue.Enqueue(ctx, e); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for len(email.sent()) < 5 {
		select {
		case <-deadline:
			t.Fatalf("delivered %d of 5 events", len(email.sent()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	done := make(chan struct{})
	go func() { d.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestMessageFormatting(t *testing.T) {
	msg := SubscribeMessage("FPV_BTG_PACTUAL_ECOPETROL", 10000000)
	if !strings.Contains(msg, "FPV_BTG_PACTUAL_ECOPETROL") {
		t.Fatalf("message missing fund name: %s", msg)
	}
	if !strings.Contains(msg, "subscribed") {
		t.Fatalf("unexpected wording: %s", msg)
	}
	cancel := CancelMessage("DEUDAPRIVADA", 5000000)
	if !strings.Contains(cancel, "refunded") {
		t.Fatalf("unexpected wording: %s", cancel)
	}
}
