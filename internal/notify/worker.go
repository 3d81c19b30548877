package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/SixTanDev/BTG/internal/domain"
)

// Dispatcher consumes committed-transaction events from the queue and
// fans each one out to the sender for every enabled channel. Delivery
// failures are logged and never retried; the ledger mutation they
// relate to is already durable.
type Dispatcher struct {
	queue   Queue
	senders map[string]Sender
	log     *slog.Logger
	workers int

	wg sync.WaitGroup
}

// NewDispatcher wires a Dispatcher with the given senders and
// concurrency.
func NewDispatcher(queue Queue, senders []Sender, log *slog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	byChannel := make(map[string]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Dispatcher{queue: queue, senders: byChannel, log: log, workers: workers}
}

// Start launches the consumer goroutines. They exit when ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run(ctx)
		}()
	}
}

// Wait blocks until all consumer goroutines have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		e, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			d.log.ErrorContext(ctx, "dequeue event", "error", err)
			continue
		}
		d.Dispatch(ctx, e)
	}
}

// Dispatch delivers one event on every enabled channel.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	for _, ch := range e.Channels {
		s, ok := d.senders[ch]
		if !ok {
			d.log.WarnContext(ctx, "no sender for channel", "channel", ch, "user_id", e.UserID)
			continue
		}
		to := e.Email
		if ch == domain.ChannelSMS {
			to = e.Phone
		}
		if err := s.Send(ctx, to, e.Message); err != nil {
			d.log.ErrorContext(ctx, "notification delivery failed",
				"channel", ch, "user_id", e.UserID, "transaction_id", e.TransactionID, "error", err)
		}
	}
}
