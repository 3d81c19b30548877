package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const queueKey = "notify:events"

// RedisQueue is a Queue backed by a Redis list.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue returns a new RedisQueue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue pushes the event onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, queueKey, b).Err()
}

// Dequeue blocks on the list until an event arrives or ctx is done.
func (q *RedisQueue) Dequeue(ctx context.Context) (Event, error) {
	res, err := q.rdb.BRPop(ctx, 0, queueKey).Result()
	if err != nil {
		return Event{}, err
	}
	if len(res) != 2 {
		return Event{}, fmt.Errorf("unexpected brpop reply of %d elements", len(res))
	}
	var e Event
	if err := json.Unmarshal([]byte(res[1]), &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// ChanQueue is an in-process Queue used by tests and database-less
// development runs.
type ChanQueue struct {
	ch chan Event
}

// NewChanQueue returns a ChanQueue with the given buffer size.
func NewChanQueue(size int) *ChanQueue {
	return &ChanQueue{ch: make(chan Event, size)}
}

func (q *ChanQueue) Enqueue(ctx context.Context, e Event) error {
	select {
	case q.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("event queue full")
	}
}

func (q *ChanQueue) Dequeue(ctx context.Context) (Event, error) {
	select {
	case e := <-q.ch:
		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}
