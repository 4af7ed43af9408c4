package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

type jobEnvelope struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
}

// ValkeyQueue persists jobs in a Valkey list and delivers them to a pool of workers.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	workers     int
	logger      *slog.Logger
	pollTimeout time.Duration

	mu      sync.Mutex
	handler Handler
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, queueKey string, workers int, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "learnmate:roadmap:jobs"
	}
	if workers <= 0 {
		workers = 1
	}
	return &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		workers:     workers,
		logger:      logger.With("component", "queue.valkey"),
		pollTimeout: 5 * time.Second,
	}
}

// SetHandler starts the worker loops that pop jobs and invoke the handler.
func (q *ValkeyQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = handler
	if handler == nil || q.started {
		return
	}
	q.started = true
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.consume(ctx, i)
	}
}

// Enqueue pushes a job onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, name string, payload any) error {
	encoded, err := json.Marshal(jobEnvelope{Name: name, Payload: asPayload(payload)})
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

// Close stops the workers and waits for the job each is running.
func (q *ValkeyQueue) Close() error {
	q.mu.Lock()
	cancel := q.cancel
	q.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	q.wg.Wait()
	return nil
}

func (q *ValkeyQueue) currentHandler() Handler {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.handler
}

func (q *ValkeyQueue) consume(ctx context.Context, worker int) {
	defer q.wg.Done()
	log := q.logger.With("worker", worker)
	for {
		if ctx.Err() != nil {
			return
		}
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !valkey.IsValkeyNil(err) {
				log.Warn("valkey queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		handler := q.currentHandler()
		if len(values) < 2 || handler == nil {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			log.Warn("valkey queue payload decode failed", "error", err)
			continue
		}
		var job jobEnvelope
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Warn("valkey queue unmarshal failed", "error", err)
			continue
		}
		handler(context.WithoutCancel(ctx), job.Name, job.Payload)
	}
}

var _ HandlerQueue = (*ValkeyQueue)(nil)
