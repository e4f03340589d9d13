package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// QueueFactura holds invoice-render jobs, QueueEmail the follow-up sends.
	QueueFactura = "jobs:factura"
	QueueEmail   = "jobs:email"

	maxAttempts = 3
	brpopWait   = 5 * time.Second
)

func dlqKey(queue string) string { return "dlq:" + queue }

// Handler processes one raw job payload. A returned error triggers a retry;
// after maxAttempts the payload lands in the queue's DLQ.
type Handler func(ctx context.Context, payload []byte) error

// Pool consumes jobs from Redis lists with a fixed set of worker goroutines.
// BRPOP gives blocking fair-ish delivery without polling.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, handlers: make(map[string]Handler)}
}

// Register binds a handler to a queue. Must be called before Start.
func (p *Pool) Register(queue string, h Handler) { p.handlers[queue] = h }

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < p.size; i++ {
		go p.run(ctx, i, queues)
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool iniciado")
}

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.rdb.BRPop(ctx, brpopWait, queues...).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("error leyendo cola")
			time.Sleep(time.Second)
			continue
		}
		queue, payload := res[0], []byte(res[1])
		p.process(ctx, queue, payload)
	}
}

func (p *Pool) process(ctx context.Context, queue string, payload []byte) {
	handler, ok := p.handlers[queue]
	if !ok {
		return
	}
	if err := handler(ctx, payload); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("job falló")
		p.retry(ctx, queue, payload)
	}
}

// retry bumps the attempt counter embedded in the payload and either
// re-enqueues or moves the job to the DLQ.
func (p *Pool) retry(ctx context.Context, queue string, payload []byte) {
	var envelope struct {
		Attempts int `json:"attempts"`
	}
	_ = json.Unmarshal(payload, &envelope)

	var job map[string]any
	if err := json.Unmarshal(payload, &job); err != nil {
		p.toDLQ(ctx, queue, payload)
		return
	}
	job["attempts"] = envelope.Attempts + 1
	updated, err := json.Marshal(job)
	if err != nil {
		p.toDLQ(ctx, queue, payload)
		return
	}

	if envelope.Attempts+1 >= maxAttempts {
		p.toDLQ(ctx, queue, updated)
		return
	}
	if err := p.rdb.LPush(ctx, queue, updated).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("no se pudo reencolar el job")
	}
}

func (p *Pool) toDLQ(ctx context.Context, queue string, payload []byte) {
	if err := p.rdb.LPush(ctx, dlqKey(queue), payload).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("no se pudo mover el job a la DLQ")
		return
	}
	log.Warn().Str("queue", queue).Msg("job movido a la DLQ tras agotar reintentos")
}

// Enqueue serializes the job and pushes it to the queue head.
func (p *Pool) Enqueue(ctx context.Context, queue string, job any) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.rdb.LPush(ctx, queue, payload).Err()
}
