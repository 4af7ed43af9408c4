package roadmap

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store keeps the latest roadmap of every user.
type Store interface {
	SaveLatest(ctx context.Context, roadmap Roadmap) error
	Latest(ctx context.Context, userID string) (Roadmap, bool, error)
}

// Cache memoizes generated roadmaps by input fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (Roadmap, bool, error)
	Set(ctx context.Context, key string, roadmap Roadmap, ttl time.Duration) error
}

// JobRepository persists asynchronous generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id uuid.UUID) (Job, bool, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, result Roadmap) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
}

// JobQueue enqueues processing tasks.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}
