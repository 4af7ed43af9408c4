package roadmaprepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
)

const schema = `
CREATE TABLE IF NOT EXISTS roadmaps (
	user_id      TEXT PRIMARY KEY,
	payload      JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS roadmap_jobs (
	id           UUID PRIMARY KEY,
	user_id      TEXT NOT NULL,
	status       TEXT NOT NULL,
	request      JSONB NOT NULL,
	result       JSONB,
	error        TEXT,
	attempts     INT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS roadmap_jobs_user_idx ON roadmap_jobs (user_id, created_at DESC);
`

// EnsureSchema creates the tables used by the repositories when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// PostgresStore keeps the latest roadmap per user in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveLatest(ctx context.Context, roadmap domain.Roadmap) error {
	payload, err := json.Marshal(roadmap)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO roadmaps (user_id, payload, generated_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at, updated_at = NOW()
	`, roadmap.UserID, payload, roadmap.GeneratedAt)
	return err
}

func (s *PostgresStore) Latest(ctx context.Context, userID string) (domain.Roadmap, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT payload
		FROM roadmaps
		WHERE user_id = $1
		LIMIT 1
	`, userID)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Roadmap{}, false, nil
		}
		return domain.Roadmap{}, false, err
	}
	var roadmap domain.Roadmap
	if err := json.Unmarshal(payload, &roadmap); err != nil {
		return domain.Roadmap{}, false, err
	}
	return roadmap, true, nil
}

var _ domain.Store = (*PostgresStore)(nil)

// PostgresJobRepository persists background jobs in Postgres.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository constructs the repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

func (r *PostgresJobRepository) Create(ctx context.Context, job domain.Job) error {
	request, err := json.Marshal(job.Request)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO roadmap_jobs (id, user_id, status, request, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.UserID, job.Status, request, job.Attempts, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *PostgresJobRepository) Get(ctx context.Context, id uuid.UUID) (domain.Job, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, request, result, error, attempts, created_at, updated_at, completed_at
		FROM roadmap_jobs
		WHERE id = $1
		LIMIT 1
	`, id)
	var (
		job         domain.Job
		status      string
		request     []byte
		result      []byte
		failure     *string
		completedAt *time.Time
	)
	if err := row.Scan(&job.ID, &job.UserID, &status, &request, &result, &failure, &job.Attempts, &job.CreatedAt, &job.UpdatedAt, &completedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, false, nil
		}
		return domain.Job{}, false, err
	}
	job.Status = domain.JobStatus(status)
	job.Error = failure
	job.CompletedAt = completedAt
	if err := json.Unmarshal(request, &job.Request); err != nil {
		return domain.Job{}, false, err
	}
	if len(result) > 0 {
		var roadmap domain.Roadmap
		if err := json.Unmarshal(result, &roadmap); err != nil {
			return domain.Job{}, false, err
		}
		job.Result = &roadmap
	}
	return job, true, nil
}

func (r *PostgresJobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE roadmap_jobs
		SET status = $1, attempts = attempts + 1, updated_at = NOW()
		WHERE id = $2
	`, domain.JobStatusProcessing, id)
	return err
}

func (r *PostgresJobRepository) Complete(ctx context.Context, id uuid.UUID, result domain.Roadmap) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE roadmap_jobs
		SET status = $1, result = $2, error = NULL, updated_at = NOW(), completed_at = NOW()
		WHERE id = $3
	`, domain.JobStatusCompleted, payload, id)
	return err
}

func (r *PostgresJobRepository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE roadmap_jobs
		SET status = $1, error = $2, updated_at = NOW(), completed_at = NOW()
		WHERE id = $3
	`, domain.JobStatusFailed, reason, id)
	return err
}

var _ domain.JobRepository = (*PostgresJobRepository)(nil)
