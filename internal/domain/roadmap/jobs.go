package roadmap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
	"github.com/yanqian/learnmate/pkg/util"
)

// JobName is the queue task that generates a roadmap in the background.
const JobName = "generate_roadmap"

// JobStatus tracks background generation progress.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one asynchronous generation request.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"userId"`
	Status      JobStatus  `json:"status"`
	Request     Request    `json:"-"`
	Result      *Roadmap   `json:"result,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// JobIDFromPayload extracts the job id from a queue payload.
func JobIDFromPayload(payload map[string]any) (uuid.UUID, error) {
	raw, _ := payload["jobId"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.WrapField(apperrors.CodeInvalidInput, "jobId", "invalid job id", err)
	}
	return id, nil
}

func (s *service) SubmitJob(ctx context.Context, req Request) (Job, error) {
	if err := validateRequest(req); err != nil {
		return Job{}, err
	}
	now := util.NowUTC()
	job := Job{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Status:    JobStatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return Job{}, apperrors.Wrap(apperrors.CodeStorage, "create job", err)
	}
	if err := s.queue.Enqueue(ctx, JobName, map[string]any{"jobId": job.ID.String()}); err != nil {
		_ = s.jobs.Fail(ctx, job.ID, "enqueue failed")
		return Job{}, apperrors.Wrap(apperrors.CodeQueue, "enqueue job", err)
	}
	s.logger.Info("roadmap job submitted", "jobId", job.ID, "userId", job.UserID)
	return job, nil
}

func (s *service) Job(ctx context.Context, id uuid.UUID) (Job, error) {
	job, found, err := s.jobs.Get(ctx, id)
	if err != nil {
		return Job{}, apperrors.Wrap(apperrors.CodeStorage, "load job", err)
	}
	if !found {
		return Job{}, apperrors.Wrap(apperrors.CodeNotFound, "job not found", nil)
	}
	return job, nil
}

func (s *service) ProcessJob(ctx context.Context, id uuid.UUID) error {
	job, found, err := s.jobs.Get(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "load job", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "job not found", nil)
	}
	if job.Status == JobStatusCompleted {
		return nil
	}
	if err := s.jobs.MarkProcessing(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "claim job", err)
	}
	log := s.logger.With("jobId", id, "userId", job.UserID)

	roadmap, err := s.engine.Generate(job.Request.UserID, job.Request.LearnerProfile)
	if err != nil {
		s.metrics.ObserveGeneration("invalid", 0, 0)
		return s.failJob(ctx, log, id, err)
	}

	attempts, err := s.retry(ctx, func() error {
		return s.store.SaveLatest(ctx, roadmap)
	})
	if err != nil {
		log.Warn("roadmap persistence exhausted retries", "attempts", attempts, "error", err)
		return s.failJob(ctx, log, id, apperrors.Wrap(apperrors.CodeStorage, "persist roadmap", err))
	}
	if err := s.jobs.Complete(ctx, id, roadmap); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "complete job", err)
	}
	s.metrics.ObserveJob(string(JobStatusCompleted))
	log.Info("roadmap job completed", "attempts", attempts, "milestones", len(roadmap.Milestones))
	return nil
}

func (s *service) failJob(ctx context.Context, log *slog.Logger, id uuid.UUID, cause error) error {
	if err := s.jobs.Fail(ctx, id, cause.Error()); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "fail job", errors.Join(cause, err))
	}
	s.metrics.ObserveJob(string(JobStatusFailed))
	log.Warn("roadmap job failed", "error", cause)
	return cause
}

// retry runs fn up to the configured attempts with exponential backoff. Input
// validation failures are returned immediately.
func (s *service) retry(ctx context.Context, fn func() error) (int, error) {
	maxAttempts := s.cfg.Jobs.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := s.cfg.Jobs.BaseBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return attempt, nil
		}
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) || attempt == maxAttempts {
			return attempt, err
		}
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return maxAttempts, err
}
