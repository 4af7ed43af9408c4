package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	apperrors "github.com/yanqian/learnmate/pkg/errors"
	"github.com/yanqian/learnmate/pkg/logger"
	"github.com/yanqian/learnmate/pkg/metrics"
)

type stubStore struct {
	mu       sync.Mutex
	saved    map[string]Roadmap
	saveFn   func(ctx context.Context, roadmap Roadmap) error
	saveCall int
}

func newStubStore() *stubStore {
	return &stubStore{saved: map[string]Roadmap{}}
}

func (s *stubStore) SaveLatest(ctx context.Context, roadmap Roadmap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCall++
	if s.saveFn != nil {
		if err := s.saveFn(ctx, roadmap); err != nil {
			return err
		}
	}
	s.saved[roadmap.UserID] = roadmap
	return nil
}

func (s *stubStore) Latest(_ context.Context, userID string) (Roadmap, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.saved[userID]
	return rm, ok, nil
}

type stubCache struct {
	getFn func(ctx context.Context, key string) (Roadmap, bool, error)
	setFn func(ctx context.Context, key string, roadmap Roadmap, ttl time.Duration) error
}

func (c *stubCache) Get(ctx context.Context, key string) (Roadmap, bool, error) {
	if c.getFn == nil {
		return Roadmap{}, false, nil
	}
	return c.getFn(ctx, key)
}

func (c *stubCache) Set(ctx context.Context, key string, roadmap Roadmap, ttl time.Duration) error {
	if c.setFn == nil {
		return nil
	}
	return c.setFn(ctx, key, roadmap, ttl)
}

type stubJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]Job
}

func newStubJobs() *stubJobs {
	return &stubJobs{jobs: map[uuid.UUID]Job{}}
}

func (j *stubJobs) Create(_ context.Context, job Job) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jobs[job.ID] = job
	return nil
}

func (j *stubJobs) Get(_ context.Context, id uuid.UUID) (Job, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[id]
	return job, ok, nil
}

func (j *stubJobs) MarkProcessing(_ context.Context, id uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	job := j.jobs[id]
	job.Status = JobStatusProcessing
	job.Attempts++
	j.jobs[id] = job
	return nil
}

func (j *stubJobs) Complete(_ context.Context, id uuid.UUID, result Roadmap) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	job := j.jobs[id]
	job.Status = JobStatusCompleted
	job.Result = &result
	j.jobs[id] = job
	return nil
}

func (j *stubJobs) Fail(_ context.Context, id uuid.UUID, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	job := j.jobs[id]
	job.Status = JobStatusFailed
	job.Error = &reason
	j.jobs[id] = job
	return nil
}

type stubQueue struct {
	enqueueFn func(ctx context.Context, name string, payload any) error
	names     []string
	payloads  []any
}

func (q *stubQueue) Enqueue(ctx context.Context, name string, payload any) error {
	q.names = append(q.names, name)
	q.payloads = append(q.payloads, payload)
	if q.enqueueFn != nil {
		return q.enqueueFn(ctx, name, payload)
	}
	return nil
}

type fixture struct {
	svc      Service
	store    *stubStore
	cache    *stubCache
	jobs     *stubJobs
	queue    *stubQueue
	recorder *metrics.Recorder
}

func newFixture(t *testing.T, cfg Config) fixture {
	t.Helper()
	catalog, err := curriculum.Default()
	require.NoError(t, err)
	f := fixture{
		store:    newStubStore(),
		cache:    &stubCache{},
		jobs:     newStubJobs(),
		queue:    &stubQueue{},
		recorder: metrics.New(),
	}
	engine := NewEngine(catalog, cfg.Engine).WithClock(func() time.Time { return fixedNow })
	f.svc = NewService(cfg, engine, f.store, f.cache, f.jobs, f.queue, f.recorder, logger.Discard())
	return f
}

func requireMetric(t *testing.T, rec *metrics.Recorder, name, help, labels string) {
	t.Helper()
	expected := fmt.Sprintf("# HELP %s %s\n# TYPE %s counter\n%s{%s} 1\n", name, help, name, name, labels)
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), name))
}

func validRequest(userID string) Request {
	return Request{
		UserID: userID,
		LearnerProfile: LearnerProfile{
			Scores:      scores("AI", 40, "Math", 85),
			WeeklyHours: 10,
			Semester:    2,
		},
	}
}

func TestServiceGeneratePersistsLatest(t *testing.T) {
	f := newFixture(t, Config{CacheTTL: time.Minute})
	var setKey string
	f.cache.setFn = func(_ context.Context, key string, _ Roadmap, ttl time.Duration) error {
		setKey = key
		require.Equal(t, time.Minute, ttl)
		return nil
	}

	rm, err := f.svc.Generate(context.Background(), validRequest("u-1"))
	require.NoError(t, err)
	require.Len(t, rm.Milestones, 5)
	require.Contains(t, setKey, "roadmap:")

	latest, err := f.svc.Latest(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, rm, latest)
	requireMetric(t, f.recorder, "roadmap_generations_total", "Roadmap generations by outcome.", `outcome="success"`)
}

func TestServiceGenerateServesCacheHits(t *testing.T) {
	f := newFixture(t, Config{CacheTTL: time.Minute})
	cached := Roadmap{UserID: "someone-else", Milestones: []Milestone{{Title: "cached"}}}
	f.cache.getFn = func(context.Context, string) (Roadmap, bool, error) {
		return cached, true, nil
	}

	rm, err := f.svc.Generate(context.Background(), validRequest("u-2"))
	require.NoError(t, err)
	require.Equal(t, "u-2", rm.UserID)
	require.Equal(t, "cached", rm.Milestones[0].Title)

	latest, err := f.svc.Latest(context.Background(), "u-2")
	require.NoError(t, err)
	require.Equal(t, "u-2", latest.UserID)
}

func TestServiceCacheHitsFollowTheClock(t *testing.T) {
	catalog, err := curriculum.Default()
	require.NoError(t, err)
	now := fixedNow
	engine := NewEngine(catalog, EngineConfig{}).WithClock(func() time.Time { return now })

	var stored *Roadmap
	cache := &stubCache{
		getFn: func(context.Context, string) (Roadmap, bool, error) {
			if stored == nil {
				return Roadmap{}, false, nil
			}
			return *stored, true, nil
		},
		setFn: func(_ context.Context, _ string, rm Roadmap, _ time.Duration) error {
			stored = &rm
			return nil
		},
	}
	svc := NewService(Config{CacheTTL: time.Hour}, engine, newStubStore(), cache, newStubJobs(), &stubQueue{}, metrics.New(), logger.Discard())

	first, err := svc.Generate(context.Background(), validRequest("u-1"))
	require.NoError(t, err)
	require.NotNil(t, stored)

	now = fixedNow.Add(7 * 24 * time.Hour)
	second, err := svc.Generate(context.Background(), validRequest("u-2"))
	require.NoError(t, err)

	fresh, err := engine.Generate("u-2", validRequest("u-2").LearnerProfile)
	require.NoError(t, err)
	require.True(t, second.GeneratedAt.Equal(now))
	require.Equal(t, fresh.Milestones, second.Milestones)
	require.NotEqual(t, first.Milestones[0].TargetDate, second.Milestones[0].TargetDate)
	require.Equal(t, first.Milestones[0].TargetDate, stored.Milestones[0].TargetDate)
}

func TestServiceGenerateToleratesInfraFailures(t *testing.T) {
	f := newFixture(t, Config{CacheTTL: time.Minute})
	f.cache.getFn = func(context.Context, string) (Roadmap, bool, error) {
		return Roadmap{}, false, errors.New("valkey down")
	}
	f.cache.setFn = func(context.Context, string, Roadmap, time.Duration) error {
		return errors.New("valkey down")
	}
	f.store.saveFn = func(context.Context, Roadmap) error { return errors.New("postgres down") }

	rm, err := f.svc.Generate(context.Background(), validRequest("u-3"))
	require.NoError(t, err)
	require.NotEmpty(t, rm.Milestones)

	_, err = f.svc.Latest(context.Background(), "u-3")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestServiceCacheKeyIgnoresUserButTracksProfile(t *testing.T) {
	f := newFixture(t, Config{CacheTTL: time.Minute})
	var keys []string
	f.cache.getFn = func(_ context.Context, key string) (Roadmap, bool, error) {
		keys = append(keys, key)
		return Roadmap{}, false, nil
	}

	_, err := f.svc.Generate(context.Background(), validRequest("a"))
	require.NoError(t, err)
	_, err = f.svc.Generate(context.Background(), validRequest("b"))
	require.NoError(t, err)
	reordered := validRequest("c")
	reordered.Scores = scores("Math", 85, "AI", 40)
	_, err = f.svc.Generate(context.Background(), reordered)
	require.NoError(t, err)

	require.Len(t, keys, 3)
	require.Equal(t, keys[0], keys[1])
	require.NotEqual(t, keys[0], keys[2])
}

func TestServiceGenerateValidation(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.svc.Generate(context.Background(), Request{LearnerProfile: validRequest("").LearnerProfile})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, "userId", apperrors.FieldOf(err))

	bad := validRequest("u-4")
	bad.Semester = 12
	_, err = f.svc.Generate(context.Background(), bad)
	require.Equal(t, "semester", apperrors.FieldOf(err))
	require.Zero(t, f.store.saveCall)
}

func TestServiceLatestNotFound(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.Latest(context.Background(), "ghost")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGenerateBatchKeepsOrder(t *testing.T) {
	f := newFixture(t, Config{BatchConcurrency: 3})
	reqs := []Request{validRequest("u-1"), {UserID: "u-2"}, validRequest("u-3"), validRequest("u-4")}

	result := f.svc.GenerateBatch(context.Background(), reqs)
	require.Equal(t, 4, result.TotalProcessed)
	require.Equal(t, 3, result.Successful)
	require.Equal(t, 1, result.Failed)
	require.GreaterOrEqual(t, result.ProcessingTime, 0.0)
	for i, item := range result.Results {
		require.Equal(t, i, item.Index)
		require.Equal(t, reqs[i].UserID, item.UserID)
	}
	require.Equal(t, "error", result.Results[1].Status)
	require.Contains(t, result.Results[1].Error, "semester")
	require.Nil(t, result.Results[1].Data)
	require.Equal(t, "success", result.Results[3].Status)
	require.NotNil(t, result.Results[3].Data)
}

func TestSubmitAndProcessJob(t *testing.T) {
	f := newFixture(t, Config{Jobs: JobConfig{MaxAttempts: 3}})

	job, err := f.svc.SubmitJob(context.Background(), validRequest("u-5"))
	require.NoError(t, err)
	require.Equal(t, JobStatusPending, job.Status)
	require.Equal(t, []string{JobName}, f.queue.names)

	id, err := JobIDFromPayload(f.queue.payloads[0].(map[string]any))
	require.NoError(t, err)
	require.Equal(t, job.ID, id)

	require.NoError(t, f.svc.ProcessJob(context.Background(), id))
	done, err := f.svc.Job(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, JobStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	require.Len(t, done.Result.Milestones, 5)

	latest, err := f.svc.Latest(context.Background(), "u-5")
	require.NoError(t, err)
	require.Equal(t, *done.Result, latest)

	// completed jobs are not reprocessed
	require.NoError(t, f.svc.ProcessJob(context.Background(), id))
	again, _ := f.svc.Job(context.Background(), id)
	require.Equal(t, 1, again.Attempts)
}

func TestProcessJobRetriesPersistence(t *testing.T) {
	f := newFixture(t, Config{Jobs: JobConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond}})
	failures := 2
	f.store.saveFn = func(context.Context, Roadmap) error {
		if failures > 0 {
			failures--
			return errors.New("transient")
		}
		return nil
	}

	job, err := f.svc.SubmitJob(context.Background(), validRequest("u-6"))
	require.NoError(t, err)
	require.NoError(t, f.svc.ProcessJob(context.Background(), job.ID))
	require.Equal(t, 3, f.store.saveCall)

	done, _ := f.svc.Job(context.Background(), job.ID)
	require.Equal(t, JobStatusCompleted, done.Status)
}

func TestProcessJobFailsAfterExhaustingRetries(t *testing.T) {
	f := newFixture(t, Config{Jobs: JobConfig{MaxAttempts: 2, BaseBackoff: time.Millisecond}})
	f.store.saveFn = func(context.Context, Roadmap) error { return errors.New("postgres down") }

	job, err := f.svc.SubmitJob(context.Background(), validRequest("u-7"))
	require.NoError(t, err)
	err = f.svc.ProcessJob(context.Background(), job.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
	require.Equal(t, 2, f.store.saveCall)

	failed, _ := f.svc.Job(context.Background(), job.ID)
	require.Equal(t, JobStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	requireMetric(t, f.recorder, "roadmap_jobs_total", "Asynchronous roadmap jobs by terminal status.", `status="failed"`)
}

func TestProcessJobDoesNotRetryInvalidInput(t *testing.T) {
	f := newFixture(t, Config{Jobs: JobConfig{MaxAttempts: 5, BaseBackoff: time.Millisecond}})
	id := uuid.New()
	bad := validRequest("u-8")
	bad.Semester = 0
	require.NoError(t, f.jobs.Create(context.Background(), Job{ID: id, UserID: "u-8", Status: JobStatusPending, Request: bad}))

	err := f.svc.ProcessJob(context.Background(), id)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, f.store.saveCall)

	failed, _ := f.svc.Job(context.Background(), id)
	require.Equal(t, JobStatusFailed, failed.Status)
	require.Equal(t, 1, failed.Attempts)
}

func TestSubmitJobEnqueueFailure(t *testing.T) {
	f := newFixture(t, Config{})
	f.queue.enqueueFn = func(context.Context, string, any) error { return errors.New("queue full") }

	_, err := f.svc.SubmitJob(context.Background(), validRequest("u-9"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeQueue))
}

func TestJobUnknown(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.Job(context.Background(), uuid.New())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.True(t, apperrors.IsCode(f.svc.ProcessJob(context.Background(), uuid.New()), apperrors.CodeNotFound))

	_, err = JobIDFromPayload(map[string]any{"jobId": "nope"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
