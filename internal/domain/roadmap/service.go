package roadmap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
	"github.com/yanqian/learnmate/pkg/metrics"
)

const maxUserIDLength = 5000

// Service exposes roadmap generation, persistence and background jobs.
type Service interface {
	Generate(ctx context.Context, req Request) (Roadmap, error)
	Latest(ctx context.Context, userID string) (Roadmap, error)
	GenerateBatch(ctx context.Context, reqs []Request) BatchResult
	SubmitJob(ctx context.Context, req Request) (Job, error)
	Job(ctx context.Context, id uuid.UUID) (Job, error)
	ProcessJob(ctx context.Context, id uuid.UUID) error
	CatalogVersion() string
}

type service struct {
	cfg     Config
	engine  *Engine
	store   Store
	cache   Cache
	jobs    JobRepository
	queue   JobQueue
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService wires up the roadmap domain.
func NewService(cfg Config, engine *Engine, store Store, cache Cache, jobs JobRepository, queue JobQueue, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		cache:   cache,
		jobs:    jobs,
		queue:   queue,
		metrics: recorder,
		logger:  logger.With("component", "roadmap.service"),
	}
}

func (s *service) CatalogVersion() string {
	return s.engine.Catalog().Version()
}

func (s *service) Generate(ctx context.Context, req Request) (Roadmap, error) {
	if err := validateRequest(req); err != nil {
		s.metrics.ObserveGeneration("invalid", 0, 0)
		return Roadmap{}, err
	}

	key := s.cacheKey(req.LearnerProfile)
	if cached, ok := s.lookupCache(ctx, key); ok {
		cached = s.engine.Restamp(cached, req.WeeklyHours)
		cached.UserID = req.UserID
		s.saveLatest(ctx, cached)
		return cached, nil
	}

	started := time.Now()
	roadmap, err := s.engine.Generate(req.UserID, req.LearnerProfile)
	if err != nil {
		s.metrics.ObserveGeneration("invalid", 0, 0)
		return Roadmap{}, err
	}
	s.metrics.ObserveGeneration("success", time.Since(started), len(roadmap.Milestones))
	s.logger.Info("roadmap generated", "userId", req.UserID, "milestones", len(roadmap.Milestones))

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, roadmap, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("roadmap cache write failed", "error", err)
		}
	}
	s.saveLatest(ctx, roadmap)
	return roadmap, nil
}

func (s *service) Latest(ctx context.Context, userID string) (Roadmap, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Roadmap{}, apperrors.WrapField(apperrors.CodeInvalidInput, "userId", "userId is required", nil)
	}
	roadmap, found, err := s.store.Latest(ctx, userID)
	if err != nil {
		return Roadmap{}, apperrors.Wrap(apperrors.CodeStorage, "load roadmap", err)
	}
	if !found {
		return Roadmap{}, apperrors.Wrap(apperrors.CodeNotFound, "no roadmap for user", nil)
	}
	return roadmap, nil
}

func (s *service) lookupCache(ctx context.Context, key string) (Roadmap, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return Roadmap{}, false
	}
	cached, found, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.ObserveCache("error")
		s.logger.Warn("roadmap cache read failed", "error", err)
		return Roadmap{}, false
	case !found:
		s.metrics.ObserveCache("miss")
		return Roadmap{}, false
	default:
		s.metrics.ObserveCache("hit")
		return cached, true
	}
}

func (s *service) saveLatest(ctx context.Context, roadmap Roadmap) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveLatest(ctx, roadmap); err != nil {
		s.logger.Warn("roadmap persistence failed", "userId", roadmap.UserID, "error", err)
	}
}

// cacheKey fingerprints the profile together with the catalog version. The user id
// is not part of the key; identical profiles share one entry.
func (s *service) cacheKey(profile LearnerProfile) string {
	encoded, _ := json.Marshal(profile)
	sum := sha256.New()
	sum.Write([]byte(s.engine.Catalog().Version()))
	sum.Write([]byte{0})
	sum.Write(encoded)
	return "roadmap:" + hex.EncodeToString(sum.Sum(nil))
}

func validateRequest(req Request) error {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return apperrors.WrapField(apperrors.CodeInvalidInput, "userId", "userId is required", nil)
	}
	if len(userID) > maxUserIDLength {
		return apperrors.WrapField(apperrors.CodeInvalidInput, "userId", "userId too long", nil)
	}
	return req.LearnerProfile.Validate()
}
