package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
	"github.com/yanqian/learnmate/internal/infra/config"
	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

// RoadmapHandler wires the HTTP transport to the roadmap service.
type RoadmapHandler struct {
	svc          domain.Service
	defaultHours float64
	maxBatch     int
	bodyLimit    int64
	logger       *slog.Logger
}

// NewRoadmapHandler constructs the roadmap HTTP handler.
func NewRoadmapHandler(cfg *config.Config, svc domain.Service, logger *slog.Logger) *RoadmapHandler {
	return &RoadmapHandler{
		svc:          svc,
		defaultHours: cfg.Roadmap.DefaultWeeklyHours,
		maxBatch:     cfg.Roadmap.MaxBatchSize,
		bodyLimit:    cfg.HTTP.MaxBodyBytes,
		logger:       logger.With("component", "http.handler"),
	}
}

// roadmapRequest mirrors the public request body. Pointers distinguish absent
// fields from zero values.
type roadmapRequest struct {
	UserID        *string        `json:"userId"`
	Performance   *domain.Scores `json:"performance"`
	Semester      *int           `json:"semester"`
	Interests     []string       `json:"interests"`
	TargetCareer  string         `json:"targetCareer"`
	TimeAvailable *float64       `json:"timeAvailable"`
	KnownSkills   []string       `json:"knownSkills"`
}

type batchRequest struct {
	Requests []roadmapRequest `json:"requests"`
}

func (r roadmapRequest) missing() []string {
	var fields []string
	if r.UserID == nil || strings.TrimSpace(*r.UserID) == "" {
		fields = append(fields, "userId")
	}
	if r.Performance == nil {
		fields = append(fields, "performance")
	}
	if r.Semester == nil {
		fields = append(fields, "semester")
	}
	return fields
}

func (r roadmapRequest) toDomain(defaultHours float64) domain.Request {
	hours := defaultHours
	if r.TimeAvailable != nil {
		hours = *r.TimeAvailable
	}
	return domain.Request{
		UserID: strings.TrimSpace(*r.UserID),
		LearnerProfile: domain.LearnerProfile{
			Scores:       *r.Performance,
			Interests:    r.Interests,
			TargetCareer: r.TargetCareer,
			WeeklyHours:  hours,
			Semester:     *r.Semester,
			KnownSkills:  r.KnownSkills,
		},
	}
}

func missingFieldsError(prefix string, fields []string) *HTTPError {
	for i, f := range fields {
		fields[i] = prefix + f
	}
	httpErr := NewHTTPError(http.StatusBadRequest, "invalid_request", "missing required fields: "+strings.Join(fields, ", "), nil)
	httpErr.Field = fields[0]
	return httpErr
}

func (h *RoadmapHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if isBodyTooLarge(err) {
			abortWithError(c, payloadTooLarge(h.bodyLimit))
			return false
		}
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			abortWithError(c, fromDomainError(err))
			return false
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func (h *RoadmapHandler) decodeOne(c *gin.Context) (domain.Request, bool) {
	var body roadmapRequest
	if !h.bind(c, &body) {
		return domain.Request{}, false
	}
	if missing := body.missing(); len(missing) > 0 {
		abortWithError(c, missingFieldsError("", missing))
		return domain.Request{}, false
	}
	return body.toDomain(h.defaultHours), true
}

// Health reports liveness and the loaded catalog version.
func (h *RoadmapHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "LearnMate roadmap service is running",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"catalogVersion": h.svc.CatalogVersion(),
	})
}

// Generate builds a roadmap synchronously.
func (h *RoadmapHandler) Generate(c *gin.Context) {
	req, ok := h.decodeOne(c)
	if !ok {
		return
	}
	roadmap, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if p, ok := getPrincipal(c); ok {
		h.logger.Debug("roadmap served", "userId", req.UserID, "principal", p.Subject, "auth", p.Method)
	}
	c.JSON(http.StatusOK, roadmap)
}

// GenerateBatch builds several roadmaps concurrently.
func (h *RoadmapHandler) GenerateBatch(c *gin.Context) {
	var body batchRequest
	if !h.bind(c, &body) {
		return
	}
	if len(body.Requests) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "requests must not be empty", nil))
		return
	}
	if h.maxBatch > 0 && len(body.Requests) > h.maxBatch {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("at most %d requests per batch", h.maxBatch), nil))
		return
	}
	reqs := make([]domain.Request, len(body.Requests))
	for i, item := range body.Requests {
		if missing := item.missing(); len(missing) > 0 {
			abortWithError(c, missingFieldsError(fmt.Sprintf("requests[%d].", i), missing))
			return
		}
		reqs[i] = item.toDomain(h.defaultHours)
	}
	c.JSON(http.StatusOK, h.svc.GenerateBatch(c.Request.Context(), reqs))
}

// SubmitJob queues a roadmap for background generation.
func (h *RoadmapHandler) SubmitJob(c *gin.Context) {
	req, ok := h.decodeOne(c)
	if !ok {
		return
	}
	job, err := h.svc.SubmitJob(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// Job returns the state of a background job.
func (h *RoadmapHandler) Job(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid job id", err))
		return
	}
	job, err := h.svc.Job(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, job)
}

// Latest returns the most recent roadmap generated for a user.
func (h *RoadmapHandler) Latest(c *gin.Context) {
	roadmap, err := h.svc.Latest(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, roadmap)
}
