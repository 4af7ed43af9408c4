package roadmap

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/learnmate/pkg/util"
)

const defaultBatchConcurrency = 4

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Index  int      `json:"index"`
	UserID string   `json:"userId"`
	Status string   `json:"status"`
	Data   *Roadmap `json:"data,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// BatchResult aggregates a batch run. Results follow input order.
type BatchResult struct {
	TotalProcessed int         `json:"totalProcessed"`
	Successful     int         `json:"successful"`
	Failed         int         `json:"failed"`
	ProcessingTime float64     `json:"processingTime"`
	Results        []BatchItem `json:"results"`
}

func (s *service) GenerateBatch(ctx context.Context, reqs []Request) BatchResult {
	started := time.Now()
	limit := s.cfg.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			item := BatchItem{Index: i, UserID: req.UserID}
			if err := gctx.Err(); err != nil {
				item.Status = "error"
				item.Error = err.Error()
				items[i] = item
				return nil
			}
			roadmap, err := s.Generate(gctx, req)
			if err != nil {
				item.Status = "error"
				item.Error = err.Error()
			} else {
				item.Status = "success"
				item.Data = &roadmap
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{TotalProcessed: len(reqs), Results: items}
	for _, item := range items {
		if item.Status == "success" {
			result.Successful++
		} else {
			result.Failed++
		}
	}
	result.ProcessingTime = util.Round2(time.Since(started).Seconds())
	s.logger.Info("roadmap batch processed", "total", result.TotalProcessed, "failed", result.Failed)
	return result
}
