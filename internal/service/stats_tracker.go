package service

import (
	"context"
	"sync"
	"time"

	"go-deforest-monitor/internal/observer"
	"go-deforest-monitor/pkg/models"
)

// StatsTracker maintains the running analytics aggregate across analyses.
// It is an explicit object owned by the service, not process-global state,
// so differently configured services track independently. It doubles as an
// event observer.
type StatsTracker struct {
	mu               sync.RWMutex
	totalProcessed   int64
	totalFailed      int64
	avgDeforestation float64
	lastProcessedAt  *time.Time
}

// NewStatsTracker creates an empty tracker
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// OnEvent updates the aggregate from analysis lifecycle events
func (t *StatsTracker) OnEvent(ctx context.Context, event observer.AnalysisEvent) {
	switch event.EventType {
	case observer.AnalysisCompleted:
		if event.DeforestationPercentage != nil {
			t.RecordSuccess(*event.DeforestationPercentage, event.Timestamp)
		}
	case observer.AnalysisFailed:
		t.RecordFailure()
	}
}

// GetObserverName returns the observer name
func (t *StatsTracker) GetObserverName() string {
	return "stats_tracker"
}

// RecordSuccess folds one result into the running mean
func (t *StatsTracker) RecordSuccess(deforestationPercentage float64, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := float64(t.totalProcessed)
	t.totalProcessed++
	t.avgDeforestation = (t.avgDeforestation*prev + deforestationPercentage) / float64(t.totalProcessed)
	t.lastProcessedAt = &at
}

// RecordFailure counts one failed analysis
func (t *StatsTracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFailed++
}

// RecordBatch folds a whole batch report into the aggregate
func (t *StatsTracker) RecordBatch(report *models.BatchReport, at time.Time) {
	for i := range report.Processed {
		t.RecordSuccess(report.Processed[i].DeforestationPercentage, at)
	}
	t.mu.Lock()
	t.totalFailed += int64(report.Summary.FailedCount)
	t.mu.Unlock()
}

// Stats returns a snapshot of the aggregate
func (t *StatsTracker) Stats() models.ProcessingStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := models.ProcessingStats{
		TotalProcessed:                 t.totalProcessed,
		TotalFailed:                    t.totalFailed,
		AverageDeforestationPercentage: t.avgDeforestation,
	}
	if t.lastProcessedAt != nil {
		at := *t.lastProcessedAt
		stats.LastProcessedAt = &at
	}
	return stats
}
