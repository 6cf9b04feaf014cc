package reconciler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
)

// Step names one stage of a reconciliation run
type Step string

const (
	StepLoadBank   Step = "Loading bank statement"
	StepLoadLedger Step = "Loading ledger"
	StepMatch      Step = "Matching amounts"
	StepComplete   Step = "Completed"
)

// totalSteps counts the stages reported before completion
const totalSteps = 3

// ReconciliationProgress tracks the progress of a reconciliation run
type ReconciliationProgress struct {
	RunID           uuid.UUID     `json:"run_id"`
	TotalSteps      int           `json:"total_steps"`
	CompletedSteps  int           `json:"completed_steps"`
	CurrentStep     Step          `json:"current_step"`
	PercentComplete float64       `json:"percent_complete"`
	StartTime       time.Time     `json:"start_time"`
	ElapsedTime     time.Duration `json:"elapsed_time"`

	// Set once matching has finished
	Counts models.StatusCounts `json:"counts,omitempty"`
}

// ProgressCallback is called to report reconciliation progress
type ProgressCallback func(*ReconciliationProgress)

type progressTracker struct {
	callbacks []ProgressCallback
	current   ReconciliationProgress
	start     time.Time
	mutex     sync.Mutex
}

func newProgressTracker(callbacks []ProgressCallback, runID uuid.UUID) *progressTracker {
	now := time.Now()
	return &progressTracker{
		callbacks: callbacks,
		start:     now,
		current: ReconciliationProgress{
			RunID:      runID,
			TotalSteps: totalSteps,
			StartTime:  now,
		},
	}
}

// step marks the previous stage done and announces the next one
func (pt *progressTracker) step(step Step) {
	pt.update(func(p *ReconciliationProgress) {
		if p.CurrentStep != "" {
			p.CompletedSteps++
		}
		p.CurrentStep = step
	})
}

func (pt *progressTracker) done(result *matcher.Result) {
	pt.update(func(p *ReconciliationProgress) {
		p.CompletedSteps = p.TotalSteps
		p.CurrentStep = StepComplete
		p.Counts = result.Counts
	})
}

func (pt *progressTracker) update(fn func(*ReconciliationProgress)) {
	if len(pt.callbacks) == 0 {
		return
	}

	pt.mutex.Lock()
	fn(&pt.current)
	pt.current.ElapsedTime = time.Since(pt.start)
	pt.current.PercentComplete = float64(pt.current.CompletedSteps) / float64(pt.current.TotalSteps) * 100
	snapshot := pt.current
	pt.mutex.Unlock()

	for _, callback := range pt.callbacks {
		callback(&snapshot)
	}
}
