package worker

import (
	"context"
	"time"

	"github.com/yunseol/ingrid/internal/core"
)

// StubWorker answers for domains that are not implemented yet (formula and
// regulation). Keeping them in the dispatch table keeps the supervisor's
// tool surface total while the real workers are built out.
type StubWorker struct {
	label   core.WorkerLabel
	message string
}

func NewFormulaWorker() *StubWorker {
	return &StubWorker{
		label:   core.WorkerFormula,
		message: "Formula search is not available yet. Please ask about ingredients instead.",
	}
}

func NewRegulationWorker() *StubWorker {
	return &StubWorker{
		label:   core.WorkerRegulation,
		message: "Regulation search is not available yet. Please ask about ingredients instead.",
	}
}

func (w *StubWorker) Label() core.WorkerLabel {
	return w.label
}

func (w *StubWorker) Process(_ context.Context, _ string, _ []core.ChatEntry) core.WorkerResponse {
	return core.WorkerResponse{
		Content:   w.message,
		Timestamp: time.Now(),
		Metadata:  map[string]any{"worker_type": string(w.label), "stub": true},
	}
}
