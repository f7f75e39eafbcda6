package roles

import (
	"context"
	"sync"

	"voting-monitor/internal/models"
)

// PhaseReader reads the workflow phase.
type PhaseReader interface {
	WorkflowStatus(ctx context.Context) (models.Phase, error)
}

// PhaseWatcher is the phase display's own read path. It does not trust the controller's phase:
// the controller's refresh counter is only a signal telling it to read again.
type PhaseWatcher struct {
	reader PhaseReader

	mu       sync.Mutex
	observed bool
	signal   uint64
	phase    models.Phase
}

func NewPhaseWatcher(reader PhaseReader) *PhaseWatcher {
	return &PhaseWatcher{reader: reader, phase: models.PhaseUnknown}
}

// Observe re-reads the phase when signal differs from the last one seen. A failed read shows
// Unknown rather than the previous value. A nil watcher always reports Unknown.
func (w *PhaseWatcher) Observe(ctx context.Context, signal uint64) models.Phase {
	if w == nil || w.reader == nil {
		return models.PhaseUnknown
	}

	w.mu.Lock()
	if w.observed && w.signal == signal {
		p := w.phase
		w.mu.Unlock()
		return p
	}
	w.mu.Unlock()

	phase, err := w.reader.WorkflowStatus(ctx)
	if err != nil {
		phase = models.PhaseUnknown
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.observed = true
	w.signal = signal
	w.phase = phase
	return phase
}

// Phase returns the last observed value without reading.
func (w *PhaseWatcher) Phase() models.Phase {
	if w == nil {
		return models.PhaseUnknown
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}
