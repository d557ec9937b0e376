package measure

import (
	"sync"
	"time"

	"clusterpipe/pkg/pipeline/model"
)

// DefaultMetric is the default Metric implementation.
type DefaultMetric struct {
	mu      *sync.Mutex
	status  model.StageStatus
	elapsed time.Duration
}

func newDefaultMetric() *DefaultMetric {
	return &DefaultMetric{
		mu:     &sync.Mutex{},
		status: model.StatusPending,
	}
}

func (mt *DefaultMetric) SetStatus(status model.StageStatus) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.status = status
}

func (mt *DefaultMetric) Status() model.StageStatus {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.status
}

func (mt *DefaultMetric) SetDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed = elapsed
}

func (mt *DefaultMetric) Duration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.elapsed)
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
