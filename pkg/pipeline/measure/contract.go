package measure

import (
	"time"

	"clusterpipe/pkg/pipeline/model"
)

// Measure collects one Metric per stage.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records how a single stage ended and how long it took.
type Metric interface {
	SetStatus(status model.StageStatus)
	Status() model.StageStatus
	SetDuration(elapsed time.Duration)
	Duration() time.Duration
}
