package measure

import (
	"time"

	"clusterpipe/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error { return nil }

func (pm *pipelineMeasure) PrepareStage(parent, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) AfterStage(stage *model.StageInfo, status model.StageStatus, elapsed time.Duration) error {
	mt := pm.GetMetric(stage.Name)
	if mt == nil {
		return nil
	}
	mt.SetStatus(status)
	mt.SetDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) Finish() error { return nil }

// PipelineMeasure wraps a Measure as a pipeline option.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
