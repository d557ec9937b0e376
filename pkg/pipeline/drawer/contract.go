package drawer

import (
	"time"

	"clusterpipe/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(stageName string) error
	// AddLink adds a link between parent and child stages.
	AddLink(parentStageName, childStageName string) error
	// SetStatus colours a stage according to how it ended.
	SetStatus(stageName string, status model.StageStatus) error
	// SetElapsed labels a stage with its wall-clock duration.
	SetElapsed(stageName string, elapsed time.Duration) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
