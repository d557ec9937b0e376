package drawer

import (
	"time"

	"github.com/pkg/errors"

	"clusterpipe/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
}

func (pd *pipelineDrawer) New() error { return nil }

func (pd *pipelineDrawer) PrepareStage(parent, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add stage to drawer")
	}
	if parent != nil {
		err = pd.AddLink(parent.Name, stage.Name)
		if err != nil {
			return errors.Wrap(err, "unable to add link to drawer")
		}
	}

	return nil
}

func (pd *pipelineDrawer) AfterStage(stage *model.StageInfo, status model.StageStatus, elapsed time.Duration) error {
	err := pd.SetStatus(stage.Name, status)
	if err != nil {
		return errors.Wrap(err, "unable to set stage status")
	}
	err = pd.SetElapsed(stage.Name, elapsed)
	if err != nil {
		return errors.Wrap(err, "unable to set stage duration")
	}

	return nil
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer wraps a Drawer as a pipeline option.
func PipelineDrawer(d Drawer) model.PipelineOption {
	return &pipelineDrawer{d}
}
