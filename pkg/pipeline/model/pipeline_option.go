package model

import "time"

// PipelineOption defines the interface for pipeline options. Options observe
// the lifecycle of a run; they cannot alter stage sequencing.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	// PrepareStage runs when a stage is registered, before any stage executes.
	// parent is nil for the first stage.
	PrepareStage(parent, stage *StageInfo) error

	// AfterStage runs once a stage has finished, whether it was executed,
	// skipped by the checkpoint guard, or failed.
	AfterStage(stage *StageInfo, status StageStatus, elapsed time.Duration) error

	// Finish runs after the pipeline is finished.
	Finish() error
}
