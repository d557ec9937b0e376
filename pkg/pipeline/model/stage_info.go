package model

// StageStatus describes the outcome of one stage within a run.
type StageStatus string

const (
	// StatusPending means the stage has not been reached yet.
	StatusPending StageStatus = "pending"
	// StatusSkipped means the checkpoint guard found the stage already complete.
	StatusSkipped StageStatus = "skipped"
	// StatusExecuted means the stage body ran and passed the postcondition.
	StatusExecuted StageStatus = "executed"
	// StatusFailed means the stage body or its postcondition failed.
	StatusFailed StageStatus = "failed"
)

// StageInfo is the descriptor of a single stage, registered with the executor
// before any stage runs. The name doubles as the checkpoint directory name
// under the working directory.
type StageInfo struct {
	Name    string
	Ordinal int
}
