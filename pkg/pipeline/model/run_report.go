package model

import "time"

// StageResult records how a single stage ended.
type StageResult struct {
	Info      StageInfo
	Status    StageStatus
	OutputDir string
	Elapsed   time.Duration
}

// RunReport is the result of a successful pipeline run: the run identifier
// and the ordered list of stage results, one per registered stage.
type RunReport struct {
	RunID  string
	Stages []StageResult
}

// OutputDirs returns the stage output directories in execution order.
func (r *RunReport) OutputDirs() []string {
	dirs := make([]string, 0, len(r.Stages))
	for _, res := range r.Stages {
		dirs = append(dirs, res.OutputDir)
	}

	return dirs
}
