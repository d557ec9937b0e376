package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline/model"
)

// Pipeline executes a fixed chain of stages strictly in order. The output
// directory of stage N is always the input directory of stage N+1.
type Pipeline struct {
	workDir  string
	runID    string
	log      *slog.Logger
	runner   execx.Runner
	stages   []Stage
	registry *registry
	opts     []model.PipelineOption
}

// New registers the stage chain over workDir. The stage list is fixed at
// construction; duplicate stage names are rejected.
func New(workDir string, runner execx.Runner, logger *slog.Logger, stages []Stage, opts ...model.PipelineOption) (*Pipeline, error) {
	if workDir == "" {
		return nil, errors.New("work directory must be set")
	}
	if runner == nil {
		return nil, errors.New("runner must be set")
	}
	if len(stages) == 0 {
		return nil, errors.New("at least one stage must be registered")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pipe := &Pipeline{
		workDir:  workDir,
		runID:    uuid.NewString(),
		log:      logger,
		runner:   runner,
		stages:   stages,
		registry: newRegistry(),
		opts:     opts,
	}

	for _, opt := range opts {
		if err := opt.New(); err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	var parent *model.StageInfo
	for i := range stages {
		info := &stages[i].Info
		if err := pipe.registry.addStage(info.Name); err != nil {
			return nil, err
		}
		if parent != nil {
			if err := pipe.registry.addLink(parent.Name, info.Name); err != nil {
				return nil, err
			}
		}
		for _, opt := range opts {
			if err := opt.PrepareStage(parent, info); err != nil {
				return nil, errors.Wrapf(err, "unable to prepare stage %q", info.Name)
			}
		}
		parent = info
	}

	return pipe, nil
}

// RunID returns the identifier stamped into logs and completion markers.
func (p *Pipeline) RunID() string { return p.runID }

// StageStatus reports the recorded status of a registered stage.
func (p *Pipeline) StageStatus(name string) (model.StageStatus, error) {
	return p.registry.status(name)
}

// Run executes the chain over inputDir and blocks until it finishes. It
// stops at the first failing stage; no downstream stage executes after a
// failure. On success the report lists every stage's output directory in
// order.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*model.RunReport, error) {
	report := &model.RunReport{RunID: p.runID}
	input := inputDir

	for _, stage := range p.stages {
		result, err := p.runStage(ctx, stage, input)
		p.registry.setStatus(stage.Info.Name, result.Status)
		for _, opt := range p.opts {
			if optErr := opt.AfterStage(&stage.Info, result.Status, result.Elapsed); optErr != nil {
				p.log.Warn("pipeline option failed after stage", "stage", stage.Info.Name, "error", optErr)
			}
		}
		report.Stages = append(report.Stages, result)
		if err != nil {
			p.finishRun()

			return nil, withStage(stage.Info.Name, err)
		}
		input = result.OutputDir
	}

	p.finishRun()

	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, inputDir string) (model.StageResult, error) {
	start := time.Now()
	outputDir := filepath.Join(p.workDir, stage.Info.Name)
	result := model.StageResult{
		Info:      stage.Info,
		Status:    model.StatusFailed,
		OutputDir: outputDir,
	}
	log := p.log.With("stage", stage.Info.Name, "run_id", p.runID)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		result.Elapsed = time.Since(start)

		return result, errors.Wrapf(err, "creating output directory %q", outputDir)
	}

	done, legacy, err := stageComplete(outputDir)
	if err != nil {
		result.Elapsed = time.Since(start)

		return result, err
	}
	if done {
		if legacy {
			log.Warn("resuming from a populated directory without a completion marker", "dir", outputDir)
		}
		log.Info("output directory already populated, skipping stage", "dir", outputDir)
		result.Status = model.StatusSkipped
		result.Elapsed = time.Since(start)

		return result, nil
	}

	env := &StageEnv{
		Log:       log,
		InputDir:  inputDir,
		OutputDir: outputDir,
		Runner:    p.runner,
	}
	if err := stage.Body(ctx, env); err != nil {
		result.Elapsed = time.Since(start)

		return result, err
	}

	produced, err := listVisible(outputDir)
	if err != nil {
		result.Elapsed = time.Since(start)

		return result, err
	}
	if len(produced) == 0 {
		result.Elapsed = time.Since(start)

		return result, Postcondition(errors.Errorf("no output files in directory %q", outputDir))
	}
	log.Info("stage complete", "files", produced)

	if err := writeMarker(outputDir, p.runID); err != nil {
		result.Elapsed = time.Since(start)

		return result, err
	}

	result.Status = model.StatusExecuted
	result.Elapsed = time.Since(start)

	return result, nil
}

// finishRun runs the option Finish hooks. It runs on failures too, so that
// observers such as the drawer still render the failed chain.
func (p *Pipeline) finishRun() {
	for _, opt := range p.opts {
		if err := opt.Finish(); err != nil {
			p.log.Warn("unable to finish pipeline option", "error", err)
		}
	}
}
