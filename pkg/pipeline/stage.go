package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline/model"
)

// Body performs the work of one stage: file discovery, external tool
// invocation and output placement. It must write at least one file into
// env.OutputDir, or the executor fails the run with a postcondition error.
type Body func(ctx context.Context, env *StageEnv) error

// Stage pairs a descriptor with its body.
type Stage struct {
	Info model.StageInfo
	Body Body
}

// StageEnv is what a stage body gets to work with. InputDir is the previous
// stage's output directory, or the initial input set for the first stage.
type StageEnv struct {
	Log       *slog.Logger
	InputDir  string
	OutputDir string
	Runner    execx.Runner
}

// Exec runs one external tool invocation through the command runner,
// blocking until it exits. Failures are logged with the captured combined
// output and returned as execution errors.
func (e *StageEnv) Exec(ctx context.Context, cmd execx.Command) (string, error) {
	e.Log.Info("executing", "cmd", cmd.String())

	out, err := e.Runner.Run(ctx, cmd)
	if err != nil {
		var xerr *execx.ExecError
		if errors.As(err, &xerr) {
			e.Log.Error("command failed", "cmd", cmd.String(), "output", xerr.Output)
		}

		return "", Execution(err)
	}

	return out, nil
}

// markerName is the completion marker the executor writes into a stage's
// output directory once the postcondition check has passed. It is hidden so
// it never counts as stage output.
const markerName = ".clusterpipe.done"

func markerPath(dir string) string { return filepath.Join(dir, markerName) }

func writeMarker(dir, runID string) error {
	content := fmt.Sprintf("run_id=%s\ncompleted_at=%s\n", runID, time.Now().UTC().Format(time.RFC3339))
	err := os.WriteFile(markerPath(dir), []byte(content), 0o644)

	return errors.Wrapf(err, "writing completion marker in %q", dir)
}

func hasMarker(dir string) (bool, error) {
	_, err := os.Stat(markerPath(dir))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrapf(err, "checking completion marker in %q", dir)
}

// listVisible returns the sorted non-hidden entries of dir. Hidden entries
// never count as stage output.
func listVisible(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %q", dir)
	}

	visible := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		visible = append(visible, entry.Name())
	}

	return visible, nil
}

// stageComplete decides whether a stage's checkpoint already holds a
// completed run. The completion marker is authoritative; a populated
// directory without one is honoured as a legacy checkpoint so that work
// trees written before markers existed remain resumable.
func stageComplete(dir string) (done, legacy bool, err error) {
	marked, err := hasMarker(dir)
	if err != nil {
		return false, false, err
	}
	if marked {
		return true, false, nil
	}

	visible, err := listVisible(dir)
	if err != nil {
		return false, false, err
	}

	return len(visible) > 0, true, nil
}
