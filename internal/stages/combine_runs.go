package stages

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"clusterpipe/pkg/namemerge"
	"clusterpipe/pkg/pipeline"
)

// CombineRuns concatenates the filtered reads of every sequencing run into a
// single file whose name merges the run-specific filename tokens.
func CombineRuns() pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.assembled.*.fastq.gz")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no filtered reads matching %q", pattern))
		}

		combinedBase, err := namemerge.Combine(inputs)
		if err != nil {
			return pipeline.Discovery(err)
		}
		output := filepath.Join(env.OutputDir, combinedBase)
		env.Log.Info("combining runs", "inputs", inputs, "output", output)

		return concatGzip(output, inputs)
	}
}
