package stages

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
)

// FilterParams configures the quality filtering stage.
type FilterParams struct {
	Vsearch  string
	MaxEE    int
	TruncLen int
	Cores    int
}

// QualityFilter truncates the assembled reads and drops those above the
// expected-error threshold with vsearch. The thresholds are recorded in the
// output filenames so downstream results are self-describing.
func QualityFilter(p FilterParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.assembled.fastq.gz")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no assembled reads matching %q", pattern))
		}
		env.Log.Info("input files discovered", "glob", pattern, "count", len(inputs))

		for _, input := range inputs {
			outBase := replaceSuffix(
				filepath.Base(input),
				".fastq.gz",
				fmt.Sprintf(".ee%dtrunc%d.fastq", p.MaxEE, p.TruncLen))
			output := filepath.Join(env.OutputDir, outBase)

			env.Log.Info("filtering", "input", input, "output", output)
			_, err = env.Exec(ctx, execx.Command{
				Path: p.Vsearch,
				Args: []string{
					"-fastq_filter", input,
					"-fastqout", output,
					"-fastq_maxee", strconv.Itoa(p.MaxEE),
					"-fastq_trunclen", strconv.Itoa(p.TruncLen),
					"-threads", strconv.Itoa(p.Cores),
				},
			})
			if err != nil {
				return err
			}
		}

		return gzipGlob(filepath.Join(env.OutputDir, "*.assembled.*.fastq"))
	}
}
