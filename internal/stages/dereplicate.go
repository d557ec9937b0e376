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

// DerepParams configures the dereplication stage.
type DerepParams struct {
	Vsearch       string
	MinUniqueSize int
	Cores         int
}

// Dereplicate collapses identical reads with vsearch, annotating cluster
// sizes and discarding reads below the minimum unique abundance.
func Dereplicate(p DerepParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.assembled.*.fastq.gz")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no combined reads matching %q", pattern))
		}

		for _, input := range inputs {
			tag := fmt.Sprintf(".derepmin%d", p.MinUniqueSize)
			outputFasta := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fastq.gz", tag+".fasta"))
			outputUC := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fastq.gz", tag+".txt"))

			_, err = env.Exec(ctx, execx.Command{
				Path: p.Vsearch,
				Args: []string{
					"-derep_fulllength", input,
					"-output", outputFasta,
					"-uc", outputUC,
					"-sizeout",
					"-minuniquesize", strconv.Itoa(p.MinUniqueSize),
					"-threads", strconv.Itoa(p.Cores),
				},
			})
			if err != nil {
				return err
			}
		}

		return gzipGlob(filepath.Join(env.OutputDir, "*.fasta"))
	}
}
