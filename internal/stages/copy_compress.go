package stages

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"clusterpipe/pkg/pipeline"
)

// CopyParams configures the ingest stage.
type CopyParams struct {
	Cores int
}

// CopyAndCompress brings the raw read files into the working directory:
// already-compressed files are copied verbatim, plain fastq files are
// gzip-compressed. This is the only stage that runs no external tool, so the
// per-file work is fanned out across the configured core count.
func CopyAndCompress(p CopyParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.fastq*")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no fastq files matching %q", pattern))
		}
		env.Log.Info("input files discovered", "glob", pattern, "count", len(inputs))

		grp, _ := errgroup.WithContext(ctx)
		limit := p.Cores
		if limit < 1 {
			limit = 1
		}
		grp.SetLimit(limit)

		for _, input := range inputs {
			input := input
			grp.Go(func() error {
				dst := filepath.Join(env.OutputDir, filepath.Base(input))
				if strings.HasSuffix(input, ".gz") {
					return copyFile(input, dst)
				}

				return compressFile(input, dst+".gz")
			})
		}

		return errors.Wrap(grp.Wait(), "ingesting read files")
	}
}
