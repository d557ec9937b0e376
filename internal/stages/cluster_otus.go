package stages

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
)

// ClusterParams configures the OTU clustering stage.
type ClusterParams struct {
	Usearch string
}

// ClusterOTUs clusters the dereplicated reads into OTUs at 97% identity with
// usearch. usearch cannot read gzip, so each input is decompressed into the
// output directory for the duration of the call.
func ClusterOTUs(p ClusterParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.fasta.gz")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no dereplicated reads matching %q", pattern))
		}

		for _, compressed := range inputs {
			paths, err := gunzipInto(env.OutputDir, compressed)
			if err != nil {
				return err
			}
			input := paths[0]

			outputOTU := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fasta", ".rad3.fasta"))
			outputUparse := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fasta", ".rad3.txt"))

			_, err = env.Exec(ctx, execx.Command{
				Path: p.Usearch,
				Args: []string{
					"-cluster_otus", input,
					"-otus", outputOTU,
					"-relabel", "OTU_",
					"-uparseout", outputUparse,
				},
			})
			if err != nil {
				return err
			}

			if err := os.Remove(input); err != nil {
				return errors.Wrapf(err, "removing %q", input)
			}
		}

		return nil
	}
}
