package stages

import (
	"context"
	"path/filepath"
	"strconv"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
	"clusterpipe/pkg/readpair"
)

// PrimerParams configures the primer trimming stage.
type PrimerParams struct {
	Cutadapt      string
	ForwardPrimer string
	ReversePrimer string
	MinLength     int
}

// RemovePrimers clips the amplicon primers off both mates of every read pair
// with cutadapt, writing `_trimmed_R1`/`_trimmed_R2` outputs.
func RemovePrimers(p PrimerParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pairs, err := readpair.FindForward(env.InputDir)
		if err != nil {
			return pipeline.Discovery(err)
		}

		for _, pair := range pairs {
			trimmedFwdBase, err := readpair.WithTag(filepath.Base(pair.Forward), "trimmed")
			if err != nil {
				return pipeline.Discovery(err)
			}
			trimmedName, err := readpair.ParseName(trimmedFwdBase)
			if err != nil {
				return pipeline.Discovery(err)
			}

			trimmedForward := filepath.Join(env.OutputDir, trimmedFwdBase)
			trimmedReverse := filepath.Join(env.OutputDir, trimmedName.Mate().String())

			env.Log.Info("removing primers", "forward", pair.Forward, "reverse", pair.Reverse)
			_, err = env.Exec(ctx, execx.Command{
				Path: p.Cutadapt,
				Args: []string{
					"-a", p.ForwardPrimer,
					"-A", p.ReversePrimer,
					"-o", trimmedForward,
					"-p", trimmedReverse,
					"-m", strconv.Itoa(p.MinLength),
					pair.Forward,
					pair.Reverse,
				},
			})
			if err != nil {
				return err
			}
		}

		return nil
	}
}
