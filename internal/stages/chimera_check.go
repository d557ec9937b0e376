package stages

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
)

// ChimeraParams configures the reference-based chimera detection stage.
type ChimeraParams struct {
	Vsearch string
	RefDB   string
	Cores   int
}

// ChimeraCheck screens the clustered OTUs against a reference database with
// vsearch uchime, keeping the sequences that do not match a chimera model.
func ChimeraCheck(p ChimeraParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pattern := filepath.Join(env.InputDir, "*.fasta")
		inputs, err := sortedGlob(pattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no OTU sequences matching %q", pattern))
		}

		for _, input := range inputs {
			outputReport := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fasta", ".uchime.txt"))
			outputKept := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fasta", ".uchime.fasta"))

			env.Log.Info("starting chimera detection", "input", input, "db", p.RefDB)
			_, err = env.Exec(ctx, execx.Command{
				Path: p.Vsearch,
				Args: []string{
					"-uchime_ref", input,
					"-db", p.RefDB,
					"-uchimeout", outputReport,
					"-mode", "balanced",
					"-strand", "plus",
					"-notmatched", outputKept,
					"-threads", strconv.Itoa(p.Cores),
				},
			})
			if err != nil {
				return err
			}
		}

		return nil
	}
}
