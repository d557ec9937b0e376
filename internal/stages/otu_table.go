package stages

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
)

// OTUTableParams configures the table building stage.
type OTUTableParams struct {
	Vsearch string
	// MergedReadsDir is the merge stage's checkpoint directory; per-sample
	// assembled reads are mapped against the final OTU set to build the
	// abundance table.
	MergedReadsDir string
}

// OTUTable converts each sample's assembled reads to fasta and maps them
// against the chimera-screened OTU reference at 97% identity, producing one
// OTU table per sample in both tabular and BIOM form.
func OTUTable(p OTUTableParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		refPattern := filepath.Join(env.InputDir, "*rad3.uchime.fasta")
		refs, err := sortedGlob(refPattern)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no OTU reference matching %q", refPattern))
		}
		otuRef := refs[0]

		readsPattern := filepath.Join(p.MergedReadsDir, "*.assembled.fastq.gz")
		inputs, err := sortedGlob(readsPattern)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return pipeline.Discovery(errors.Errorf("found no assembled reads matching %q", readsPattern))
		}

		for _, input := range inputs {
			fasta := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".fastq.gz", ".fasta"))

			env.Log.Info("converting reads to fasta", "input", input, "output", fasta)
			_, err = env.Exec(ctx, execx.Command{
				Path: p.Vsearch,
				Args: []string{
					"--fastq_filter", input,
					"--fastaout", fasta,
				},
			})
			if err != nil {
				return err
			}

			tableTxt := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".assembled.fastq.gz", ".uchime.otutab.txt"))
			tableBiom := filepath.Join(env.OutputDir,
				replaceSuffix(filepath.Base(input), ".assembled.fastq.gz", ".uchime.otutab.json"))

			_, err = env.Exec(ctx, execx.Command{
				Path: p.Vsearch,
				Args: []string{
					"--usearch_global", fasta,
					"--db", otuRef,
					"--id", "0.97",
					"--biomout", tableBiom,
					"--otutabout", tableTxt,
				},
			})
			if err != nil {
				return err
			}
		}

		return nil
	}
}
