package stages

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"clusterpipe/internal/execx"
	"clusterpipe/pkg/pipeline"
	"clusterpipe/pkg/readpair"
)

// MergeParams configures the paired-read merging stage.
type MergeParams struct {
	Pear              string
	MinOverlap        int
	MaxAssemblyLength int
	MinAssemblyLength int
	Cores             int
}

// MergePairs assembles each forward/reverse pair into single reads with
// pear. pear cannot read gzip, so the pair is decompressed into the output
// directory first and removed again once the assembly products are
// recompressed.
func MergePairs(p MergeParams) pipeline.Body {
	return func(ctx context.Context, env *pipeline.StageEnv) error {
		pairs, err := readpair.FindForward(env.InputDir)
		if err != nil {
			return pipeline.Discovery(err)
		}

		for _, pair := range pairs {
			paths, err := gunzipInto(env.OutputDir, pair.Forward, pair.Reverse)
			if err != nil {
				return err
			}
			forward, reverse := paths[0], paths[1]

			mergedBase, err := readpair.ReplaceRole(filepath.Base(forward), "merged")
			if err != nil {
				return pipeline.Discovery(err)
			}
			prefix := filepath.Join(env.OutputDir, strings.TrimSuffix(mergedBase, ".fastq"))

			env.Log.Info("joining paired ends", "forward", forward, "reverse", reverse, "prefix", prefix)
			_, err = env.Exec(ctx, execx.Command{
				Path: p.Pear,
				Args: []string{
					"-f", forward,
					"-r", reverse,
					"-o", prefix,
					"--min-overlap", strconv.Itoa(p.MinOverlap),
					"--max-assembly-length", strconv.Itoa(p.MaxAssemblyLength),
					"--min-assembly-length", strconv.Itoa(p.MinAssemblyLength),
					"-j", strconv.Itoa(p.Cores),
				},
			})
			if err != nil {
				return err
			}

			// drop the uncompressed inputs, they are only scratch space
			if err := os.Remove(forward); err != nil {
				return errors.Wrapf(err, "removing %q", forward)
			}
			if err := os.Remove(reverse); err != nil {
				return errors.Wrapf(err, "removing %q", reverse)
			}

			if err := gzipGlob(prefix + ".*.fastq"); err != nil {
				return err
			}
		}

		return nil
	}
}
