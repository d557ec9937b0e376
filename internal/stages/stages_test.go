package stages_test

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterpipe/internal/execx"
	"clusterpipe/internal/stages"
	"clusterpipe/pkg/pipeline"
	"clusterpipe/pkg/readpair"
)

func newEnv(t *testing.T, runner execx.Runner) *pipeline.StageEnv {
	t.Helper()

	return &pipeline.StageEnv{
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		InputDir:  t.TempDir(),
		OutputDir: t.TempDir(),
		Runner:    runner,
	}
}

func writePlain(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	zwr := gzip.NewWriter(file)
	_, err = zwr.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zwr.Close())
	require.NoError(t, file.Close())

	return path
}

func readGzip(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	zrd, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer zrd.Close()
	raw, err := io.ReadAll(zrd)
	require.NoError(t, err)

	return string(raw)
}

// argValue returns the value following flag in args, or "".
func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func TestCopyAndCompress(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{}
	env := newEnv(t, stub)
	writePlain(t, env.InputDir, "A_Run3_R1.fastq", "@read\nACGT\n+\nIIII\n")
	writeGzip(t, env.InputDir, "A_Run3_R2.fastq.gz", "@read\nTGCA\n+\nIIII\n")
	writePlain(t, env.InputDir, "notes.txt", "ignored")

	body := stages.CopyAndCompress(stages.CopyParams{Cores: 2})
	require.NoError(t, body(context.Background(), env))

	assert.Empty(t, stub.Calls())
	assert.Equal(t, "@read\nACGT\n+\nIIII\n",
		readGzip(t, filepath.Join(env.OutputDir, "A_Run3_R1.fastq.gz")))
	assert.Equal(t, "@read\nTGCA\n+\nIIII\n",
		readGzip(t, filepath.Join(env.OutputDir, "A_Run3_R2.fastq.gz")))
	_, err := os.Stat(filepath.Join(env.OutputDir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyAndCompressNoInput(t *testing.T) {
	t.Parallel()

	env := newEnv(t, &execx.StubRunner{})
	body := stages.CopyAndCompress(stages.CopyParams{Cores: 1})

	err := body(context.Background(), env)
	require.Error(t, err)

	kind, ok := pipeline.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.KindDiscovery, kind)
}

func TestRemovePrimers(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{}
	env := newEnv(t, stub)
	writeGzip(t, env.InputDir, "Mock_Run3_V4_R1.fastq.gz", "fwd")
	writeGzip(t, env.InputDir, "Mock_Run3_V4_R2.fastq.gz", "rev")

	body := stages.RemovePrimers(stages.PrimerParams{
		Cutadapt:      "cutadapt",
		ForwardPrimer: "ATTAGAWACCCVNGTAGTCC",
		ReversePrimer: "TTACCGCGGCKGCTGGCAC",
		MinLength:     100,
	})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, "cutadapt", calls[0].Path)
	assert.Equal(t, "ATTAGAWACCCVNGTAGTCC", argValue(args, "-a"))
	assert.Equal(t, "TTACCGCGGCKGCTGGCAC", argValue(args, "-A"))
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock_Run3_V4_trimmed_R1.fastq.gz"), argValue(args, "-o"))
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock_Run3_V4_trimmed_R2.fastq.gz"), argValue(args, "-p"))
	assert.Equal(t, "100", argValue(args, "-m"))
	assert.Equal(t, filepath.Join(env.InputDir, "Mock_Run3_V4_R1.fastq.gz"), args[len(args)-2])
	assert.Equal(t, filepath.Join(env.InputDir, "Mock_Run3_V4_R2.fastq.gz"), args[len(args)-1])
}

func TestRemovePrimersNoForwardReads(t *testing.T) {
	t.Parallel()

	env := newEnv(t, &execx.StubRunner{})
	body := stages.RemovePrimers(stages.PrimerParams{Cutadapt: "cutadapt"})

	err := body(context.Background(), env)
	require.ErrorIs(t, err, readpair.ErrNoForwardReads)

	kind, ok := pipeline.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.KindDiscovery, kind)
}

func TestMergePairs(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			prefix := argValue(cmd.Args, "-o")
			if err := os.WriteFile(prefix+".assembled.fastq", []byte("@m\nACGT\n+\nIIII\n"), 0o644); err != nil {
				return "", err
			}
			if err := os.WriteFile(prefix+".discarded.fastq", nil, 0o644); err != nil {
				return "", err
			}

			return "Assembled reads: 1", nil
		},
	}
	env := newEnv(t, stub)
	writeGzip(t, env.InputDir, "Mock_trimmed_R1.fastq.gz", "@r\nAC\n+\nII\n")
	writeGzip(t, env.InputDir, "Mock_trimmed_R2.fastq.gz", "@r\nGT\n+\nII\n")

	body := stages.MergePairs(stages.MergeParams{
		Pear:              "pear",
		MinOverlap:        10,
		MaxAssemblyLength: 270,
		MinAssemblyLength: 220,
		Cores:             4,
	})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock_trimmed_R1.fastq"), argValue(args, "-f"))
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock_trimmed_R2.fastq"), argValue(args, "-r"))
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock_trimmed_merged"), argValue(args, "-o"))
	assert.Equal(t, "10", argValue(args, "--min-overlap"))
	assert.Equal(t, "270", argValue(args, "--max-assembly-length"))
	assert.Equal(t, "220", argValue(args, "--min-assembly-length"))

	// assembly products recompressed, scratch inputs gone
	assert.Equal(t, "@m\nACGT\n+\nIIII\n",
		readGzip(t, filepath.Join(env.OutputDir, "Mock_trimmed_merged.assembled.fastq.gz")))
	_, err := os.Stat(filepath.Join(env.OutputDir, "Mock_trimmed_R1.fastq"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(env.OutputDir, "Mock_trimmed_merged.assembled.fastq"))
	assert.True(t, os.IsNotExist(err))
}

func TestQualityFilter(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			return "", os.WriteFile(argValue(cmd.Args, "-fastqout"), []byte("@f\nAC\n+\nII\n"), 0o644)
		},
	}
	env := newEnv(t, stub)
	writeGzip(t, env.InputDir, "Mock_trimmed_merged.assembled.fastq.gz", "@r\nAC\n+\nII\n")

	body := stages.QualityFilter(stages.FilterParams{
		Vsearch:  "vsearch",
		MaxEE:    1,
		TruncLen: 245,
		Cores:    4,
	})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, filepath.Join(env.InputDir, "Mock_trimmed_merged.assembled.fastq.gz"), argValue(args, "-fastq_filter"))
	assert.Equal(t, "1", argValue(args, "-fastq_maxee"))
	assert.Equal(t, "245", argValue(args, "-fastq_trunclen"))

	assert.Equal(t, "@f\nAC\n+\nII\n",
		readGzip(t, filepath.Join(env.OutputDir, "Mock_trimmed_merged.assembled.ee1trunc245.fastq.gz")))
}

func TestCombineRuns(t *testing.T) {
	t.Parallel()

	env := newEnv(t, &execx.StubRunner{})
	writeGzip(t, env.InputDir, "Mock_Run3_V4.assembled.ee1trunc245.fastq.gz", "@a\nAA\n+\nII\n")
	writeGzip(t, env.InputDir, "Mock_Run4_V4.assembled.ee1trunc245.fastq.gz", "@b\nCC\n+\nII\n")

	body := stages.CombineRuns()
	require.NoError(t, body(context.Background(), env))

	combined := filepath.Join(env.OutputDir, "Mock_Run3_Run4_V4.assembled.ee1trunc245.fastq.gz")
	assert.Equal(t, "@a\nAA\n+\nII\n@b\nCC\n+\nII\n", readGzip(t, combined))
}

func TestCombineRunsNoInput(t *testing.T) {
	t.Parallel()

	env := newEnv(t, &execx.StubRunner{})
	err := stages.CombineRuns()(context.Background(), env)
	require.Error(t, err)

	kind, ok := pipeline.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.KindDiscovery, kind)
}

func TestDereplicate(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			if err := os.WriteFile(argValue(cmd.Args, "-output"), []byte(">u1;size=5\nACGT\n"), 0o644); err != nil {
				return "", err
			}

			return "", os.WriteFile(argValue(cmd.Args, "-uc"), []byte("S\t0\n"), 0o644)
		},
	}
	env := newEnv(t, stub)
	writeGzip(t, env.InputDir, "Mock_Run3_Run4_V4.assembled.ee1trunc245.fastq.gz", "@r\nAC\n+\nII\n")

	body := stages.Dereplicate(stages.DerepParams{Vsearch: "vsearch", MinUniqueSize: 2, Cores: 4})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, "2", argValue(args, "-minuniquesize"))
	assert.Contains(t, args, "-sizeout")

	assert.Equal(t, ">u1;size=5\nACGT\n",
		readGzip(t, filepath.Join(env.OutputDir, "Mock_Run3_Run4_V4.assembled.ee1trunc245.derepmin2.fasta.gz")))
	_, err := os.Stat(filepath.Join(env.OutputDir, "Mock_Run3_Run4_V4.assembled.ee1trunc245.derepmin2.txt"))
	assert.NoError(t, err)
}

func TestClusterOTUs(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			if err := os.WriteFile(argValue(cmd.Args, "-otus"), []byte(">OTU_1\nACGT\n"), 0o644); err != nil {
				return "", err
			}

			return "", os.WriteFile(argValue(cmd.Args, "-uparseout"), []byte("u1\totu\n"), 0o644)
		},
	}
	env := newEnv(t, stub)
	writeGzip(t, env.InputDir, "Mock.derepmin2.fasta.gz", ">u1;size=5\nACGT\n")

	body := stages.ClusterOTUs(stages.ClusterParams{Usearch: "usearch"})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, "usearch", calls[0].Path)
	assert.Equal(t, filepath.Join(env.OutputDir, "Mock.derepmin2.fasta"), argValue(args, "-cluster_otus"))
	assert.Equal(t, "OTU_", argValue(args, "-relabel"))

	// the decompressed scratch copy is gone, the OTU set remains
	_, err := os.Stat(filepath.Join(env.OutputDir, "Mock.derepmin2.fasta"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(env.OutputDir, "Mock.derepmin2.rad3.fasta"))
	assert.NoError(t, err)
}

func TestChimeraCheck(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			if err := os.WriteFile(argValue(cmd.Args, "-uchimeout"), []byte("report\n"), 0o644); err != nil {
				return "", err
			}

			return "", os.WriteFile(argValue(cmd.Args, "-notmatched"), []byte(">OTU_1\nACGT\n"), 0o644)
		},
	}
	env := newEnv(t, stub)
	writePlain(t, env.InputDir, "Mock.derepmin2.rad3.fasta", ">OTU_1\nACGT\n")

	body := stages.ChimeraCheck(stages.ChimeraParams{
		Vsearch: "vsearch",
		RefDB:   "/refdb/pr2.fasta",
		Cores:   4,
	})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, "/refdb/pr2.fasta", argValue(args, "-db"))
	assert.Equal(t, "balanced", argValue(args, "-mode"))
	assert.Equal(t, "plus", argValue(args, "-strand"))

	_, err := os.Stat(filepath.Join(env.OutputDir, "Mock.derepmin2.rad3.uchime.fasta"))
	assert.NoError(t, err)
}

func TestOTUTable(t *testing.T) {
	t.Parallel()

	stub := &execx.StubRunner{
		Script: func(cmd execx.Command) (string, error) {
			if out := argValue(cmd.Args, "--fastaout"); out != "" {
				return "", os.WriteFile(out, []byte(">r1\nACGT\n"), 0o644)
			}
			if err := os.WriteFile(argValue(cmd.Args, "--otutabout"), []byte("#OTU ID\tMock\n"), 0o644); err != nil {
				return "", err
			}

			return "", os.WriteFile(argValue(cmd.Args, "--biomout"), []byte("{}\n"), 0o644)
		},
	}
	env := newEnv(t, stub)
	writePlain(t, env.InputDir, "Mock.derepmin2.rad3.uchime.fasta", ">OTU_1\nACGT\n")
	mergedDir := t.TempDir()
	writeGzip(t, mergedDir, "Mock_trimmed_merged.assembled.fastq.gz", "@r\nAC\n+\nII\n")

	body := stages.OTUTable(stages.OTUTableParams{Vsearch: "vsearch", MergedReadsDir: mergedDir})
	require.NoError(t, body(context.Background(), env))

	calls := stub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, filepath.Join(mergedDir, "Mock_trimmed_merged.assembled.fastq.gz"),
		argValue(calls[0].Args, "--fastq_filter"))
	assert.Equal(t, filepath.Join(env.InputDir, "Mock.derepmin2.rad3.uchime.fasta"),
		argValue(calls[1].Args, "--db"))
	assert.Equal(t, "0.97", argValue(calls[1].Args, "--id"))

	_, err := os.Stat(filepath.Join(env.OutputDir, "Mock_trimmed_merged.uchime.otutab.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(env.OutputDir, "Mock_trimmed_merged.uchime.otutab.json"))
	assert.NoError(t, err)
}
