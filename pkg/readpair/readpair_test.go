package readpair_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterpipe/pkg/readpair"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("@read\nACGT\n+\nIIII\n"), 0o644))

	return path
}

func TestParseName(t *testing.T) {
	t.Parallel()

	name, err := readpair.ParseName("Mock_Run3_V4_R1.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "Mock_Run3_V4", name.Sample)
	assert.Equal(t, byte('R'), name.Marker)
	assert.Equal(t, readpair.Forward, name.Role)
	assert.Equal(t, ".fastq.gz", name.Rest)
	assert.Equal(t, "Mock_Run3_V4_R1.fastq.gz", name.String())
}

func TestParseNameNumericMarker(t *testing.T) {
	t.Parallel()

	name, err := readpair.ParseName("sample_02.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), name.Marker)
	assert.Equal(t, readpair.Reverse, name.Role)
}

func TestParseNameNonConforming(t *testing.T) {
	t.Parallel()

	_, err := readpair.ParseName("reference.fasta")
	require.ErrorIs(t, err, readpair.ErrNonConformingName)
}

func TestMatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		forward string
		reverse string
	}{
		{"sample_R1.fastq.gz", "sample_R2.fastq.gz"},
		{"sample_01.fastq.gz", "sample_02.fastq.gz"},
		{"/data/run/Mock_Run3_V4_R1.fastq.gz", "/data/run/Mock_Run3_V4_R2.fastq.gz"},
	}
	for _, tc := range tests {
		got, err := readpair.MatePath(tc.forward)
		require.NoError(t, err)
		assert.Equal(t, tc.reverse, got)
	}
}

func TestWithTag(t *testing.T) {
	t.Parallel()

	got, err := readpair.WithTag("Mock_R1.fastq.gz", "trimmed")
	require.NoError(t, err)
	assert.Equal(t, "Mock_trimmed_R1.fastq.gz", got)
}

func TestReplaceRole(t *testing.T) {
	t.Parallel()

	got, err := readpair.ReplaceRole("Mock_trimmed_R1.fastq", "merged")
	require.NoError(t, err)
	assert.Equal(t, "Mock_trimmed_merged.fastq", got)
}

func TestFindForwardSortedPairs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "B_Run4_R1.fastq.gz")
	touch(t, dir, "B_Run4_R2.fastq.gz")
	touch(t, dir, "A_Run3_R1.fastq.gz")
	touch(t, dir, "A_Run3_R2.fastq.gz")

	pairs, err := readpair.FindForward(dir)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, filepath.Join(dir, "A_Run3_R1.fastq.gz"), pairs[0].Forward)
	assert.Equal(t, filepath.Join(dir, "A_Run3_R2.fastq.gz"), pairs[0].Reverse)
	assert.Equal(t, filepath.Join(dir, "B_Run4_R1.fastq.gz"), pairs[1].Forward)
}

func TestFindForwardNoMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "notes.txt")

	_, err := readpair.FindForward(dir)
	require.ErrorIs(t, err, readpair.ErrNoForwardReads)
}

func TestFindForwardMissingMate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "A_Run3_R1.fastq.gz")

	_, err := readpair.FindForward(dir)
	require.ErrorIs(t, err, readpair.ErrMissingMate)
	assert.Contains(t, err.Error(), "A_Run3_R2.fastq.gz")
}
