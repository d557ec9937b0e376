// Package namemerge combines the filenames of several sequencing runs into
// one canonical name.
//
// Basenames are treated as delimiter-separated token sequences where each
// position carries the same semantic role across inputs (cohort, run
// identifier, assay). Combining collects the distinct values per position,
// sorts them and joins everything back together:
//
//	Mock_Run3_V4.fastq.gz + Mock_Run4_V4.fastq.gz -> Mock_Run3_Run4_V4.fastq.gz
package namemerge

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Delimiter separates filename tokens.
const Delimiter = "_"

// ErrNoInput is returned when Combine is called with no paths.
var ErrNoInput = errors.New("namemerge: no input paths")

// Combine merges the basenames of paths into a single combined basename.
//
// All basenames must decompose into the same number of tokens; a mismatch is
// rejected rather than silently misgrouped. The result does not depend on
// the order of paths, because token values are deduplicated and sorted per
// position.
func Combine(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoInput
	}

	first := strings.Split(filepath.Base(paths[0]), Delimiter)
	positions := make([]map[string]struct{}, len(first))
	for i := range positions {
		positions[i] = make(map[string]struct{})
	}

	for _, path := range paths {
		base := filepath.Base(path)
		tokens := strings.Split(base, Delimiter)
		if len(tokens) != len(first) {
			return "", errors.Errorf(
				"namemerge: basename %q has %d tokens, want %d",
				base, len(tokens), len(first))
		}
		for i, tok := range tokens {
			positions[i][tok] = struct{}{}
		}
	}

	merged := make([]string, 0, len(positions))
	for _, values := range positions {
		unique := make([]string, 0, len(values))
		for v := range values {
			unique = append(unique, v)
		}
		sort.Strings(unique)
		merged = append(merged, strings.Join(unique, Delimiter))
	}

	return strings.Join(merged, Delimiter), nil
}
