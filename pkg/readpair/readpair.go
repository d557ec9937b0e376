// Package readpair discovers paired-end read files and derives mate paths.
//
// Paired-end sequencing produces two files per fragment, distinguished by a
// position-coded marker token in the filename: `_R1`/`_R2` or `_01`/`_02`.
// Instead of ad hoc pattern substitution, the package parses filenames into
// an explicit grammar with a typed read role and fails loudly on names that
// do not conform.
package readpair

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

// Role identifies which mate of a pair a file holds.
type Role int

const (
	Forward Role = 1
	Reverse Role = 2
)

var (
	// ErrNoForwardReads is returned when a directory holds no forward read files.
	ErrNoForwardReads = errors.New("no forward read files")
	// ErrNonConformingName is returned for filenames without a read-role marker.
	ErrNonConformingName = errors.New("filename does not follow the paired-read convention")
	// ErrMissingMate is returned when the derived reverse mate does not exist.
	ErrMissingMate = errors.New("reverse mate file does not exist")
)

// forwardGlob matches forward read files: a sample identifier followed by a
// marker token (`_R1` or `_01`) and a fastq extension, possibly compressed.
const forwardGlob = "*_[R0]1*.fastq*"

var rolePattern = regexp.MustCompile(`_([R0])([12])`)

// Name is a paired-read filename decomposed by the naming grammar.
type Name struct {
	// Sample is everything before the role marker.
	Sample string
	// Marker is the marker alphabet letter, 'R' or '0'.
	Marker byte
	// Role is the read role encoded by the digit after the marker.
	Role Role
	// Rest is everything after the role digit, extensions included.
	Rest string
}

// ParseName decomposes a basename according to the paired-read grammar.
// The first marker occurrence wins.
func ParseName(base string) (Name, error) {
	loc := rolePattern.FindStringSubmatchIndex(base)
	if loc == nil {
		return Name{}, errors.Wrapf(ErrNonConformingName, "parsing %q", base)
	}

	name := Name{
		Sample: base[:loc[0]],
		Marker: base[loc[2]],
		Rest:   base[loc[1]:],
	}
	if base[loc[4]] == '1' {
		name.Role = Forward
	} else {
		name.Role = Reverse
	}

	return name, nil
}

// String reassembles the filename.
func (n Name) String() string {
	return n.Sample + "_" + string(n.Marker) + string('0'+byte(n.Role)) + n.Rest
}

// Mate returns the same name with the read role flipped.
func (n Name) Mate() Name {
	switch n.Role {
	case Forward:
		n.Role = Reverse
	case Reverse:
		n.Role = Forward
	}

	return n
}

// WithTag inserts a tag token before the role marker:
// WithTag("Mock_R1.fastq.gz", "trimmed") -> "Mock_trimmed_R1.fastq.gz".
func WithTag(base, tag string) (string, error) {
	name, err := ParseName(base)
	if err != nil {
		return "", err
	}
	name.Sample = name.Sample + "_" + tag

	return name.String(), nil
}

// ReplaceRole replaces the whole role token with repl:
// ReplaceRole("Mock_R1.fastq.gz", "merged") -> "Mock_merged.fastq.gz".
func ReplaceRole(base, repl string) (string, error) {
	name, err := ParseName(base)
	if err != nil {
		return "", err
	}

	return name.Sample + "_" + repl + name.Rest, nil
}

// MatePath derives the reverse-read path for a forward-read path by flipping
// the role digit at the same position, leaving directory and everything else
// unchanged.
func MatePath(forward string) (string, error) {
	name, err := ParseName(filepath.Base(forward))
	if err != nil {
		return "", err
	}

	return filepath.Join(filepath.Dir(forward), name.Mate().String()), nil
}

// Pair is a forward-read file and its reverse mate.
type Pair struct {
	Forward string
	Reverse string
}

// FindForward discovers the forward read files in dir and derives each one's
// mate, sorted lexicographically by forward path for deterministic ordering.
//
// It fails with ErrNoForwardReads when nothing matches and with
// ErrMissingMate when a derived mate path does not exist on disk, so that a
// truncated upload is reported here rather than as an opaque tool failure.
func FindForward(dir string) ([]Pair, error) {
	pattern := filepath.Join(dir, forwardGlob)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %q", pattern)
	}
	if len(matches) == 0 {
		return nil, errors.Wrapf(ErrNoForwardReads, "glob %q", pattern)
	}
	sort.Strings(matches)

	pairs := make([]Pair, 0, len(matches))
	for _, forward := range matches {
		reverse, err := MatePath(forward)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(reverse); err != nil {
			return nil, errors.Wrapf(ErrMissingMate, "forward %q expects %q", forward, reverse)
		}
		pairs = append(pairs, Pair{Forward: forward, Reverse: reverse})
	}

	return pairs, nil
}
