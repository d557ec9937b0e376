package stages

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %q", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %q", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return errors.Wrapf(err, "copying %q to %q", src, dst)
	}

	return errors.Wrapf(out.Close(), "closing %q", dst)
}

// compressFile gzip-compresses src into dst.
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %q", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %q", dst)
	}

	zwr := gzip.NewWriter(out)
	if _, err := io.Copy(zwr, in); err != nil {
		zwr.Close()
		out.Close()

		return errors.Wrapf(err, "compressing %q to %q", src, dst)
	}
	if err := zwr.Close(); err != nil {
		out.Close()

		return errors.Wrapf(err, "finalising %q", dst)
	}

	return errors.Wrapf(out.Close(), "closing %q", dst)
}

// gzipGlob compresses every file matching pattern in place, appending the
// .gz suffix and removing the original.
func gzipGlob(pattern string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return errors.Wrapf(err, "globbing %q", pattern)
	}

	for _, path := range matches {
		if err := compressFile(path, path+".gz"); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "removing %q", path)
		}
	}

	return nil
}

// gunzipInto decompresses the given .gz files into dir, returning the
// uncompressed paths with the .gz suffix stripped.
func gunzipInto(dir string, paths ...string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		dst := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), ".gz"))
		if err := gunzipFile(path, dst); err != nil {
			return nil, err
		}
		out = append(out, dst)
	}

	return out, nil
}

func gunzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %q", src)
	}
	defer in.Close()

	zrd, err := gzip.NewReader(in)
	if err != nil {
		return errors.Wrapf(err, "reading gzip header of %q", src)
	}
	defer zrd.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %q", dst)
	}

	if _, err := io.Copy(out, zrd); err != nil {
		out.Close()

		return errors.Wrapf(err, "decompressing %q to %q", src, dst)
	}

	return errors.Wrapf(out.Close(), "closing %q", dst)
}

// concatGzip decompresses each input in order and writes the concatenation
// into a single gzip stream at dst.
func concatGzip(dst string, inputs []string) error {
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %q", dst)
	}
	zwr := gzip.NewWriter(out)

	for _, input := range inputs {
		if err := appendGzipped(zwr, input); err != nil {
			zwr.Close()
			out.Close()

			return err
		}
	}

	if err := zwr.Close(); err != nil {
		out.Close()

		return errors.Wrapf(err, "finalising %q", dst)
	}

	return errors.Wrapf(out.Close(), "closing %q", dst)
}

func appendGzipped(dst io.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %q", src)
	}
	defer in.Close()

	zrd, err := gzip.NewReader(in)
	if err != nil {
		return errors.Wrapf(err, "reading gzip header of %q", src)
	}
	defer zrd.Close()

	_, err = io.Copy(dst, zrd)

	return errors.Wrapf(err, "appending %q", src)
}

// replaceSuffix swaps the tail of a basename, e.g. ".fastq.gz" -> ".fasta".
func replaceSuffix(base, oldSuffix, newSuffix string) string {
	return strings.TrimSuffix(base, oldSuffix) + newSuffix
}

// sortedGlob globs pattern and returns the matches sorted lexicographically
// for deterministic processing order.
func sortedGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %q", pattern)
	}
	// filepath.Glob already sorts, but that is an implementation detail.
	sort.Strings(matches)

	return matches, nil
}
