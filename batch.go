package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"braces.dev/errtrace"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// snapshotAll renders every file matching the input patterns
// into the output directory.
//
// A failure to render one file does not stop the others.
// All failures are reported together at the end.
func (cmd *mainCmd) snapshotAll(ctx context.Context, opts *params) error {
	files, err := expandPatterns(opts.Inputs)
	if err != nil {
		return errtrace.Wrap(err)
	}
	cmd.debugf("matched %d files", len(files))

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	snap := cmd.newSnapshotter(opts)
	dests := outputNames(files)
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(opts.Jobs)
	for i, file := range files {
		g.Go(func() error {
			req, err := readFile(opts, file)
			if err != nil {
				errs[i] = err
				return nil
			}
			req.Destination = filepath.Join(opts.OutDir, dests[i])

			if _, err := snap.Snapshot(ctx, req); err != nil {
				errs[i] = fmt.Errorf("%v: %w", file, err)
			}
			return nil
		})
	}
	_ = g.Wait() // errors are in errs

	for i, file := range files {
		if errs[i] == nil {
			fmt.Fprintf(cmd.Stdout, "Snapshot saved to: %v\n", filepath.Join(opts.OutDir, dests[i]))
		} else {
			cmd.debugf("%v failed", file)
		}
	}

	return errtrace.Wrap(errors.Join(errs...))
}

// expandPatterns returns the files matching the given patterns
// in sorted order, without duplicates.
// Every pattern must match at least one file.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("bad pattern %q: %w", pattern, err))
		}
		if len(matches) == 0 {
			return nil, errtrace.Wrap(fmt.Errorf("no files match %q", pattern))
		}

		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// outputNames picks a file name for the image of each file.
//
// Images are named after the base name of their file,
// so "foo/bar.go" becomes "bar.go.png".
// Files with the same base name are numbered in order:
// "bar.go.png", "bar.go-2.png", and so on.
func outputNames(files []string) []string {
	names := make([]string, len(files))
	taken := make(map[string]struct{}, len(files))
	for i, file := range files {
		base := filepath.Base(file)
		name := base + ".png"
		for n := 2; ; n++ {
			if _, ok := taken[name]; !ok {
				break
			}
			name = base + "-" + strconv.Itoa(n) + ".png"
		}
		taken[name] = struct{}{}
		names[i] = name
	}
	return names
}
