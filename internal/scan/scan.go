// Package scan discovers capture files under a source directory. The
// conversion engine treats its output as an opaque, already-validated list;
// grouping policy (one recording per directory) lives here, not in the
// planner.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Group is a set of capture files that belong to one recording. Key is the
// source-relative directory the segments were found in ("." at the root).
// Files are in discovery order (lexicographic within the walk).
type Group struct {
	Key   string
	Files []string
}

// Files walks root and returns every file with the given extension
// (case-insensitive), sorted lexicographically for deterministic job order.
func Files(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Groups discovers capture files like [Files] and buckets them by their
// containing directory relative to root. Groups are returned in key order;
// files within a group keep discovery order.
func Groups(root, ext string) ([]Group, error) {
	files, err := Files(root, ext)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]string)
	for _, f := range files {
		rel, err := filepath.Rel(root, filepath.Dir(f))
		if err != nil {
			rel = filepath.Dir(f)
		}
		byKey[rel] = append(byKey[rel], f)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Files: byKey[k]})
	}
	return groups, nil
}
