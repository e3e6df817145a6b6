package assemble

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jhunt/go-log"
)

// ProjectOptions describes the roots of a project build.
type ProjectOptions struct {
	ProjectRoot string
	// Includes are absolute include directories in configuration order.
	Includes  []string
	TargetDir string
	CacheDir  string
	Ignore    []string
}

// ScanProject scans every include in order and then the project root. The
// target and cache directories are skipped everywhere; each root also skips
// the include roots scanned before it, and the project root skips them all.
func ScanProject(opts ProjectOptions) ([]*RootScan, error) {
	roots := append(append([]string{}, opts.Includes...), opts.ProjectRoot)

	var scans []*RootScan
	var scanned []string
	for _, root := range roots {
		excluded := append([]string{opts.TargetDir, opts.CacheDir}, scanned...)

		var skip []string
		for _, dir := range excluded {
			if rel, ok := within(root, dir); ok {
				skip = append(skip, rel)
			}
		}

		log.Debugf("scanning %s (skipping %v)", root, skip)
		scan, err := Scan(osfs.New(root), root, ScanOptions{Skip: skip, Ignore: opts.Ignore})
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
		scanned = append(scanned, root)
	}
	return scans, nil
}

// within returns dir relative to root, slash-separated, when dir lies
// strictly inside root.
func within(root, dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
