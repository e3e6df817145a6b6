package assemble

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/bianoble/mcstarter/internal/document"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// MetadataDirs are never scanned, at any depth.
var MetadataDirs = []string{".git", ".hg", ".svn", ".mcstarter", ".idea", ".vscode"}

// ProjectFiles are skipped at the top level of every root.
var ProjectFiles = []string{"mcstarter.yml", "mcstarter.lock", ".env"}

// ScanOptions controls what a scan skips.
type ScanOptions struct {
	// Skip holds slash-separated directories relative to the scanned root,
	// such as the target, the cache and include roots scanned separately.
	Skip []string
	// Ignore holds glob patterns matched against the relative path and the
	// base name of every entry.
	Ignore []string
}

// ScannedFile is a file found in one root.
type ScannedFile struct {
	FS      billy.Filesystem
	RelPath string // slash-separated, relative to the root
	Kind    Kind
	Mode    os.FileMode
	// Doc and Empty are set for KindMergeable.
	Doc   document.Document
	Empty bool
}

// RootScan is everything one root contributes, sorted by RelPath.
type RootScan struct {
	Root  string
	Files []ScannedFile
}

// Scan walks fsys with an explicit work list. Mergeable documents are decoded
// during the scan so malformed text fails before anything is written.
func Scan(fsys billy.Filesystem, root string, opts ScanOptions) (*RootScan, error) {
	for _, p := range opts.Ignore {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern '%s': %w", p, err)
		}
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[path.Clean(s)] = true
	}

	scan := &RootScan{Root: root}
	pending := []string{""}
	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := fsys.ReadDir(fsPath(dir))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path.Join(root, dir), err)
		}

		for _, info := range entries {
			rel := path.Join(dir, info.Name())
			if skipped(rel, info.Name(), dir == "", skip, opts.Ignore) {
				continue
			}

			if info.Mode()&os.ModeSymlink != 0 {
				if info, err = fsys.Stat(rel); err != nil {
					return nil, fmt.Errorf("following %s: %w", path.Join(root, rel), err)
				}
			}

			switch {
			case info.IsDir():
				if !isMetadataDir(info.Name()) {
					pending = append(pending, rel)
				}
			case info.Mode().IsRegular():
				f, err := scanFile(fsys, root, rel, info.Mode())
				if err != nil {
					return nil, err
				}
				scan.Files = append(scan.Files, f)
			}
		}
	}

	sort.Slice(scan.Files, func(i, j int) bool { return scan.Files[i].RelPath < scan.Files[j].RelPath })
	return scan, nil
}

func scanFile(fsys billy.Filesystem, root, rel string, mode os.FileMode) (ScannedFile, error) {
	f := ScannedFile{FS: fsys, RelPath: rel, Kind: Classify(rel), Mode: mode.Perm()}
	if f.Kind != KindMergeable {
		return f, nil
	}
	data, err := util.ReadFile(fsys, rel)
	if err != nil {
		return f, fmt.Errorf("reading %s: %w", path.Join(root, rel), err)
	}
	f.Doc, f.Empty, err = document.Decode(path.Join(root, rel), data)
	if err != nil {
		return f, err
	}
	return f, nil
}

func skipped(rel, name string, top bool, skip map[string]bool, ignore []string) bool {
	if skip[rel] {
		return true
	}
	if top {
		for _, p := range ProjectFiles {
			if name == p {
				return true
			}
		}
	}
	for _, p := range ignore {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func isMetadataDir(name string) bool {
	for _, d := range MetadataDirs {
		if name == d {
			return true
		}
	}
	return false
}

func fsPath(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
