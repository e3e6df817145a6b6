package assemble

import (
	"fmt"
	"sort"

	"github.com/bianoble/mcstarter/internal/document"
)

// StagedFile is one file the build will write into the target.
type StagedFile struct {
	RelPath string
	Kind    Kind
	// Doc is the merged document for KindMergeable. Nil with Placeholder set
	// means every contributing file was empty.
	Doc         document.Document
	Placeholder bool
	// Source is the file copied for KindText and KindOpaque.
	Source *ScannedFile
	// Roots lists the roots that contributed, in scan order.
	Roots []string
}

// Plan folds root scans in order into the staged file set, sorted by path.
// It does no I/O.
func Plan(scans []*RootScan) ([]StagedFile, error) {
	staged := make(map[string]*StagedFile)

	for _, scan := range scans {
		for i := range scan.Files {
			f := &scan.Files[i]
			cur, exists := staged[f.RelPath]

			if f.Kind != KindMergeable {
				staged[f.RelPath] = &StagedFile{
					RelPath: f.RelPath,
					Kind:    f.Kind,
					Source:  f,
					Roots:   []string{scan.Root},
				}
				continue
			}

			switch {
			case !exists:
				staged[f.RelPath] = &StagedFile{
					RelPath:     f.RelPath,
					Kind:        KindMergeable,
					Doc:         f.Doc,
					Placeholder: f.Empty,
					Roots:       []string{scan.Root},
				}
			case f.Empty:
				cur.Roots = append(cur.Roots, scan.Root)
			case cur.Placeholder:
				cur.Doc = f.Doc
				cur.Placeholder = false
				cur.Roots = append(cur.Roots, scan.Root)
			default:
				merged, err := document.Merge(cur.Doc, f.Doc)
				if err != nil {
					return nil, fmt.Errorf("merging %s from %s: %w", f.RelPath, scan.Root, err)
				}
				cur.Doc = merged
				cur.Roots = append(cur.Roots, scan.Root)
			}
		}
	}

	out := make([]StagedFile, 0, len(staged))
	for _, s := range staged {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}
