package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/document"
	"github.com/bianoble/mcstarter/internal/sandbox"
	"github.com/bianoble/mcstarter/internal/transform"
	"github.com/go-git/go-billy/v5/util"
)

const defaultPerm os.FileMode = 0644

// Result lists the relative paths written and left unchanged.
type Result struct {
	Written   []string
	Unchanged []string
}

// Write materializes staged files under targetDir. Mergeable and text output
// is substituted with sub, and mergeable output must still parse afterwards;
// opaque files are copied verbatim. A destination
// that already holds identical bytes is not rewritten. onWrite, if set, is
// called for every file actually written.
func Write(targetDir string, files []StagedFile, sub *transform.Substitutor, onWrite func(StagedFile)) (*Result, error) {
	if sub == nil {
		sub = transform.NewSubstitutor(nil)
	}
	res := &Result{}
	for _, f := range files {
		content, perm, err := render(f, sub)
		if err != nil {
			return res, err
		}

		changed, err := sandbox.WriteIfChanged(targetDir, filepath.FromSlash(f.RelPath), content, perm)
		if err != nil {
			return res, fmt.Errorf("writing %s: %w", f.RelPath, err)
		}
		if changed {
			res.Written = append(res.Written, f.RelPath)
			if onWrite != nil {
				onWrite(f)
			}
		} else {
			res.Unchanged = append(res.Unchanged, f.RelPath)
		}
	}
	return res, nil
}

func render(f StagedFile, sub *transform.Substitutor) ([]byte, os.FileMode, error) {
	switch f.Kind {
	case KindMergeable:
		data, err := document.Encode(f.RelPath, f.Doc)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding %s: %w", f.RelPath, err)
		}
		data, err = sub.Apply(data)
		if err != nil {
			return nil, 0, fmt.Errorf("substituting %s: %w", f.RelPath, err)
		}
		// Substituted values can carry syntax of their own.
		if _, _, err := document.Decode(f.RelPath, data); err != nil {
			return nil, 0, fmt.Errorf("after substitution: %w", err)
		}
		return data, defaultPerm, nil

	case KindText:
		data, err := util.ReadFile(f.Source.FS, f.Source.RelPath)
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", f.RelPath, err)
		}
		data, err = sub.Apply(data)
		if err != nil {
			return nil, 0, fmt.Errorf("substituting %s: %w", f.RelPath, err)
		}
		return data, permOf(f.Source), nil

	default:
		data, err := util.ReadFile(f.Source.FS, f.Source.RelPath)
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", f.RelPath, err)
		}
		return data, permOf(f.Source), nil
	}
}

func permOf(f *ScannedFile) os.FileMode {
	if f.Mode == 0 {
		return defaultPerm
	}
	return f.Mode
}
