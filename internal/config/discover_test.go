package config

import (
	"path/filepath"
	"testing"
)

func TestDiscoverLayersOrder(t *testing.T) {
	root := t.TempDir()
	layers := DiscoverLayers(root, filepath.Join(root, FileName), []string{"./modpack", "shared"})

	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if layers[0].Kind != LayerInclude || layers[0].Dir != filepath.Join(root, "modpack") {
		t.Errorf("layers[0] = %+v, want include %s", layers[0], filepath.Join(root, "modpack"))
	}
	if layers[1].Kind != LayerInclude || layers[1].Dir != filepath.Join(root, "shared") {
		t.Errorf("layers[1] = %+v, want include shared", layers[1])
	}
	if layers[2].Kind != LayerProject {
		t.Errorf("layers[2].Kind = %q, want %q", layers[2].Kind, LayerProject)
	}
	if layers[0].Path != filepath.Join(root, "modpack", FileName) {
		t.Errorf("layers[0].Path = %q", layers[0].Path)
	}
}

func TestIncludeDirsDeduplication(t *testing.T) {
	root := t.TempDir()
	dirs := IncludeDirs(root, []string{"a", "./a", "a/", filepath.Join(root, "a"), ".", "", "b"})

	want := []string{filepath.Join(root, "a"), filepath.Join(root, "b")}
	if len(dirs) != len(want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

func TestIncludeDirsAbsoluteOutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	dirs := IncludeDirs(root, []string{other, "../sibling"})

	if len(dirs) != 2 {
		t.Fatalf("expected 2 dirs, got %v", dirs)
	}
	if dirs[0] != other {
		t.Errorf("dirs[0] = %q, want %q", dirs[0], other)
	}
	if dirs[1] != filepath.Join(filepath.Dir(root), "sibling") {
		t.Errorf("dirs[1] = %q", dirs[1])
	}
}

func TestDiscoverLayersNoIncludes(t *testing.T) {
	layers := DiscoverLayers(".", FileName, nil)
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	if layers[0].Kind != LayerProject || layers[0].Path != FileName {
		t.Errorf("unexpected layer %+v", layers[0])
	}
}
