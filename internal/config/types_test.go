package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// exampleConfig mirrors the scaffold written by `mcstarter init`.
const exampleConfig = `
include:
  - ./modpack

sources:
  paper: https://api.example.com/paper/$VERSION/paper-$VERSION.jar
  hangar: https://hangar.example.com/$NAME/$VERSION/download

default_source: hangar

core:
  name: paper
  version: "1.20.4"
  source: paper

plugins:
  economy:
    version: "2.0"
  worldedit:
    version: "7.3.0"
    url: https://cdn.example.com/worldedit-7.3.0.jar

launch:
  pre: ["-Xmx2G"]
  post: ["--nogui"]
`

func TestUnmarshalExampleConfig(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(exampleConfig), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(cfg.Include) != 1 || cfg.Include[0] != "./modpack" {
		t.Errorf("include = %v", cfg.Include)
	}
	if cfg.DefaultSource != "hangar" {
		t.Errorf("default_source = %q", cfg.DefaultSource)
	}
	if cfg.Core.Name != "paper" || cfg.Core.Version != "1.20.4" || cfg.Core.Source != "paper" {
		t.Errorf("core = %+v", cfg.Core)
	}
	if len(cfg.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(cfg.Plugins))
	}
	if cfg.Plugins["worldedit"].URL == "" {
		t.Error("worldedit url should be set")
	}
	if len(cfg.Launch.Pre) != 1 || cfg.Launch.Post[0] != "--nogui" {
		t.Errorf("launch = %+v", cfg.Launch)
	}
	if errs := Validate(&cfg); len(errs) != 0 {
		t.Errorf("example config should validate, got %v", errs)
	}
}

func TestArtifactsOrder(t *testing.T) {
	cfg := Config{
		Core: Core{Name: "paper", Version: "1"},
		Plugins: map[string]Plugin{
			"zeta":  {Version: "1"},
			"alpha": {Version: "2"},
			"mid":   {Version: "3"},
		},
	}

	arts := cfg.Artifacts()
	want := []string{"core", "alpha", "mid", "zeta"}
	if len(arts) != len(want) {
		t.Fatalf("got %d artifacts, want %d", len(arts), len(want))
	}
	for i, w := range want {
		if arts[i].LockName != w {
			t.Errorf("artifacts[%d] = %q, want %q", i, arts[i].LockName, w)
		}
	}
	if !arts[0].IsCore || arts[0].Name != "paper" {
		t.Errorf("core artifact = %+v", arts[0])
	}
	if arts[1].IsCore || arts[1].Name != "alpha" || arts[1].Version != "2" {
		t.Errorf("plugin artifact = %+v", arts[1])
	}
}
