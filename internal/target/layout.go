// Package target names the artifacts staged into a build target directory
// and inventories what is currently there.
package target

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bianoble/mcstarter/internal/config"
)

const (
	// PluginsDir holds plugin jars, relative to the target root.
	PluginsDir = "plugins"

	corePrefix = "core-"
	jarExt     = ".jar"
)

// DefaultDir is the target directory used when none is given.
const DefaultDir = "target"

// CoreFileName returns core-<version or name>-<digest>.jar, or
// core-<digest>.jar when the core has neither.
func CoreFileName(core config.Core, digest string) string {
	label := core.Version
	if label == "" {
		label = core.Name
	}
	if label == "" {
		return corePrefix + digest + jarExt
	}
	return corePrefix + sanitize(label) + "-" + digest + jarExt
}

// PluginFileName returns <name>-<version>-<digest>.jar, or
// <name>-<digest>.jar without a version.
func PluginFileName(name, version, digest string) string {
	if version == "" {
		return sanitize(name) + "-" + digest + jarExt
	}
	return sanitize(name) + "-" + sanitize(version) + "-" + digest + jarExt
}

// PluginPath returns the target-relative path of a plugin jar.
func PluginPath(fileName string) string {
	return filepath.Join(PluginsDir, fileName)
}

// IsCoreFile reports whether name matches the core artifact pattern.
func IsCoreFile(name string) bool {
	return strings.HasPrefix(name, corePrefix) && strings.HasSuffix(name, jarExt)
}

// IsJar reports whether name is a jar file name.
func IsJar(name string) bool {
	return strings.HasSuffix(name, jarExt)
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(s)
}

// Inventory lists the artifact files currently in a target directory.
type Inventory struct {
	CoreFiles   []string // core-*.jar in the target root
	PluginFiles []string // *.jar in plugins/
}

// Inspect reads the artifact files of dir. A missing directory yields an
// empty inventory.
func Inspect(dir string) (*Inventory, error) {
	inv := &Inventory{}

	var err error
	inv.CoreFiles, err = listFiles(dir, IsCoreFile)
	if err != nil {
		return nil, err
	}
	inv.PluginFiles, err = listFiles(filepath.Join(dir, PluginsDir), IsJar)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func listFiles(dir string, match func(string) bool) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var out []string
	for _, d := range dirents {
		if d.Type().IsRegular() && match(d.Name()) {
			out = append(out, d.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
