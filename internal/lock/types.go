package lock

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the lock file name next to mcstarter.yml.
const FileName = "mcstarter.lock"

// Lockfile maps logical artifact names ("core" or a plugin key) to the
// SHA-256 digest of their bytes. On disk it is a flat YAML mapping.
type Lockfile struct {
	Entries map[string]string
}

// New returns an empty Lockfile.
func New() *Lockfile {
	return &Lockfile{Entries: map[string]string{}}
}

// MissingEntryError is returned when an artifact has no lock entry.
type MissingEntryError struct {
	Name string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("no lock entry for '%s'; run 'mcstarter lock' to record it", e.Name)
}

// Get returns the locked digest for name.
func (lf *Lockfile) Get(name string) (string, error) {
	if lf != nil {
		if d, ok := lf.Entries[name]; ok {
			return d, nil
		}
	}
	return "", &MissingEntryError{Name: name}
}

// Set records digest for name.
func (lf *Lockfile) Set(name, digest string) {
	if lf.Entries == nil {
		lf.Entries = map[string]string{}
	}
	lf.Entries[name] = digest
}

// Names returns the entry names in sorted order.
func (lf *Lockfile) Names() []string {
	names := make([]string, 0, len(lf.Entries))
	for n := range lf.Entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (lf *Lockfile) Len() int {
	if lf == nil {
		return 0
	}
	return len(lf.Entries)
}

// MarshalYAML encodes the lockfile as a flat mapping.
func (lf Lockfile) MarshalYAML() (interface{}, error) {
	if lf.Entries == nil {
		return map[string]string{}, nil
	}
	return lf.Entries, nil
}

// UnmarshalYAML decodes a flat name-to-digest mapping.
func (lf *Lockfile) UnmarshalYAML(value *yaml.Node) error {
	entries := map[string]string{}
	if err := value.Decode(&entries); err != nil {
		return err
	}
	lf.Entries = entries
	return nil
}
