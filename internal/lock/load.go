package lock

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates an mcstarter.lock file.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	lf := New()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, lf); err != nil {
			return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
		}
	}

	if errs := Validate(lf); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return lf, nil
}

// Save writes a lockfile atomically using a temp file and rename. The whole
// table is replaced.
func Save(path string, lf *Lockfile) error {
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp lockfile %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp lockfile to %s: %w", path, err)
	}

	return nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lockfile validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks every entry for a well-formed digest.
// Returns a list of validation error messages (empty if valid).
func Validate(lf *Lockfile) []string {
	var errs []string
	for _, name := range lf.Names() {
		if name == "" {
			errs = append(errs, "entry with empty name")
			continue
		}
		if !IsDigest(lf.Entries[name]) {
			errs = append(errs, fmt.Sprintf("'%s': digest %q is not 64 lower-case hex characters", name, lf.Entries[name]))
		}
	}
	return errs
}

// IsDigest reports whether s is a lower-case hex SHA-256 digest.
func IsDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
