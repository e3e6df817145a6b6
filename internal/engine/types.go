package engine

import "github.com/bianoble/mcstarter/internal/lock"

// FileAction represents an action taken on a single file during a build.
type FileAction struct {
	Path   string // relative to the target directory, slash-separated
	Action string // "staged", "unchanged", "removed"
}

// ArtifactError represents an error associated with a specific artifact.
type ArtifactError struct {
	Artifact string
	Err      error
}

func (e ArtifactError) Error() string {
	return e.Artifact + ": " + e.Err.Error()
}

func (e ArtifactError) Unwrap() error {
	return e.Err
}

// DriftEntry represents an artifact file whose state differs from the
// expected one.
type DriftEntry struct {
	Path     string
	Expected string
	Actual   string
}

// ArtifactDelta represents a change detected in an upstream artifact.
type ArtifactDelta struct {
	Artifact string
	Before   string
	After    string
}

// BuildResult holds the outcome of a build.
type BuildResult struct {
	Staged    []FileAction
	Unchanged []FileAction
	Removed   []FileAction
}

// LockResult holds the outcome of a lock operation.
type LockResult struct {
	Lockfile  *lock.Lockfile
	Changed   []ArtifactDelta
	Unchanged []string
}

// DownloadResult holds the outcome of a download operation.
type DownloadResult struct {
	Hits    []string
	Fetched []string
	Bytes   int64
}

// CheckResult holds the outcome of a check operation.
type CheckResult struct {
	Clean      bool
	Missing    []string
	Unexpected []string
	Drifted    []DriftEntry
}

// VerifyResult holds the outcome of a verify operation.
type VerifyResult struct {
	UpToDate []string
	Changed  []ArtifactDelta
	Errors   []ArtifactError
}

func shortDigest(d string) string {
	if d == "" {
		return "(not locked)"
	}
	if len(d) > 12 {
		d = d[:12]
	}
	return "sha256:" + d
}
