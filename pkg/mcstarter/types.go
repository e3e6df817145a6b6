package mcstarter

import "github.com/bianoble/mcstarter/internal/engine"

// Type aliases re-export engine result types as the public API.
// Users import "github.com/bianoble/mcstarter/pkg/mcstarter" and use
// mcstarter.BuildResult, mcstarter.CheckResult, etc.

type FileAction = engine.FileAction
type ArtifactError = engine.ArtifactError
type DriftEntry = engine.DriftEntry
type ArtifactDelta = engine.ArtifactDelta
type BuildResult = engine.BuildResult
type LockResult = engine.LockResult
type DownloadResult = engine.DownloadResult
type CheckResult = engine.CheckResult
type VerifyResult = engine.VerifyResult
type StatusResult = engine.StatusResult
type ArtifactStatus = engine.ArtifactStatus
type Launch = engine.Launch
