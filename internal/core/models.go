package core

import "errors"

// ErrBackendUnavailable marks a backend whose runtime could not be
// bootstrapped. A group installer seeing it fails the whole group once
// instead of failing every package in it.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Backend identifies a package-management technology.
type Backend string

const (
	BackendNative  Backend = "native"
	BackendAUR     Backend = "aur"
	BackendFlatpak Backend = "flatpak"
	BackendSnap    Backend = "snap"
)

// Mode selects which package tables a run installs from.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeMinimal Mode = "minimal"
)

// Status classifies the result of one logical package.
type Status string

const (
	StatusInstalled     Status = "installed"
	StatusSkipped       Status = "skipped"
	StatusFailed        Status = "failed"
	StatusNotApplicable Status = "not-applicable"
)

// Outcome is the per-package result of a group installation.
type Outcome struct {
	Identifier string  `json:"identifier"`
	Backend    Backend `json:"backend"`
	Status     Status  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
}

// Exit codes
const (
	ExitSuccess  = 0 // every step and package succeeded
	ExitWarnings = 1 // run completed but the summary holds failures
	ExitCritical = 2 // a pre-flight or critical step failed, run aborted
)
