package model

import "time"

// UpdateDecision is derived from a component and its cached release on every check.
// It is never persisted.
type UpdateDecision struct {
	Available     bool   `json:"available"`
	TargetVersion string `json:"target_version"`
	PackageURL    string `json:"package_url"`
	InfoURL       string `json:"info_url"`
}

// CheckOutcome is the tri-state result of an update check
type CheckOutcome string

const (
	// OutcomeIndeterminate means no decision could be made, e.g. the registry was unreachable.
	// It must not be read as "the component is current".
	OutcomeIndeterminate   CheckOutcome = "indeterminate"
	OutcomeStable          CheckOutcome = "stable"
	OutcomeUpdateAvailable CheckOutcome = "update_available"
)

// CheckResult is returned by a single update check
type CheckResult struct {
	Slug     string          `json:"slug"`
	Outcome  CheckOutcome    `json:"outcome"`
	Decision *UpdateDecision `json:"decision,omitempty"`
	Err      error           `json:"-"`
}

// ComponentStatus is the state of a tracked component
type ComponentStatus string

const (
	StatusStable          ComponentStatus = "stable"
	StatusUpdateAvailable ComponentStatus = "update_available"
)

// ComponentState is the last settled state of a tracked component
type ComponentState struct {
	Status    ComponentStatus `json:"status"`
	Decision  *UpdateDecision `json:"decision,omitempty"`
	CheckedAt time.Time       `json:"checked_at"`
}
