package types

type ConflictKind string

const (
	ConflictKindExistingResource ConflictKind = "ExistingResource"
	ConflictKindSoftDeleted      ConflictKind = "SoftDeletedResource"
	ConflictKindLockedContainer  ConflictKind = "LockedContainer"
)

func (conflictKind ConflictKind) IsValidConflictKind() bool {
	switch conflictKind {
	case ConflictKindExistingResource,
		ConflictKindSoftDeleted,
		ConflictKindLockedContainer:
		return true
	default:
		return false
	}
}

type Conflict struct {
	ConflictID         string
	Kind               ConflictKind
	ResourceName       string
	ResourceType       string
	ContainerID        string
	Detail             string
	RemediationActions []string
}

type DetectOptions struct {
	CheckExisting    bool
	CheckSoftDeleted bool
	CheckLocks       bool
}

func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		CheckExisting:    true,
		CheckSoftDeleted: true,
		CheckLocks:       true,
	}
}

type ConflictReport struct {
	Conflicts []Conflict
	Warnings  []string

	ExistingResourcesFound int
	SoftDeletedFound       int
	LockedContainersFound  int
}

// Add keeps the per-kind counters in step with the conflict slice.
func (report *ConflictReport) Add(conflict Conflict) {
	report.Conflicts = append(report.Conflicts, conflict)
	switch conflict.Kind {
	case ConflictKindExistingResource:
		report.ExistingResourcesFound++
	case ConflictKindSoftDeleted:
		report.SoftDeletedFound++
	case ConflictKindLockedContainer:
		report.LockedContainersFound++
	}
}

func (report *ConflictReport) AddWarning(warning string) {
	report.Warnings = append(report.Warnings, warning)
}

func (report ConflictReport) HasConflicts() bool {
	return len(report.Conflicts) > 0
}
