package types

type NameConflictReason string

const (
	NameConflictReasonInvalidName       NameConflictReason = "InvalidName"
	NameConflictReasonAlreadyExists     NameConflictReason = "AlreadyExists"
	NameConflictReasonNotGloballyUnique NameConflictReason = "NotGloballyUnique"
	NameConflictReasonSoftDeleted       NameConflictReason = "SoftDeleted"
)

func (reason NameConflictReason) IsValidNameConflictReason() bool {
	switch reason {
	case NameConflictReasonInvalidName,
		NameConflictReasonAlreadyExists,
		NameConflictReasonNotGloballyUnique,
		NameConflictReasonSoftDeleted:
		return true
	default:
		return false
	}
}

type NameConflict struct {
	ResourceType       string
	ResourceName       string
	ContainerID        string
	Reason             NameConflictReason
	Detail             string
	RemediationActions []string
	SuggestedName      string
}

type NameValidationResult struct {
	Conflicts    []NameConflict
	Warnings     []string
	NameMappings map[string]string
	Fixes        []RenameAudit

	InvalidNamesFound          int
	ExistingCollisionsFound    int
	GlobalCollisionsFound      int
	SoftDeletedCollisionsFound int
}

func (result *NameValidationResult) Add(conflict NameConflict) {
	result.Conflicts = append(result.Conflicts, conflict)
	switch conflict.Reason {
	case NameConflictReasonInvalidName:
		result.InvalidNamesFound++
	case NameConflictReasonAlreadyExists:
		result.ExistingCollisionsFound++
	case NameConflictReasonNotGloballyUnique:
		result.GlobalCollisionsFound++
	case NameConflictReasonSoftDeleted:
		result.SoftDeletedCollisionsFound++
	}
}

func (result *NameValidationResult) AddWarning(warning string) {
	result.Warnings = append(result.Warnings, warning)
}

func (result NameValidationResult) HasConflicts() bool {
	return len(result.Conflicts) > 0
}

// RenameAudit is one row of the name_changes.json operator audit file.
type RenameAudit struct {
	OriginalName string             `json:"originalName"`
	NewName      string             `json:"newName"`
	Reason       NameConflictReason `json:"reason"`
	ResourceType string             `json:"resourceType"`
}

type FixStrategy string

const (
	FixStrategySuffix        FixStrategy = "Suffix"
	FixStrategyCustomPattern FixStrategy = "CustomPattern"
	FixStrategyRandomSuffix  FixStrategy = "RandomSuffix"
)

func (strategy FixStrategy) IsValidFixStrategy() bool {
	switch strategy {
	case FixStrategySuffix,
		FixStrategyCustomPattern,
		FixStrategyRandomSuffix:
		return true
	default:
		return false
	}
}
