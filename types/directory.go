package types

// DirectoryResource is one row of the target environment's resource listing.
type DirectoryResource struct {
	ID          string
	Type        string
	Name        string
	ContainerID string
}

type SoftDeletedResource struct {
	Type               string
	Name               string
	Location           string
	ScheduledPurgeDate string
}

type LockLevel string

const (
	LockLevelCanNotDelete LockLevel = "CanNotDelete"
	LockLevelReadOnly     LockLevel = "ReadOnly"
	LockLevelNotSpecified LockLevel = "NotSpecified"
)

func (level LockLevel) IsValidLockLevel() bool {
	switch level {
	case LockLevelCanNotDelete,
		LockLevelReadOnly,
		LockLevelNotSpecified:
		return true
	default:
		return false
	}
}

type ContainerLock struct {
	LockName string
	Level    LockLevel
}
