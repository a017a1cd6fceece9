package types

import "fmt"

type PlannedResource struct {
	Type        string
	Name        string
	ContainerID string
	Attributes  map[string]any
	OriginalID  string
}

// Key is the stable lookup key used by the known-identifier capture file.
func (resource PlannedResource) Key() string {
	return fmt.Sprintf("%s.%s", resource.Type, resource.Name)
}

type IdentifierPattern string

const (
	PatternContainerScoped IdentifierPattern = "ContainerScoped"
	PatternChildOfParent   IdentifierPattern = "ChildOfParent"
	PatternRootScoped      IdentifierPattern = "RootScoped"
	PatternAssociation     IdentifierPattern = "Association"
)

func (pattern IdentifierPattern) IsValidIdentifierPattern() bool {
	switch pattern {
	case PatternContainerScoped,
		PatternChildOfParent,
		PatternRootScoped,
		PatternAssociation:
		return true
	default:
		return false
	}
}

type ResolutionFailure struct {
	ResourceType string
	ResourceName string
	Reason       string
}
