package types

// InfraConfig is the generated deployment artifact: a declaration tree keyed by
// resource type, then resource name, then attributes. Declarations may carry a
// nested "values" map mirroring the top-level fields; renames must keep both
// representations in sync.
type InfraConfig map[string]any

// Declarations returns the name→attributes map for a resource type, or nil
// when the type has no declarations in the config.
func (config InfraConfig) Declarations(resourceType string) map[string]any {
	declarations, ok := config[resourceType].(map[string]any)
	if !ok {
		return nil
	}
	return declarations
}

type ImportBlock struct {
	ID string
	To string
}

type CleanupBlock struct {
	ID   string
	Type string
}

type DeleteCommand struct {
	Type    string
	Command string
}
