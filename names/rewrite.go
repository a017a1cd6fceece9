package names

import "github.com/rysweet/azure-tenant-grapher-sub012/types"

// DeepCopyConfig clones the declaration tree so renames never touch the
// caller's original.
func DeepCopyConfig(config types.InfraConfig) types.InfraConfig {
	if config == nil {
		return nil
	}

	return types.InfraConfig(deepCopyValue(map[string]any(config)).(map[string]any))
}

func deepCopyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for key, nested := range typed {
			copied[key] = deepCopyValue(nested)
		}
		return copied
	case []any:
		copied := make([]any, len(typed))
		for i, nested := range typed {
			copied[i] = deepCopyValue(nested)
		}
		return copied
	default:
		return typed
	}
}

// RenameInConfig moves the declaration of one resource to its new name and
// rewrites every field equal to the old name, both in the top level attribute
// map and in the nested values mirror, keeping the two in sync. Returns false
// when the config holds no declaration under the old name.
func RenameInConfig(config types.InfraConfig, resourceType string, oldName string, newName string) bool {
	declarations := config.Declarations(resourceType)
	if declarations == nil {
		return false
	}

	declaration, ok := declarations[oldName]
	if !ok {
		return false
	}

	declarations[newName] = declaration
	delete(declarations, oldName)

	attributes, ok := declaration.(map[string]any)
	if !ok {
		return true
	}

	replaceNameFields(attributes, oldName, newName)
	if values, ok := attributes["values"].(map[string]any); ok {
		replaceNameFields(values, oldName, newName)
	}

	return true
}

func replaceNameFields(fields map[string]any, oldName string, newName string) {
	for key, value := range fields {
		if text, ok := value.(string); ok && text == oldName {
			fields[key] = newName
		}
	}
}
