package names

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

func sampleConfig() types.InfraConfig {
	return types.InfraConfig{
		"azurerm_key_vault": map[string]any{
			"vault1": map[string]any{
				"name":                "vault1",
				"resource_group_name": "rg1",
				"tags":                []any{"team-a"},
				"values": map[string]any{
					"name":     "vault1",
					"sku_name": "standard",
				},
			},
		},
		"azurerm_resource_group": map[string]any{
			"rg1": map[string]any{"name": "rg1", "location": "eastus"},
		},
	}
}

func TestDeepCopyConfig_CopyIsIndependent(t *testing.T) {
	original := sampleConfig()

	copied := DeepCopyConfig(original)
	copied.Declarations("azurerm_key_vault")["vault1"].(map[string]any)["name"] = "changed"
	copied.Declarations("azurerm_key_vault")["vault1"].(map[string]any)["values"].(map[string]any)["name"] = "changed"

	attributes := original.Declarations("azurerm_key_vault")["vault1"].(map[string]any)
	assert.Equal(t, attributes["name"], "vault1")
	assert.Equal(t, attributes["values"].(map[string]any)["name"], "vault1")
}

func TestDeepCopyConfig_NilStaysNil(t *testing.T) {
	assert.Nil(t, DeepCopyConfig(nil))
}

func TestRenameInConfig_UpdatesDeclarationAndValuesMirror(t *testing.T) {
	config := sampleConfig()

	renamed := RenameInConfig(config, "azurerm_key_vault", "vault1", "vault1-copy")

	assert.True(t, renamed)
	declarations := config.Declarations("azurerm_key_vault")
	assert.Nil(t, declarations["vault1"])

	attributes := declarations["vault1-copy"].(map[string]any)
	assert.Equal(t, attributes["name"], "vault1-copy")
	assert.Equal(t, attributes["resource_group_name"], "rg1")
	assert.Equal(t, attributes["values"].(map[string]any)["name"], "vault1-copy")
	assert.Equal(t, attributes["values"].(map[string]any)["sku_name"], "standard")
}

func TestRenameInConfig_LeavesOtherTypesAlone(t *testing.T) {
	config := sampleConfig()

	RenameInConfig(config, "azurerm_key_vault", "vault1", "vault1-copy")

	group := config.Declarations("azurerm_resource_group")["rg1"].(map[string]any)
	assert.Equal(t, group["name"], "rg1")
}

func TestRenameInConfig_MissingTypeOrName(t *testing.T) {
	config := sampleConfig()

	assert.False(t, RenameInConfig(config, "azurerm_storage_account", "acct1", "acct1copy"))
	assert.False(t, RenameInConfig(config, "azurerm_key_vault", "vault2", "vault2-copy"))
}

func TestRenameInConfig_NonMapDeclarationStillMoves(t *testing.T) {
	config := types.InfraConfig{
		"azurerm_key_vault": map[string]any{"vault1": "opaque"},
	}

	renamed := RenameInConfig(config, "azurerm_key_vault", "vault1", "vault1-copy")

	assert.True(t, renamed)
	assert.Equal(t, config.Declarations("azurerm_key_vault")["vault1-copy"], "opaque")
}
