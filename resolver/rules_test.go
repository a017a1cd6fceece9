package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

func TestNamingRule_Matches_StorageAccount(t *testing.T) {
	rule := DefaultNamingRules()["azurerm_storage_account"]

	assert.True(t, rule.Matches("acct1"))
	assert.True(t, rule.Matches("a1b2c3"))
	assert.False(t, rule.Matches("Acct1"))
	assert.False(t, rule.Matches("acct-1"))
	assert.False(t, rule.Matches("ab"))
	assert.False(t, rule.Matches("abcdefghijklmnopqrstuvwxy"))
}

func TestNamingRule_Matches_KeyVault(t *testing.T) {
	rule := DefaultNamingRules()["azurerm_key_vault"]

	assert.True(t, rule.Matches("vault-1"))
	assert.True(t, rule.Matches("Vault1"))
	assert.False(t, rule.Matches("1vault"))
	assert.False(t, rule.Matches("vault-"))
	assert.False(t, rule.Matches("v"))
}

func TestNamingRule_Matches_UnboundedRule(t *testing.T) {
	rule := NamingRule{}

	assert.True(t, rule.Matches("anything goes here"))
}

func TestCheckDisallowedPattern_AcceptsPlainNames(t *testing.T) {
	assert.NoError(t, CheckDisallowedPattern("vault1"))
	assert.NoError(t, CheckDisallowedPattern("has-$-but-no-brace"))
}

func TestCheckDisallowedPattern_RejectsInterpolation(t *testing.T) {
	err := CheckDisallowedPattern("${azurerm_key_vault.main.name}")

	assert.Error(t, err)
	assert.True(t, types.IsErrorKind(err, types.ErrorKindDisallowedPattern))
}

func TestCheckDisallowedPattern_RejectsDirective(t *testing.T) {
	err := CheckDisallowedPattern("%{ if true }vault%{ endif }")

	assert.Error(t, err)
	assert.True(t, types.IsErrorKind(err, types.ErrorKindDisallowedPattern))
}

func TestDefaultGloballyUniqueTypes_CoversVaultsAndStorage(t *testing.T) {
	globallyUnique := DefaultGloballyUniqueTypes()

	assert.True(t, globallyUnique["azurerm_storage_account"])
	assert.True(t, globallyUnique["azurerm_key_vault"])
	assert.False(t, globallyUnique["azurerm_virtual_network"])
}

func TestDefaultSoftDeleteTypes_CoversVaults(t *testing.T) {
	softDelete := DefaultSoftDeleteTypes()

	assert.True(t, softDelete["azurerm_key_vault"])
	assert.False(t, softDelete["azurerm_storage_account"])
}
