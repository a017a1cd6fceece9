package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

func readFile(t *testing.T, filePath string) string {
	t.Helper()
	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Expected file to exist, got %v", err)
	}
	return string(content)
}

func TestHclClient_WriteImportBlocks_WritesIdAndTraversal(t *testing.T) {
	workingFolderPath := t.TempDir()
	hclClient := NewHclClient(workingFolderPath, nil, logrus.New())

	hclClient.WriteImportBlocks([]types.ImportBlock{
		{ID: "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1", To: "azurerm_key_vault.vault1"},
		{ID: "/subscriptions/target-sub/resourceGroups/rg1", To: "azurerm_resource_group.rg1"},
	}, "imports.tf")

	content := readFile(t, filepath.Join(workingFolderPath, "imports.tf"))

	assert.Contains(t, content, "import {")
	assert.Contains(t, content, `id = "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1"`)
	assert.Contains(t, content, "to = azurerm_key_vault.vault1")
	assert.Contains(t, content, "to = azurerm_resource_group.rg1")
}

func TestHclClient_WriteCleanupBlocks_UsesTypeCommandOverDefault(t *testing.T) {
	workingFolderPath := t.TempDir()
	deleteCommands := []types.DeleteCommand{
		{Type: "azurerm_key_vault", Command: "az keyvault delete --ids %s"},
	}
	hclClient := NewHclClient(workingFolderPath, deleteCommands, logrus.New())

	hclClient.WriteCleanupBlocks([]types.CleanupBlock{
		{ID: "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1", Type: "AZURERM_KEY_VAULT"},
		{ID: "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/acct1", Type: "azurerm_storage_account"},
	}, "cleanup.tf")

	content := readFile(t, filepath.Join(workingFolderPath, "cleanup.tf"))

	assert.Contains(t, content, `resource "terraform_data" "cleanup_001"`)
	assert.Contains(t, content, `resource "terraform_data" "cleanup_002"`)
	assert.Contains(t, content, "az keyvault delete --ids /subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1")
	assert.Contains(t, content, "az resource show --ids /subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/acct1")
	assert.Contains(t, content, `provisioner "local-exec"`)
}

func TestHclClient_CleanFiles_RemovesExistingAndSkipsMissing(t *testing.T) {
	workingFolderPath := t.TempDir()
	hclClient := NewHclClient(workingFolderPath, nil, logrus.New())

	existingFilePath := filepath.Join(workingFolderPath, "imports.tf")
	if err := os.WriteFile(existingFilePath, []byte("import {}\n"), 0644); err != nil {
		t.Fatalf("Expected to create the file, got %v", err)
	}

	hclClient.CleanFiles([]string{"imports.tf", "cleanup.tf"})

	_, err := os.Stat(existingFilePath)
	assert.True(t, os.IsNotExist(err))
}
