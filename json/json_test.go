package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"
)

func TestJsonClient_ExportImportRoundTrip(t *testing.T) {
	workingFolderPath := t.TempDir()
	jsonClient := NewJsonClient(workingFolderPath, logrus.New())

	jsonClient.Export(map[string]any{
		"azurerm_key_vault.vault1": "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1",
	}, "identifiers.json")

	payload := jsonClient.Import("identifiers.json")

	assert.Equal(t, payload["azurerm_key_vault.vault1"], "/subscriptions/target-sub/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/vault1")
}

func TestJsonClient_ExportIndented_WritesIndentedFile(t *testing.T) {
	workingFolderPath := t.TempDir()
	jsonClient := NewJsonClient(workingFolderPath, logrus.New())

	jsonClient.ExportIndented(map[string]any{"originalName": "acct1"}, "name_changes.json")

	content, err := os.ReadFile(filepath.Join(workingFolderPath, "name_changes.json"))
	assert.NoError(t, err)
	assert.Contains(t, string(content), "{\n  \"originalName\": \"acct1\"\n}")
}
