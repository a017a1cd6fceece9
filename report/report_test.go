package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

func readReport(t *testing.T, filePath string) string {
	t.Helper()
	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Expected report file to exist, got %v", err)
	}
	return string(content)
}

func TestReportClient_Write_RendersSectionsPerKind(t *testing.T) {
	workingFolderPath := t.TempDir()
	reportClient := NewReportClient(workingFolderPath, logrus.New())

	report := types.ConflictReport{}
	report.Add(types.Conflict{Kind: types.ConflictKindExistingResource, ResourceType: "azurerm_key_vault", ResourceName: "vault1", ContainerID: "rg1", Detail: "a resource with this type and name already exists", RemediationActions: []string{"rename the planned resource"}})
	report.Add(types.Conflict{Kind: types.ConflictKindSoftDeleted, ResourceType: "azurerm_key_vault", ResourceName: "vault2", Detail: "scheduled purge date 2025-04-01"})
	report.Add(types.Conflict{Kind: types.ConflictKindLockedContainer, ResourceType: "azurerm_resource_group", ResourceName: "rg1", Detail: "locked by lock1 (CanNotDelete)"})

	result := types.NameValidationResult{}
	result.Add(types.NameConflict{ResourceType: "azurerm_storage_account", ResourceName: "acct1", Reason: types.NameConflictReasonAlreadyExists, SuggestedName: "acct1copy"})
	result.Fixes = append(result.Fixes, types.RenameAudit{OriginalName: "acct1", NewName: "acct1copy", Reason: types.NameConflictReasonAlreadyExists, ResourceType: "azurerm_storage_account"})

	reportClient.Write(report, result, "report.txt")

	content := readReport(t, filepath.Join(workingFolderPath, "report.txt"))

	assert.Contains(t, content, "Pre-Deployment Conflict Report")
	assert.Contains(t, content, "Existing resource collisions: 1")
	assert.Contains(t, content, "Existing Resources")
	assert.Contains(t, content, "azurerm_key_vault vault1 in rg1")
	assert.Contains(t, content, "Soft-Deleted Resources")
	assert.Contains(t, content, "scheduled purge date 2025-04-01")
	assert.Contains(t, content, "Locked Containers")
	assert.Contains(t, content, "Name Conflicts")
	assert.Contains(t, content, "suggested name: acct1copy")
	assert.Contains(t, content, "Applied Renames")
	assert.Contains(t, content, "azurerm_storage_account acct1 renamed to acct1copy (AlreadyExists)")
	assert.NotContains(t, content, "No conflicts detected.")
}

func TestReportClient_Write_AlwaysProducibleWhenEveryCheckFailed(t *testing.T) {
	workingFolderPath := t.TempDir()
	reportClient := NewReportClient(workingFolderPath, logrus.New())

	report := types.ConflictReport{}
	report.AddWarning("Skipping existing-resource check, the resource listing could not be read")
	report.AddWarning("Skipping soft-deleted check, the deleted listing could not be read")
	report.AddWarning("Skipping lock check, the lock listing could not be read")

	result := types.NameValidationResult{}
	result.AddWarning("Name validation ran offline, only syntax rules were checked")

	reportClient.Write(report, result, "report.txt")

	content := readReport(t, filepath.Join(workingFolderPath, "report.txt"))

	assert.Contains(t, content, "No conflicts detected.")
	assert.Contains(t, content, "Warnings:                     4")
	assert.Contains(t, content, "Skipping existing-resource check, the resource listing could not be read")
	assert.Contains(t, content, "Name validation ran offline, only syntax rules were checked")
}
