package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

type IHclClient interface {
	WriteImportBlocks(importBlocks []types.ImportBlock, fileName string)
	WriteCleanupBlocks(cleanupBlocks []types.CleanupBlock, fileName string)
	CleanFiles(filesToRemove []string)
}

type HclClient struct {
	WorkingFolderPath string
	DeleteCommands    []types.DeleteCommand
	Logger            *logrus.Logger
}

func NewHclClient(workingFolderPath string, deleteCommands []types.DeleteCommand, logger *logrus.Logger) *HclClient {
	return &HclClient{
		WorkingFolderPath: workingFolderPath,
		DeleteCommands:    deleteCommands,
		Logger:            logger,
	}
}

const defaultDeleteCommand = `$resourceID = (az resource show --ids %s | ConvertFrom-Json | Select-Object -ExpandProperty id)
if ($resourceID -ne $null) {
	Write-Host "Deleting resource..."
	az resource delete --ids $resourceID --verbose
} else {
	Write-Host "Resource not found, skipping deletion."
}`

func (hclClient *HclClient) WriteImportBlocks(importBlocks []types.ImportBlock, fileName string) {
	hclFilePath := filepath.Join(hclClient.WorkingFolderPath, fileName)
	hclFile := hclwrite.NewEmptyFile()

	for _, importBlock := range importBlocks {
		resourceBlock := hclFile.Body().AppendNewBlock("import", nil)
		resourceBlock.Body().SetAttributeValue("id", cty.StringVal(importBlock.ID))
		traversal := hcl.Traversal{
			hcl.TraverseRoot{Name: importBlock.To},
		}
		resourceBlock.Body().SetAttributeTraversal("to", traversal)
		hclFile.Body().AppendNewline()
	}

	err := os.WriteFile(hclFilePath, hclFile.Bytes(), 0644)
	if err != nil {
		hclClient.Logger.Fatal("Error writing file: ", err)
	}

	hclClient.Logger.Infof("HCL imports file %s written to: %s", fileName, hclFilePath)
}

// WriteCleanupBlocks emits one terraform_data resource per colliding resource
// so an operator can delete the collisions with a plain apply before the real
// deployment runs.
func (hclClient *HclClient) WriteCleanupBlocks(cleanupBlocks []types.CleanupBlock, fileName string) {
	hclFilePath := filepath.Join(hclClient.WorkingFolderPath, fileName)
	hclFile := hclwrite.NewEmptyFile()

	for i, cleanupBlock := range cleanupBlocks {
		resourceBlock := hclFile.Body().AppendNewBlock("resource", []string{"terraform_data", fmt.Sprintf("cleanup_%03d", i+1)})

		provisionerBlock := resourceBlock.Body().AppendNewBlock("provisioner", []string{"local-exec"})

		cleanupCommandTemplate := defaultDeleteCommand
		for _, deleteCommand := range hclClient.DeleteCommands {
			if strings.EqualFold(deleteCommand.Type, cleanupBlock.Type) {
				cleanupCommandTemplate = deleteCommand.Command
			}
		}

		cleanupCommand := fmt.Sprintf(cleanupCommandTemplate, cleanupBlock.ID)
		resourceBlock.Body().SetAttributeValue("triggers_replace", cty.StringVal(cleanupCommand))
		provisionerBlock.Body().SetAttributeValue("command", cty.StringVal(cleanupCommand))
		provisionerBlock.Body().SetAttributeValue("interpreter", cty.ListVal([]cty.Value{cty.StringVal("pwsh"), cty.StringVal("-Command")}))
		hclFile.Body().AppendNewline()
	}

	err := os.WriteFile(hclFilePath, hclFile.Bytes(), 0644)
	if err != nil {
		hclClient.Logger.Fatal("Error writing file: ", err)
	}

	hclClient.Logger.Infof("HCL cleanup file %s written to: %s", fileName, hclFilePath)
}

func (hclClient *HclClient) CleanFiles(filesToRemove []string) {
	for _, fileName := range filesToRemove {
		filePath := filepath.Join(hclClient.WorkingFolderPath, fileName)
		if _, err := os.Stat(filePath); err == nil {
			hclClient.Logger.Debugf("File %s already exists, it will be deleted", filePath)
			if err := os.Remove(filePath); err != nil {
				hclClient.Logger.Fatalf("Error deleting existing file: %v", err)
			}
		}
	}
}
