package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

type IReportClient interface {
	Write(report types.ConflictReport, result types.NameValidationResult, fileName string)
}

type ReportClient struct {
	WorkingFolderPath string
	Logger            *logrus.Logger
}

func NewReportClient(workingFolderPath string, logger *logrus.Logger) *ReportClient {
	return &ReportClient{
		WorkingFolderPath: workingFolderPath,
		Logger:            logger,
	}
}

// Write renders the operator summary. The file is written even when every
// check failed so a run always leaves something to review.
func (reportClient *ReportClient) Write(report types.ConflictReport, result types.NameValidationResult, fileName string) {
	var builder strings.Builder

	writeHeading(&builder, "Pre-Deployment Conflict Report")
	builder.WriteString(fmt.Sprintf("Existing resource collisions: %d\n", report.ExistingResourcesFound))
	builder.WriteString(fmt.Sprintf("Soft-deleted collisions:      %d\n", report.SoftDeletedFound))
	builder.WriteString(fmt.Sprintf("Locked containers:            %d\n", report.LockedContainersFound))
	builder.WriteString(fmt.Sprintf("Name conflicts:               %d\n", len(result.Conflicts)))
	builder.WriteString(fmt.Sprintf("Warnings:                     %d\n", len(report.Warnings)+len(result.Warnings)))
	builder.WriteString("\n")

	if !report.HasConflicts() && !result.HasConflicts() {
		builder.WriteString("No conflicts detected.\n\n")
	}

	writeConflictSection(&builder, "Existing Resources", report.Conflicts, types.ConflictKindExistingResource)
	writeConflictSection(&builder, "Soft-Deleted Resources", report.Conflicts, types.ConflictKindSoftDeleted)
	writeConflictSection(&builder, "Locked Containers", report.Conflicts, types.ConflictKindLockedContainer)
	writeNameConflictSection(&builder, result)
	writeRenameSection(&builder, result)
	writeWarningSection(&builder, report, result)

	reportFilePath := filepath.Join(reportClient.WorkingFolderPath, fileName)
	err := os.WriteFile(reportFilePath, []byte(builder.String()), 0644)
	if err != nil {
		reportClient.Logger.Fatal("Error writing file: ", err)
	}

	reportClient.Logger.Infof("Report written to %s", reportFilePath)
}

func writeHeading(builder *strings.Builder, heading string) {
	builder.WriteString(heading + "\n")
	builder.WriteString(strings.Repeat("=", len(heading)) + "\n\n")
}

func writeSectionHeading(builder *strings.Builder, heading string) {
	builder.WriteString(heading + "\n")
	builder.WriteString(strings.Repeat("-", len(heading)) + "\n")
}

func writeConflictSection(builder *strings.Builder, heading string, conflicts []types.Conflict, kind types.ConflictKind) {
	matched := []types.Conflict{}
	for _, conflict := range conflicts {
		if conflict.Kind == kind {
			matched = append(matched, conflict)
		}
	}

	if len(matched) == 0 {
		return
	}

	writeSectionHeading(builder, heading)
	for _, conflict := range matched {
		location := ""
		if conflict.ContainerID != "" {
			location = fmt.Sprintf(" in %s", conflict.ContainerID)
		}
		builder.WriteString(fmt.Sprintf("%s %s%s\n", conflict.ResourceType, conflict.ResourceName, location))
		if conflict.Detail != "" {
			builder.WriteString(fmt.Sprintf("    %s\n", conflict.Detail))
		}
		for _, action := range conflict.RemediationActions {
			builder.WriteString(fmt.Sprintf("    remediation: %s\n", action))
		}
	}
	builder.WriteString("\n")
}

func writeNameConflictSection(builder *strings.Builder, result types.NameValidationResult) {
	if len(result.Conflicts) == 0 {
		return
	}

	writeSectionHeading(builder, "Name Conflicts")
	for _, conflict := range result.Conflicts {
		builder.WriteString(fmt.Sprintf("%s %s (%s)\n", conflict.ResourceType, conflict.ResourceName, conflict.Reason))
		if conflict.Detail != "" {
			builder.WriteString(fmt.Sprintf("    %s\n", conflict.Detail))
		}
		if conflict.SuggestedName != "" {
			builder.WriteString(fmt.Sprintf("    suggested name: %s\n", conflict.SuggestedName))
		}
		for _, action := range conflict.RemediationActions {
			builder.WriteString(fmt.Sprintf("    remediation: %s\n", action))
		}
	}
	builder.WriteString("\n")
}

func writeRenameSection(builder *strings.Builder, result types.NameValidationResult) {
	if len(result.Fixes) == 0 {
		return
	}

	writeSectionHeading(builder, "Applied Renames")
	for _, fix := range result.Fixes {
		builder.WriteString(fmt.Sprintf("%s %s renamed to %s (%s)\n", fix.ResourceType, fix.OriginalName, fix.NewName, fix.Reason))
	}
	builder.WriteString("\n")
}

func writeWarningSection(builder *strings.Builder, report types.ConflictReport, result types.NameValidationResult) {
	if len(report.Warnings) == 0 && len(result.Warnings) == 0 {
		return
	}

	writeSectionHeading(builder, "Warnings")
	for _, warning := range report.Warnings {
		builder.WriteString(fmt.Sprintf("%s\n", warning))
	}
	for _, warning := range result.Warnings {
		builder.WriteString(fmt.Sprintf("%s\n", warning))
	}
	builder.WriteString("\n")
}
