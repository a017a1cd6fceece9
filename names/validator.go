package names

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/azure"
	"github.com/rysweet/azure-tenant-grapher-sub012/resolver"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

// TypeMapper translates declared types into directory types for index lookups
// and availability probes.
type TypeMapper interface {
	ARMTypeFor(resourceType string) (string, bool)
}

type IValidatorClient interface {
	ValidateAndFix(ctx context.Context, planned []types.PlannedResource, config types.InfraConfig, autoFix bool) (types.InfraConfig, types.NameValidationResult)
}

// ValidatorClient checks every planned resource name against its type's
// syntax rule, the current directory listing, global name availability and
// soft deleted holders, in that order. A nil Directory puts the validator in
// offline mode where only syntax rules run.
type ValidatorClient struct {
	Directory           azure.IDirectoryClient
	TypeMapper          TypeMapper
	Index               *azure.DirectoryIndex
	Rules               map[string]resolver.NamingRule
	GloballyUniqueTypes map[string]bool
	SoftDeleteTypes     map[string]bool
	Strategy            types.FixStrategy
	Suffix              string
	CustomPattern       string
	AutoPurge           bool
	Logger              *logrus.Logger
}

func NewValidatorClient(directory azure.IDirectoryClient, typeMapper TypeMapper, index *azure.DirectoryIndex, rules map[string]resolver.NamingRule, globallyUnique map[string]bool, softDelete map[string]bool, strategy types.FixStrategy, suffix string, customPattern string, autoPurge bool, logger *logrus.Logger) *ValidatorClient {
	return &ValidatorClient{
		Directory:           directory,
		TypeMapper:          typeMapper,
		Index:               index,
		Rules:               rules,
		GloballyUniqueTypes: globallyUnique,
		SoftDeleteTypes:     softDelete,
		Strategy:            strategy,
		Suffix:              suffix,
		CustomPattern:       customPattern,
		AutoPurge:           autoPurge,
		Logger:              logger,
	}
}

// ValidateAndFix walks the planned resources in order and reports at most one
// conflict per resource, the first of syntax, existing, global uniqueness and
// soft deleted that matches. With autoFix it also rewrites the returned copy
// of the config and records every rename. The input config is never mutated.
func (validatorClient *ValidatorClient) ValidateAndFix(ctx context.Context, planned []types.PlannedResource, config types.InfraConfig, autoFix bool) (types.InfraConfig, types.NameValidationResult) {
	result := types.NameValidationResult{
		Conflicts:    []types.NameConflict{},
		Warnings:     []string{},
		NameMappings: map[string]string{},
		Fixes:        []types.RenameAudit{},
	}

	updated := DeepCopyConfig(config)

	validatorClient.Logger.Infof("Validating names of %d planned resources", len(planned))

	directoryAvailable := validatorClient.Directory != nil
	if !directoryAvailable {
		validatorClient.Logger.Warn("No directory client configured, only naming rules will be checked")
		result.AddWarning("directory unavailable, existing resource, global uniqueness and soft deleted checks skipped")
	}

	index := validatorClient.Index
	if directoryAvailable && index == nil {
		var err error
		index, err = azure.BuildDirectoryIndex(ctx, validatorClient.Directory, validatorClient.Logger)
		if err != nil {
			validatorClient.Logger.Warnf("Could not list existing resources: %v", err)
			result.AddWarning(fmt.Sprintf("existing resource check skipped: %v", err))
			index = nil
		}
	}

	deleted := validatorClient.listSoftDeleted(ctx, planned, directoryAvailable, &result)

	taken := map[string]bool{}
	for _, resource := range planned {
		taken[takenKey(resource.Type, resource.Name)] = true
	}

	for _, resource := range planned {
		if resource.Type == "" || resource.Name == "" {
			validatorClient.Logger.Debugf("Skipping resource %q with missing type or name", resource.Key())
			continue
		}

		conflict := validatorClient.checkResource(ctx, resource, index, deleted, directoryAvailable, &result)
		if conflict == nil {
			validatorClient.Logger.Tracef("Name %s is valid for type %s", resource.Name, resource.Type)
			continue
		}

		if autoFix {
			validatorClient.fixConflict(ctx, resource, conflict, index, deleted, taken, updated, &result)
		}

		result.Add(*conflict)
	}

	if result.HasConflicts() {
		validatorClient.Logger.Warnf("Found %d name conflicts (%d invalid, %d existing, %d not globally unique, %d soft deleted)",
			len(result.Conflicts), result.InvalidNamesFound, result.ExistingCollisionsFound, result.GlobalCollisionsFound, result.SoftDeletedCollisionsFound)
	} else {
		validatorClient.Logger.Info("All planned resource names are valid")
	}

	return updated, result
}

func (validatorClient *ValidatorClient) checkResource(ctx context.Context, resource types.PlannedResource, index *azure.DirectoryIndex, deleted map[string]types.SoftDeletedResource, directoryAvailable bool, result *types.NameValidationResult) *types.NameConflict {
	if err := resolver.CheckDisallowedPattern(resource.Name); err != nil {
		return &types.NameConflict{
			ResourceType:       resource.Type,
			ResourceName:       resource.Name,
			ContainerID:        resource.ContainerID,
			Reason:             types.NameConflictReasonInvalidName,
			Detail:             err.Error(),
			RemediationActions: []string{"Replace the templated name with a literal value"},
		}
	}

	rule, hasRule := validatorClient.Rules[resource.Type]
	if hasRule && !rule.Matches(resource.Name) {
		detail := fmt.Sprintf("name %q violates the naming rule for %s", resource.Name, resource.Type)
		if rule.MaxLength > 0 && len(resource.Name) > rule.MaxLength {
			detail = fmt.Sprintf("name %q exceeds the %d character limit for %s", resource.Name, rule.MaxLength, resource.Type)
		}

		return &types.NameConflict{
			ResourceType:       resource.Type,
			ResourceName:       resource.Name,
			ContainerID:        resource.ContainerID,
			Reason:             types.NameConflictReasonInvalidName,
			Detail:             detail,
			RemediationActions: []string{fmt.Sprintf("Rename %s to satisfy the %s naming rule", resource.Name, resource.Type)},
		}
	}

	if index != nil {
		if existing, found := index.Lookup(validatorClient.directoryType(resource.Type), resource.Name); found {
			detail := "a resource with this name and type already exists in the target subscription"
			if existing.ID != "" {
				detail = fmt.Sprintf("already exists as %s", existing.ID)
			}

			return &types.NameConflict{
				ResourceType: resource.Type,
				ResourceName: resource.Name,
				ContainerID:  resource.ContainerID,
				Reason:       types.NameConflictReasonAlreadyExists,
				Detail:       detail,
				RemediationActions: []string{
					fmt.Sprintf("Rename the planned resource %s", resource.Name),
					"Delete the existing resource before deploying",
				},
			}
		}
	}

	// Inconclusive availability probes count as available. A wrongly blocked
	// deployment is worse than a late failure the apply step will catch.
	if validatorClient.GloballyUniqueTypes[resource.Type] && directoryAvailable {
		available, err := validatorClient.Directory.CheckNameAvailability(ctx, validatorClient.directoryType(resource.Type), resource.Name)
		if err != nil {
			validatorClient.Logger.Debugf("Availability probe for %s failed, assuming the name is free: %v", resource.Name, err)
			result.AddWarning(fmt.Sprintf("availability probe for %s failed, assuming the name is free: %v", resource.Name, err))
		} else if !available {
			return &types.NameConflict{
				ResourceType: resource.Type,
				ResourceName: resource.Name,
				ContainerID:  resource.ContainerID,
				Reason:       types.NameConflictReasonNotGloballyUnique,
				Detail:       fmt.Sprintf("the name %q is taken, %s names must be unique across all tenants", resource.Name, resource.Type),
				RemediationActions: []string{
					fmt.Sprintf("Choose a globally unique name for %s", resource.Name),
				},
			}
		}
	}

	if validatorClient.SoftDeleteTypes[resource.Type] && deleted != nil {
		if softDeleted, found := deleted[takenKey(validatorClient.directoryType(resource.Type), resource.Name)]; found {
			detail := "a soft deleted resource is still holding this name"
			if softDeleted.ScheduledPurgeDate != "" {
				detail = fmt.Sprintf("a soft deleted resource is holding this name until its scheduled purge on %s", softDeleted.ScheduledPurgeDate)
			}

			return &types.NameConflict{
				ResourceType: resource.Type,
				ResourceName: resource.Name,
				ContainerID:  resource.ContainerID,
				Reason:       types.NameConflictReasonSoftDeleted,
				Detail:       detail,
				RemediationActions: []string{
					fmt.Sprintf("Purge the soft deleted resource %s to release the name", resource.Name),
					fmt.Sprintf("Rename the planned resource %s", resource.Name),
				},
			}
		}
	}

	return nil
}

// fixConflict proposes a replacement name, rewrites the config copy and
// records the rename. Soft deleted holders are purged instead when the caller
// asked for that, the name stays untouched in that case.
func (validatorClient *ValidatorClient) fixConflict(ctx context.Context, resource types.PlannedResource, conflict *types.NameConflict, index *azure.DirectoryIndex, deleted map[string]types.SoftDeletedResource, taken map[string]bool, updated types.InfraConfig, result *types.NameValidationResult) {
	if conflict.Reason == types.NameConflictReasonSoftDeleted && validatorClient.AutoPurge && validatorClient.Directory != nil {
		armType := validatorClient.directoryType(resource.Type)
		softDeleted := deleted[takenKey(armType, resource.Name)]

		err := validatorClient.Directory.PurgeSoftDeletedResource(ctx, armType, resource.Name, softDeleted.Location)
		if err == nil {
			conflict.Detail = conflict.Detail + ", purged on request so the name is free again"
			return
		}

		validatorClient.Logger.Warnf("Purge of %s failed, falling back to a rename: %v", resource.Name, err)
		result.AddWarning(fmt.Sprintf("purge of %s failed: %v", resource.Name, err))
	}

	rule, hasRule := validatorClient.Rules[resource.Type]

	newName := validatorClient.proposeName(resource.Name, rule, hasRule)
	if !validatorClient.nameIsFree(resource.Type, newName, index, deleted, taken) || (hasRule && !rule.Matches(newName)) {
		fallback := fitToRule(resource.Name, randomToken(randomTokenLength), rule, hasRule)
		validatorClient.Logger.Debugf("Proposed name %s is not usable, falling back to %s", newName, fallback)
		newName = fallback
	}

	if hasRule && !rule.Matches(newName) {
		validatorClient.Logger.Warnf("Could not propose a valid replacement name for %s %s", resource.Type, resource.Name)
		result.AddWarning(fmt.Sprintf("no valid replacement name found for %s %s", resource.Type, resource.Name))
		return
	}

	conflict.SuggestedName = newName
	result.NameMappings[resource.Name] = newName
	result.Fixes = append(result.Fixes, types.RenameAudit{
		OriginalName: resource.Name,
		NewName:      newName,
		Reason:       conflict.Reason,
		ResourceType: resource.Type,
	})
	taken[takenKey(resource.Type, newName)] = true

	if updated != nil {
		if !RenameInConfig(updated, resource.Type, resource.Name, newName) {
			validatorClient.Logger.Debugf("No declaration of %s %s in the config to rewrite", resource.Type, resource.Name)
		}
	}

	validatorClient.Logger.Infof("Renaming %s %s to %s", resource.Type, resource.Name, newName)
}

func (validatorClient *ValidatorClient) listSoftDeleted(ctx context.Context, planned []types.PlannedResource, directoryAvailable bool, result *types.NameValidationResult) map[string]types.SoftDeletedResource {
	if !directoryAvailable {
		return nil
	}

	needed := false
	for _, resource := range planned {
		if validatorClient.SoftDeleteTypes[resource.Type] {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	seen := map[string]bool{}
	armTypes := []string{}
	for resourceType, enabled := range validatorClient.SoftDeleteTypes {
		if !enabled {
			continue
		}
		armType := validatorClient.directoryType(resourceType)
		if seen[strings.ToLower(armType)] {
			continue
		}
		seen[strings.ToLower(armType)] = true
		armTypes = append(armTypes, armType)
	}
	sort.Strings(armTypes)

	deleted, err := validatorClient.Directory.ListSoftDeletedResources(ctx, armTypes)
	if err != nil {
		validatorClient.Logger.Warnf("Could not list soft deleted resources: %v", err)
		result.AddWarning(fmt.Sprintf("soft deleted check skipped: %v", err))
		return nil
	}

	byKey := map[string]types.SoftDeletedResource{}
	for _, resource := range deleted {
		byKey[takenKey(resource.Type, resource.Name)] = resource
	}

	return byKey
}

func (validatorClient *ValidatorClient) nameIsFree(resourceType string, name string, index *azure.DirectoryIndex, deleted map[string]types.SoftDeletedResource, taken map[string]bool) bool {
	if taken[takenKey(resourceType, name)] {
		return false
	}

	armType := validatorClient.directoryType(resourceType)
	if index != nil {
		if _, found := index.Lookup(armType, name); found {
			return false
		}
	}
	if deleted != nil {
		if _, found := deleted[takenKey(armType, name)]; found {
			return false
		}
	}

	return true
}

func (validatorClient *ValidatorClient) directoryType(resourceType string) string {
	if validatorClient.TypeMapper != nil {
		if armType, ok := validatorClient.TypeMapper.ARMTypeFor(resourceType); ok {
			return armType
		}
	}

	return resourceType
}

func takenKey(resourceType string, name string) string {
	return strings.ToLower(resourceType) + "|" + strings.ToLower(name)
}
