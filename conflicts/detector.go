package conflicts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/azure"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

// TypeMapper translates a declared resource type into the type the directory
// lists it under. The identifier resolver's pattern table satisfies this.
type TypeMapper interface {
	ARMTypeFor(resourceType string) (string, bool)
}

type IDetectorClient interface {
	DetectConflicts(ctx context.Context, planned []types.PlannedResource, opts types.DetectOptions) types.ConflictReport
}

type DetectorClient struct {
	Directory       azure.IDirectoryClient
	TypeMapper      TypeMapper
	Index           *azure.DirectoryIndex
	SoftDeleteTypes map[string]bool
	Logger          *logrus.Logger
}

// NewDetectorClient wires a detector. index may be nil, in which case the
// existing-resource check lists the directory itself. Passing a pre-built
// index lets one listing serve both this detector and the name validator.
func NewDetectorClient(directory azure.IDirectoryClient, typeMapper TypeMapper, index *azure.DirectoryIndex, softDeleteTypes map[string]bool, logger *logrus.Logger) *DetectorClient {
	return &DetectorClient{
		Directory:       directory,
		TypeMapper:      typeMapper,
		Index:           index,
		SoftDeleteTypes: softDeleteTypes,
		Logger:          logger,
	}
}

// DetectConflicts fans out the three checks concurrently and joins before
// returning. A failed check contributes a warning instead of results, the
// other two are unaffected. The report is assembled in a fixed check order so
// repeated runs over the same inputs produce identical output.
func (detectorClient *DetectorClient) DetectConflicts(ctx context.Context, planned []types.PlannedResource, opts types.DetectOptions) types.ConflictReport {
	report := types.ConflictReport{Conflicts: []types.Conflict{}, Warnings: []string{}}

	detectorClient.Logger.Infof("Checking %d planned resources for deployment conflicts", len(planned))

	type outcome struct {
		conflicts []types.Conflict
		warning   string
	}
	outcomes := make([]outcome, 3)

	var waitGroup sync.WaitGroup
	run := func(slot int, name string, check func() ([]types.Conflict, error)) {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			conflicts, err := check()
			if err != nil {
				detectorClient.Logger.Warnf("The %s check failed: %v", name, err)
				outcomes[slot] = outcome{warning: fmt.Sprintf("%s check failed, results incomplete: %v", name, err)}
				return
			}
			outcomes[slot] = outcome{conflicts: conflicts}
		}()
	}

	if opts.CheckExisting {
		run(0, "existing resource", func() ([]types.Conflict, error) {
			return detectorClient.checkExistingResources(ctx, planned)
		})
	} else {
		detectorClient.Logger.Debug("Skipping existing resource check")
	}

	if opts.CheckSoftDeleted {
		run(1, "soft deleted resource", func() ([]types.Conflict, error) {
			return detectorClient.checkSoftDeletedResources(ctx, planned)
		})
	} else {
		detectorClient.Logger.Debug("Skipping soft deleted resource check")
	}

	if opts.CheckLocks {
		run(2, "locked container", func() ([]types.Conflict, error) {
			return detectorClient.checkLockedContainers(ctx, planned)
		})
	} else {
		detectorClient.Logger.Debug("Skipping locked container check")
	}

	waitGroup.Wait()

	for _, outcome := range outcomes {
		if outcome.warning != "" {
			report.AddWarning(outcome.warning)
		}
		for _, conflict := range outcome.conflicts {
			report.Add(conflict)
		}
	}

	if len(report.Conflicts) >= 3 {
		report.AddWarning(fmt.Sprintf("%d conflicts found, consider a bulk cleanup of the colliding resources before deploying", len(report.Conflicts)))
	}
	if report.ExistingResourcesFound > 0 || report.SoftDeletedFound > 0 {
		report.AddWarning("Name collisions can be resolved automatically by enabling auto fix")
	}

	if report.HasConflicts() {
		detectorClient.Logger.Warnf("Found %d conflicts (%d existing, %d soft deleted, %d locked containers)",
			len(report.Conflicts), report.ExistingResourcesFound, report.SoftDeletedFound, report.LockedContainersFound)
	} else {
		detectorClient.Logger.Info("No deployment conflicts found")
	}

	return report
}

func (detectorClient *DetectorClient) checkExistingResources(ctx context.Context, planned []types.PlannedResource) ([]types.Conflict, error) {
	index := detectorClient.Index
	if index == nil {
		var err error
		index, err = azure.BuildDirectoryIndex(ctx, detectorClient.Directory, detectorClient.Logger)
		if err != nil {
			return nil, err
		}
	}

	conflicts := []types.Conflict{}
	for _, resource := range planned {
		existing, found := index.Lookup(detectorClient.directoryType(resource.Type), resource.Name)
		if !found {
			detectorClient.Logger.Tracef("No existing resource named %s of type %s", resource.Name, resource.Type)
			continue
		}

		detail := "a resource with this name and type already exists in the target subscription"
		if existing.ID != "" {
			detail = fmt.Sprintf("already exists as %s", existing.ID)
		}

		conflicts = append(conflicts, newConflict(types.ConflictKindExistingResource, resource, detail, []string{
			fmt.Sprintf("Delete the existing resource %s manually before deploying", resource.Name),
			"Generate cleanup blocks and run them to remove the existing resource",
			fmt.Sprintf("Rename the planned resource %s", resource.Name),
		}))
	}

	return conflicts, nil
}

func (detectorClient *DetectorClient) checkSoftDeletedResources(ctx context.Context, planned []types.PlannedResource) ([]types.Conflict, error) {
	armTypes := detectorClient.softDeleteDirectoryTypes()
	if len(armTypes) == 0 {
		return []types.Conflict{}, nil
	}

	deleted, err := detectorClient.Directory.ListSoftDeletedResources(ctx, armTypes)
	if err != nil {
		return nil, err
	}

	deletedByTypeAndName := map[string]types.SoftDeletedResource{}
	for _, resource := range deleted {
		deletedByTypeAndName[strings.ToLower(resource.Type)+"|"+strings.ToLower(resource.Name)] = resource
	}

	conflicts := []types.Conflict{}
	for _, resource := range planned {
		if !detectorClient.SoftDeleteTypes[resource.Type] {
			continue
		}

		key := strings.ToLower(detectorClient.directoryType(resource.Type)) + "|" + strings.ToLower(resource.Name)
		softDeleted, found := deletedByTypeAndName[key]
		if !found {
			continue
		}

		detail := "a soft deleted resource is still holding this name"
		if softDeleted.ScheduledPurgeDate != "" {
			detail = fmt.Sprintf("a soft deleted resource is holding this name until its scheduled purge on %s", softDeleted.ScheduledPurgeDate)
		}

		conflicts = append(conflicts, newConflict(types.ConflictKindSoftDeleted, resource, detail, []string{
			fmt.Sprintf("Purge the soft deleted resource %s to release the name", resource.Name),
			fmt.Sprintf("Rename the planned resource %s", resource.Name),
		}))
	}

	return conflicts, nil
}

func (detectorClient *DetectorClient) checkLockedContainers(ctx context.Context, planned []types.PlannedResource) ([]types.Conflict, error) {
	containers := map[string]bool{}
	for _, resource := range planned {
		if resource.ContainerID != "" && !strings.Contains(resource.ContainerID, "${") {
			containers[resource.ContainerID] = true
		}
	}

	names := make([]string, 0, len(containers))
	for name := range containers {
		names = append(names, name)
	}
	sort.Strings(names)

	conflicts := []types.Conflict{}
	for _, containerName := range names {
		locks, found, err := detectorClient.Directory.ListContainerLocks(ctx, containerName)
		if err != nil {
			return nil, err
		}
		if !found {
			detectorClient.Logger.Debugf("Container %s does not exist yet, the deployment will create it", containerName)
			continue
		}
		if len(locks) == 0 {
			continue
		}

		descriptions := make([]string, 0, len(locks))
		for _, lock := range locks {
			descriptions = append(descriptions, fmt.Sprintf("%s (%s)", lock.LockName, lock.Level))
		}

		conflict := types.Conflict{
			ConflictID:   getIdentityHash(fmt.Sprintf("%s|%s", types.ConflictKindLockedContainer, containerName)),
			Kind:         types.ConflictKindLockedContainer,
			ResourceName: containerName,
			ResourceType: "azurerm_resource_group",
			ContainerID:  containerName,
			Detail:       fmt.Sprintf("locked by %s", strings.Join(descriptions, ", ")),
			RemediationActions: []string{
				fmt.Sprintf("Remove the locks on %s before deploying", containerName),
				"Deploy into a different resource group",
			},
		}
		conflicts = append(conflicts, conflict)
	}

	return conflicts, nil
}

// directoryType maps a declared type to its directory form, falling back to
// the declared type so unmapped types still compare against the listing.
func (detectorClient *DetectorClient) directoryType(resourceType string) string {
	if detectorClient.TypeMapper != nil {
		if armType, ok := detectorClient.TypeMapper.ARMTypeFor(resourceType); ok {
			return armType
		}
	}

	return resourceType
}

func (detectorClient *DetectorClient) softDeleteDirectoryTypes() []string {
	seen := map[string]bool{}
	armTypes := []string{}

	for resourceType, enabled := range detectorClient.SoftDeleteTypes {
		if !enabled {
			continue
		}
		armType := detectorClient.directoryType(resourceType)
		if seen[strings.ToLower(armType)] {
			continue
		}
		seen[strings.ToLower(armType)] = true
		armTypes = append(armTypes, armType)
	}

	sort.Strings(armTypes)

	return armTypes
}

func newConflict(kind types.ConflictKind, resource types.PlannedResource, detail string, remediationActions []string) types.Conflict {
	return types.Conflict{
		ConflictID:         getIdentityHash(fmt.Sprintf("%s|%s|%s|%s", kind, resource.Type, resource.Name, resource.ContainerID)),
		Kind:               kind,
		ResourceName:       resource.Name,
		ResourceType:       resource.Type,
		ContainerID:        resource.ContainerID,
		Detail:             detail,
		RemediationActions: remediationActions,
	}
}

func getIdentityHash(id string) string {
	sha256ID := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%x", sha256ID)[0:7]
}
