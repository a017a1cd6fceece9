package topology

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/json"
	"github.com/rysweet/azure-tenant-grapher-sub012/resolver"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

type ITopologyClient interface {
	LoadPlannedResources(fileName string) ([]types.PlannedResource, []types.ResolutionFailure)
	LoadKnownIdentifiers(fileName string, planned []types.PlannedResource) map[string]string
	PlannedFromConfig(config types.InfraConfig) []types.PlannedResource
}

type TopologyClient struct {
	JsonClient json.IJsonClient
	Logger     *logrus.Logger
}

func NewTopologyClient(jsonClient json.IJsonClient, logger *logrus.Logger) *TopologyClient {
	return &TopologyClient{
		JsonClient: jsonClient,
		Logger:     logger,
	}
}

// LoadPlannedResources reads the planned-resources export produced by the
// upstream generator. Entries that cannot be read are reported as resolution
// failures and skipped, only a missing or unreadable file aborts the run.
func (topologyClient *TopologyClient) LoadPlannedResources(fileName string) ([]types.PlannedResource, []types.ResolutionFailure) {
	payload := topologyClient.JsonClient.Import(fileName)

	rawResources, ok := payload["resources"].([]any)
	if !ok {
		topologyClient.Logger.Fatalf("Topology file %s does not contain a resources list", fileName)
	}

	planned := []types.PlannedResource{}
	failures := []types.ResolutionFailure{}

	for position, rawResource := range rawResources {
		resourceMap, ok := rawResource.(map[string]any)
		if !ok {
			topologyClient.Logger.Debugf("Skipping topology entry %d, not an object", position)
			failures = append(failures, types.ResolutionFailure{
				Reason: fmt.Sprintf("topology entry %d is not an object", position),
			})
			continue
		}

		resource := types.PlannedResource{
			Type:        stringField(resourceMap, "type"),
			Name:        stringField(resourceMap, "name"),
			ContainerID: stringField(resourceMap, "resourceGroup"),
			OriginalID:  stringField(resourceMap, "originalId"),
		}

		if values, ok := resourceMap["values"].(map[string]any); ok {
			resource.Attributes = values
		}

		if resource.ContainerID == "" {
			resource.ContainerID = stringField(resource.Attributes, "resource_group_name")
		}

		if resource.Type == "" || resource.Name == "" {
			topologyClient.Logger.Debugf("Skipping topology entry %d, missing a type or name", position)
			failures = append(failures, types.ResolutionFailure{
				ResourceType: resource.Type,
				ResourceName: resource.Name,
				Reason:       "resource is missing a type or name",
			})
			continue
		}

		if err := resolver.CheckDisallowedPattern(resource.Type); err != nil {
			topologyClient.Logger.Warnf("Rejecting resource %s: %v", resource.Name, err)
			failures = append(failures, types.ResolutionFailure{
				ResourceType: resource.Type,
				ResourceName: resource.Name,
				Reason:       err.Error(),
			})
			continue
		}

		planned = append(planned, resource)
		topologyClient.Logger.Tracef("Adding Resource: %s", resource.Key())
	}

	topologyClient.Logger.Infof("Loaded %d planned resources from %s", len(planned), fileName)
	if len(failures) > 0 {
		topologyClient.Logger.Warnf("Skipped %d topology entries that could not be read", len(failures))
	}

	return planned, failures
}

// LoadKnownIdentifiers builds the captured-identifier lookup used by the
// resolver. Identifiers embedded in the topology itself seed the map, entries
// from the capture file overlay them when a file name is given.
func (topologyClient *TopologyClient) LoadKnownIdentifiers(fileName string, planned []types.PlannedResource) map[string]string {
	knownIdentifiers := map[string]string{}

	for _, resource := range planned {
		if resource.OriginalID != "" {
			knownIdentifiers[resource.Key()] = resource.OriginalID
		}
	}

	if fileName != "" {
		payload := topologyClient.JsonClient.Import(fileName)
		for key, rawIdentifier := range payload {
			identifier, ok := rawIdentifier.(string)
			if !ok {
				topologyClient.Logger.Debugf("Skipping captured identifier %s, not a string", key)
				continue
			}
			knownIdentifiers[key] = identifier
		}
	}

	topologyClient.Logger.Infof("Loaded %d captured identifiers", len(knownIdentifiers))
	return knownIdentifiers
}

// PlannedFromConfig derives planned resources from the declaration tree so the
// validator can run when no topology export is available. Declaration keys
// supply type and name, so entries here never fail the way topology entries
// can. Keys are walked in sorted order to keep report ordering stable.
func (topologyClient *TopologyClient) PlannedFromConfig(config types.InfraConfig) []types.PlannedResource {
	planned := []types.PlannedResource{}

	resourceTypes := make([]string, 0, len(config))
	for resourceType := range config {
		resourceTypes = append(resourceTypes, resourceType)
	}
	sort.Strings(resourceTypes)

	for _, resourceType := range resourceTypes {
		declarations, ok := config[resourceType].(map[string]any)
		if !ok {
			topologyClient.Logger.Debugf("Skipping config section %s, not a declaration map", resourceType)
			continue
		}

		resourceNames := make([]string, 0, len(declarations))
		for resourceName := range declarations {
			resourceNames = append(resourceNames, resourceName)
		}
		sort.Strings(resourceNames)

		for _, resourceName := range resourceNames {
			resource := types.PlannedResource{
				Type: resourceType,
				Name: resourceName,
			}

			if attributes, ok := declarations[resourceName].(map[string]any); ok {
				resource.Attributes = attributes
				resource.ContainerID = stringField(attributes, "resource_group_name")
			}

			planned = append(planned, resource)
			topologyClient.Logger.Tracef("Adding Resource: %s", resource.Key())
		}
	}

	topologyClient.Logger.Infof("Derived %d planned resources from the config", len(planned))
	return planned
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return value
}
