package azure

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

// DirectoryIndex is a point-in-time snapshot of one subscription listing,
// keyed for case-insensitive lookup by type and name. Build it once per run
// and hand it to every check that needs it, it is never refreshed in place.
type DirectoryIndex struct {
	byTypeAndName map[string]map[string]types.DirectoryResource
	total         int
}

func NewDirectoryIndex(resources []types.DirectoryResource) *DirectoryIndex {
	index := &DirectoryIndex{byTypeAndName: map[string]map[string]types.DirectoryResource{}}

	for _, resource := range resources {
		typeKey := strings.ToLower(resource.Type)
		names, ok := index.byTypeAndName[typeKey]
		if !ok {
			names = map[string]types.DirectoryResource{}
			index.byTypeAndName[typeKey] = names
		}
		names[strings.ToLower(resource.Name)] = resource
		index.total++
	}

	return index
}

// BuildDirectoryIndex runs the full listing once and indexes the result.
func BuildDirectoryIndex(ctx context.Context, directory IDirectoryClient, logger *logrus.Logger) (*DirectoryIndex, error) {
	resources, err := directory.ListAllResources(ctx)
	if err != nil {
		return nil, err
	}

	index := NewDirectoryIndex(resources)
	logger.Debugf("Indexed %d resources across %d types", index.Len(), len(index.byTypeAndName))

	return index, nil
}

// Lookup finds a resource by type and name, both matched case-insensitively.
func (index *DirectoryIndex) Lookup(armType string, name string) (types.DirectoryResource, bool) {
	names, ok := index.byTypeAndName[strings.ToLower(armType)]
	if !ok {
		return types.DirectoryResource{}, false
	}

	resource, ok := names[strings.ToLower(name)]
	return resource, ok
}

func (index *DirectoryIndex) Len() int {
	return index.total
}
