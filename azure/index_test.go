package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

type mockDirectoryClient struct {
	Resources []types.DirectoryResource
	Err       error
	Called    bool
}

func (m *mockDirectoryClient) ListAllResources(ctx context.Context) ([]types.DirectoryResource, error) {
	m.Called = true
	return m.Resources, m.Err
}

func (m *mockDirectoryClient) ListSoftDeletedResources(ctx context.Context, armTypes []string) ([]types.SoftDeletedResource, error) {
	return nil, nil
}

func (m *mockDirectoryClient) ListContainerLocks(ctx context.Context, containerName string) ([]types.ContainerLock, bool, error) {
	return nil, false, nil
}

func (m *mockDirectoryClient) CheckNameAvailability(ctx context.Context, armType string, name string) (bool, error) {
	return true, nil
}

func (m *mockDirectoryClient) PurgeSoftDeletedResource(ctx context.Context, armType string, name string, location string) error {
	return nil
}

func TestNewDirectoryIndex_LookupIsCaseInsensitive(t *testing.T) {
	index := NewDirectoryIndex([]types.DirectoryResource{
		{ID: "/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.KeyVault/vaults/Vault1", Type: "Microsoft.KeyVault/vaults", Name: "Vault1", ContainerID: "rg1"},
	})

	resource, found := index.Lookup("microsoft.keyvault/vaults", "vault1")

	assert.True(t, found)
	assert.Equal(t, resource.Name, "Vault1")
	assert.Equal(t, resource.ContainerID, "rg1")
	assert.Equal(t, index.Len(), 1)
}

func TestNewDirectoryIndex_MissLeavesZeroValue(t *testing.T) {
	index := NewDirectoryIndex([]types.DirectoryResource{
		{Type: "Microsoft.KeyVault/vaults", Name: "vault1"},
	})

	resource, found := index.Lookup("Microsoft.KeyVault/vaults", "vault2")
	assert.False(t, found)
	assert.Empty(t, resource.ID)

	_, found = index.Lookup("Microsoft.Storage/storageAccounts", "vault1")
	assert.False(t, found)
}

func TestBuildDirectoryIndex_ListsOnce(t *testing.T) {
	directory := &mockDirectoryClient{Resources: []types.DirectoryResource{
		{Type: "Microsoft.Network/virtualNetworks", Name: "vnet1"},
		{Type: "Microsoft.Network/virtualNetworks", Name: "vnet2"},
	}}

	index, err := BuildDirectoryIndex(context.Background(), directory, logrus.New())

	assert.NoError(t, err)
	assert.True(t, directory.Called)
	assert.Equal(t, index.Len(), 2)
}

func TestBuildDirectoryIndex_PropagatesListingError(t *testing.T) {
	directory := &mockDirectoryClient{Err: errors.New("listing failed")}

	index, err := BuildDirectoryIndex(context.Background(), directory, logrus.New())

	assert.Error(t, err)
	assert.Nil(t, index)
}

func TestCloudConfiguration_KnownClouds(t *testing.T) {
	for _, name := range []string{"", "public", "AzureCloud", "usgovernment", "AzureChinaCloud"} {
		_, err := cloudConfiguration(name)
		assert.NoError(t, err, name)
	}
}

func TestCloudConfiguration_UnknownCloud(t *testing.T) {
	_, err := cloudConfiguration("moon")

	assert.Error(t, err)
}
