package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armlocks"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

const (
	vaultType          = "Microsoft.KeyVault/vaults"
	storageAccountType = "Microsoft.Storage/storageAccounts"

	directoryQuery = "Resources | project id, type, name, resourceGroup"
)

// IDirectoryClient is the read side of the target subscription, plus the one
// write used when a caller explicitly asks for soft deleted vaults to be
// purged. Every method returns errors instead of aborting so callers can
// degrade a failed check to a warning.
type IDirectoryClient interface {
	ListAllResources(ctx context.Context) ([]types.DirectoryResource, error)
	ListSoftDeletedResources(ctx context.Context, armTypes []string) ([]types.SoftDeletedResource, error)
	ListContainerLocks(ctx context.Context, containerName string) ([]types.ContainerLock, bool, error)
	CheckNameAvailability(ctx context.Context, armType string, name string) (bool, error)
	PurgeSoftDeletedResource(ctx context.Context, armType string, name string, location string) error
}

type DirectoryClient struct {
	SubscriptionID string
	CloudName      string
	MaxRetries     uint64
	Logger         *logrus.Logger

	initOnce       sync.Once
	initErr        error
	graphClient    *armresourcegraph.Client
	groupsClient   *armresources.ResourceGroupsClient
	locksClient    *armlocks.ManagementLocksClient
	vaultsClient   *armkeyvault.VaultsClient
	accountsClient *armstorage.AccountsClient
}

func NewDirectoryClient(subscriptionID string, cloudName string, maxRetries uint64, logger *logrus.Logger) *DirectoryClient {
	return &DirectoryClient{
		SubscriptionID: subscriptionID,
		CloudName:      cloudName,
		MaxRetries:     maxRetries,
		Logger:         logger,
	}
}

// init builds the credential and the per-service clients on first use. The
// sync.Once makes lazy construction safe when checks fan out concurrently.
func (directory *DirectoryClient) init() error {
	directory.initOnce.Do(func() {
		cloudConfig, err := cloudConfiguration(directory.CloudName)
		if err != nil {
			directory.initErr = err
			return
		}

		credential, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
			ClientOptions: policy.ClientOptions{Cloud: cloudConfig},
		})
		if err != nil {
			directory.initErr = fmt.Errorf("creating credential: %w", err)
			return
		}

		clientOptions := &arm.ClientOptions{ClientOptions: policy.ClientOptions{Cloud: cloudConfig}}

		if directory.graphClient, err = armresourcegraph.NewClient(credential, clientOptions); err != nil {
			directory.initErr = fmt.Errorf("creating resource graph client: %w", err)
			return
		}
		if directory.groupsClient, err = armresources.NewResourceGroupsClient(directory.SubscriptionID, credential, clientOptions); err != nil {
			directory.initErr = fmt.Errorf("creating resource groups client: %w", err)
			return
		}
		if directory.locksClient, err = armlocks.NewManagementLocksClient(directory.SubscriptionID, credential, clientOptions); err != nil {
			directory.initErr = fmt.Errorf("creating locks client: %w", err)
			return
		}
		if directory.vaultsClient, err = armkeyvault.NewVaultsClient(directory.SubscriptionID, credential, clientOptions); err != nil {
			directory.initErr = fmt.Errorf("creating vaults client: %w", err)
			return
		}
		if directory.accountsClient, err = armstorage.NewAccountsClient(directory.SubscriptionID, credential, clientOptions); err != nil {
			directory.initErr = fmt.Errorf("creating storage accounts client: %w", err)
		}
	})

	return directory.initErr
}

func cloudConfiguration(name string) (cloud.Configuration, error) {
	switch strings.ToLower(name) {
	case "", "public", "azurepublic", "azurecloud":
		return cloud.AzurePublic, nil
	case "government", "usgovernment", "azuregovernment", "azureusgovernment":
		return cloud.AzureGovernment, nil
	case "china", "azurechina", "azurechinacloud":
		return cloud.AzureChina, nil
	default:
		return cloud.Configuration{}, fmt.Errorf("unknown cloud %q", name)
	}
}

// retry wraps one remote call in exponential backoff. Not-found outcomes are
// marked permanent by the callers so they surface immediately.
func (directory *DirectoryClient) retry(ctx context.Context, operation string, call func() error) error {
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), directory.MaxRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := call()
		if err != nil && !isNotFound(err) {
			directory.Logger.Debugf("%s failed on attempt %d: %v", operation, attempt, err)
		}
		return err
	}, retryPolicy)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	return nil
}

func isNotFound(err error) bool {
	var responseError *azcore.ResponseError
	return errors.As(err, &responseError) && responseError.StatusCode == http.StatusNotFound
}

// ListAllResources pages through a resource graph query covering the whole
// subscription and returns one flat listing.
func (directory *DirectoryClient) ListAllResources(ctx context.Context) ([]types.DirectoryResource, error) {
	if err := directory.init(); err != nil {
		return nil, err
	}

	directory.Logger.Infof("Listing resources in subscription %s", directory.SubscriptionID)
	directory.Logger.Tracef("Query: %s", directoryQuery)

	resources := []types.DirectoryResource{}
	var skipToken *string

	for {
		queryRequest := armresourcegraph.QueryRequest{
			Query:         to.Ptr(directoryQuery),
			Subscriptions: []*string{to.Ptr(directory.SubscriptionID)},
			Options: &armresourcegraph.QueryRequestOptions{
				ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
				SkipToken:    skipToken,
			},
		}

		var response armresourcegraph.ClientResourcesResponse
		err := directory.retry(ctx, "resource graph query", func() error {
			var err error
			response, err = directory.graphClient.Resources(ctx, queryRequest, nil)
			return err
		})
		if err != nil {
			return nil, err
		}

		rows, ok := response.Data.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected resource graph payload of type %T", response.Data)
		}

		for _, row := range rows {
			fields, ok := row.(map[string]any)
			if !ok {
				continue
			}

			resource := types.DirectoryResource{
				ID:          stringField(fields, "id"),
				Type:        stringField(fields, "type"),
				Name:        stringField(fields, "name"),
				ContainerID: stringField(fields, "resourceGroup"),
			}
			directory.Logger.Tracef("Found resource %s", resource.ID)
			resources = append(resources, resource)
		}

		if response.SkipToken == nil || *response.SkipToken == "" {
			break
		}
		skipToken = response.SkipToken
	}

	directory.Logger.Infof("Found %d resources", len(resources))

	return resources, nil
}

// ListSoftDeletedResources returns the soft deleted entries for every type in
// armTypes. Types without a recoverable delete state contribute nothing.
func (directory *DirectoryClient) ListSoftDeletedResources(ctx context.Context, armTypes []string) ([]types.SoftDeletedResource, error) {
	if err := directory.init(); err != nil {
		return nil, err
	}

	deleted := []types.SoftDeletedResource{}

	for _, armType := range armTypes {
		if !strings.EqualFold(armType, vaultType) {
			directory.Logger.Debugf("No soft delete listing available for type %s", armType)
			continue
		}

		vaults, err := directory.listSoftDeletedVaults(ctx)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, vaults...)
	}

	return deleted, nil
}

func (directory *DirectoryClient) listSoftDeletedVaults(ctx context.Context) ([]types.SoftDeletedResource, error) {
	directory.Logger.Info("Listing soft deleted vaults")

	deleted := []types.SoftDeletedResource{}
	pager := directory.vaultsClient.NewListDeletedPager(nil)

	for pager.More() {
		var page armkeyvault.VaultsClientListDeletedResponse
		err := directory.retry(ctx, "listing soft deleted vaults", func() error {
			var err error
			page, err = pager.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, vault := range page.Value {
			if vault == nil || vault.Name == nil {
				continue
			}

			resource := types.SoftDeletedResource{Type: vaultType, Name: *vault.Name}
			if vault.Properties != nil {
				if vault.Properties.Location != nil {
					resource.Location = *vault.Properties.Location
				}
				if vault.Properties.ScheduledPurgeDate != nil {
					resource.ScheduledPurgeDate = vault.Properties.ScheduledPurgeDate.Format("2006-01-02")
				}
			}

			directory.Logger.Tracef("Found soft deleted vault %s", resource.Name)
			deleted = append(deleted, resource)
		}
	}

	directory.Logger.Infof("Found %d soft deleted vaults", len(deleted))

	return deleted, nil
}

// ListContainerLocks returns the locks on a resource group. The second return
// is false when the group does not exist yet, which is an ordinary outcome
// for a group the deployment is about to create, not an error.
func (directory *DirectoryClient) ListContainerLocks(ctx context.Context, containerName string) ([]types.ContainerLock, bool, error) {
	if err := directory.init(); err != nil {
		return nil, false, err
	}

	var existence armresources.ResourceGroupsClientCheckExistenceResponse
	err := directory.retry(ctx, "checking resource group existence", func() error {
		var err error
		existence, err = directory.groupsClient.CheckExistence(ctx, containerName, nil)
		if isNotFound(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	if err != nil && !isNotFound(err) {
		return nil, false, err
	}
	if err != nil || !existence.Success {
		directory.Logger.Debugf("Resource group %s does not exist yet, nothing to lock", containerName)
		return []types.ContainerLock{}, false, nil
	}

	locks := []types.ContainerLock{}
	pager := directory.locksClient.NewListAtResourceGroupLevelPager(containerName, nil)

	for pager.More() {
		var page armlocks.ManagementLocksClientListAtResourceGroupLevelResponse
		err := directory.retry(ctx, "listing resource group locks", func() error {
			var err error
			page, err = pager.NextPage(ctx)
			if isNotFound(err) {
				return backoff.Permanent(err)
			}
			return err
		})
		if err != nil {
			if isNotFound(err) {
				directory.Logger.Debugf("Resource group %s disappeared while listing locks", containerName)
				return []types.ContainerLock{}, false, nil
			}
			return nil, false, err
		}

		for _, lock := range page.Value {
			if lock == nil {
				continue
			}

			containerLock := types.ContainerLock{Level: types.LockLevelNotSpecified}
			if lock.Name != nil {
				containerLock.LockName = *lock.Name
			}
			if lock.Properties != nil && lock.Properties.Level != nil {
				containerLock.Level = types.LockLevel(*lock.Properties.Level)
			}

			directory.Logger.Tracef("Found lock %s (%s) on %s", containerLock.LockName, containerLock.Level, containerName)
			locks = append(locks, containerLock)
		}
	}

	return locks, true, nil
}

// CheckNameAvailability asks the service whether a name is free anywhere, not
// just in this subscription. Types without an availability endpoint report
// available, a later apply is the authority for those.
func (directory *DirectoryClient) CheckNameAvailability(ctx context.Context, armType string, name string) (bool, error) {
	if err := directory.init(); err != nil {
		return false, err
	}

	switch {
	case strings.EqualFold(armType, storageAccountType):
		var response armstorage.AccountsClientCheckNameAvailabilityResponse
		err := directory.retry(ctx, "checking storage account name availability", func() error {
			var err error
			response, err = directory.accountsClient.CheckNameAvailability(ctx, armstorage.AccountCheckNameAvailabilityParameters{
				Name: to.Ptr(name),
				Type: to.Ptr(storageAccountType),
			}, nil)
			return err
		})
		if err != nil {
			return false, err
		}
		return response.NameAvailable != nil && *response.NameAvailable, nil

	case strings.EqualFold(armType, vaultType):
		var response armkeyvault.VaultsClientCheckNameAvailabilityResponse
		err := directory.retry(ctx, "checking vault name availability", func() error {
			var err error
			response, err = directory.vaultsClient.CheckNameAvailability(ctx, armkeyvault.VaultCheckNameAvailabilityParameters{
				Name: to.Ptr(name),
				Type: to.Ptr(vaultType),
			}, nil)
			return err
		})
		if err != nil {
			return false, err
		}
		return response.NameAvailable != nil && *response.NameAvailable, nil

	default:
		directory.Logger.Debugf("No name availability endpoint for type %s, assuming available", armType)
		return true, nil
	}
}

// PurgeSoftDeletedResource permanently removes a soft deleted vault so its
// name can be reused. Only invoked when the caller explicitly asked for it.
func (directory *DirectoryClient) PurgeSoftDeletedResource(ctx context.Context, armType string, name string, location string) error {
	if err := directory.init(); err != nil {
		return err
	}

	if !strings.EqualFold(armType, vaultType) {
		return fmt.Errorf("purge is not supported for type %s", armType)
	}

	directory.Logger.Infof("Purging soft deleted vault %s in %s", name, location)

	poller, err := directory.vaultsClient.BeginPurgeDeleted(ctx, name, location, nil)
	if err != nil {
		return fmt.Errorf("starting purge of vault %s: %w", name, err)
	}

	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("purging vault %s: %w", name, err)
	}

	directory.Logger.Infof("Purged soft deleted vault %s", name)

	return nil
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)
	return value
}
