package resolver

import "github.com/rysweet/azure-tenant-grapher-sub012/types"

// PatternRule maps a declared resource type onto the identifier shape used to
// address it inside the target subscription. ContainerType marks the resource
// group type itself, which needs no enclosing container. ParentAttr names the
// declared attribute carrying the parent resource's name for child patterns.
type PatternRule struct {
	Pattern       types.IdentifierPattern
	ARMType       string
	ContainerType bool
	ParentType    string
	ParentAttr    string
	ChildSegment  string
	ScopeAttr     string
}

func DefaultPatternTable() map[string]PatternRule {
	return map[string]PatternRule{
		"azurerm_resource_group":          {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Resources/resourceGroups", ContainerType: true},
		"azurerm_virtual_network":         {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/virtualNetworks"},
		"azurerm_network_security_group":  {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/networkSecurityGroups"},
		"azurerm_public_ip":               {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/publicIPAddresses"},
		"azurerm_network_interface":       {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/networkInterfaces"},
		"azurerm_route_table":             {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/routeTables"},
		"azurerm_nat_gateway":             {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/natGateways"},
		"azurerm_private_dns_zone":        {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Network/privateDnsZones"},
		"azurerm_storage_account":         {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Storage/storageAccounts"},
		"azurerm_key_vault":               {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.KeyVault/vaults"},
		"azurerm_linux_virtual_machine":   {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Compute/virtualMachines"},
		"azurerm_windows_virtual_machine": {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Compute/virtualMachines"},
		"azurerm_managed_disk":            {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Compute/disks"},
		"azurerm_service_plan":            {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Web/serverFarms"},
		"azurerm_linux_web_app":           {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Web/sites"},
		"azurerm_windows_web_app":         {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.Web/sites"},
		"azurerm_container_registry":      {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.ContainerRegistry/registries"},
		"azurerm_log_analytics_workspace": {Pattern: types.PatternContainerScoped, ARMType: "Microsoft.OperationalInsights/workspaces"},

		"azurerm_subnet":                  {Pattern: types.PatternChildOfParent, ARMType: "Microsoft.Network/virtualNetworks/subnets", ParentType: "Microsoft.Network/virtualNetworks", ParentAttr: "virtual_network_name", ChildSegment: "subnets"},
		"azurerm_virtual_network_peering": {Pattern: types.PatternChildOfParent, ARMType: "Microsoft.Network/virtualNetworks/virtualNetworkPeerings", ParentType: "Microsoft.Network/virtualNetworks", ParentAttr: "virtual_network_name", ChildSegment: "virtualNetworkPeerings"},
		"azurerm_private_dns_a_record":    {Pattern: types.PatternChildOfParent, ARMType: "Microsoft.Network/privateDnsZones/A", ParentType: "Microsoft.Network/privateDnsZones", ParentAttr: "zone_name", ChildSegment: "A"},
		"azurerm_sql_database":            {Pattern: types.PatternChildOfParent, ARMType: "Microsoft.Sql/servers/databases", ParentType: "Microsoft.Sql/servers", ParentAttr: "server_name", ChildSegment: "databases"},
		"azurerm_sql_firewall_rule":       {Pattern: types.PatternChildOfParent, ARMType: "Microsoft.Sql/servers/firewallRules", ParentType: "Microsoft.Sql/servers", ParentAttr: "server_name", ChildSegment: "firewallRules"},

		"azurerm_role_assignment": {Pattern: types.PatternRootScoped, ARMType: "Microsoft.Authorization/roleAssignments", ScopeAttr: "scope"},
		"azurerm_role_definition": {Pattern: types.PatternRootScoped, ARMType: "Microsoft.Authorization/roleDefinitions", ScopeAttr: "scope"},
		"azurerm_management_lock": {Pattern: types.PatternRootScoped, ARMType: "Microsoft.Authorization/locks", ScopeAttr: "scope"},

		"azurerm_network_interface_security_group_association": {Pattern: types.PatternAssociation},
		"azurerm_subnet_network_security_group_association":    {Pattern: types.PatternAssociation},
		"azurerm_subnet_route_table_association":               {Pattern: types.PatternAssociation},
		"azurerm_nat_gateway_public_ip_association":            {Pattern: types.PatternAssociation},
	}
}
