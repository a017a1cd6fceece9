package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

// NamingRule is the per-type name syntax contract checked before any lookup
// against the directory happens. MaxLength is enforced separately from the
// pattern so rename proposals know how much room they have to work with.
type NamingRule struct {
	Pattern   *regexp.Regexp
	MaxLength int
	Lowercase bool
	NoHyphens bool
}

// Matches reports whether a name satisfies the rule.
func (namingRule NamingRule) Matches(name string) bool {
	if namingRule.MaxLength > 0 && len(name) > namingRule.MaxLength {
		return false
	}

	if namingRule.Lowercase && name != strings.ToLower(name) {
		return false
	}

	if namingRule.NoHyphens && strings.Contains(name, "-") {
		return false
	}

	if namingRule.Pattern != nil && !namingRule.Pattern.MatchString(name) {
		return false
	}

	return true
}

func DefaultNamingRules() map[string]NamingRule {
	return map[string]NamingRule{
		"azurerm_storage_account":         {Pattern: regexp.MustCompile(`^[a-z0-9]{3,24}$`), MaxLength: 24, Lowercase: true, NoHyphens: true},
		"azurerm_key_vault":               {Pattern: regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]{1,22}[a-zA-Z0-9]$`), MaxLength: 24},
		"azurerm_container_registry":      {Pattern: regexp.MustCompile(`^[a-zA-Z0-9]{5,50}$`), MaxLength: 50, NoHyphens: true},
		"azurerm_resource_group":          {Pattern: regexp.MustCompile(`^[-\w\._\(\)]{1,90}$`), MaxLength: 90},
		"azurerm_virtual_network":         {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,62}[a-zA-Z0-9_]$`), MaxLength: 64},
		"azurerm_network_security_group":  {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,78}[a-zA-Z0-9_]$`), MaxLength: 80},
		"azurerm_subnet":                  {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,78}[a-zA-Z0-9_]$`), MaxLength: 80},
		"azurerm_public_ip":               {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,78}[a-zA-Z0-9_]$`), MaxLength: 80},
		"azurerm_network_interface":       {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,78}[a-zA-Z0-9_]$`), MaxLength: 80},
		"azurerm_linux_virtual_machine":   {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,62}[a-zA-Z0-9]$`), MaxLength: 64},
		"azurerm_windows_virtual_machine": {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,13}[a-zA-Z0-9]$`), MaxLength: 15},
		"azurerm_linux_web_app":           {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,58}[a-zA-Z0-9]$`), MaxLength: 60},
		"azurerm_windows_web_app":         {Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,58}[a-zA-Z0-9]$`), MaxLength: 60},
	}
}

// DefaultGloballyUniqueTypes lists the types whose names are claimed across
// all tenants, not just inside one resource group.
func DefaultGloballyUniqueTypes() map[string]bool {
	return map[string]bool{
		"azurerm_storage_account":    true,
		"azurerm_key_vault":          true,
		"azurerm_container_registry": true,
		"azurerm_linux_web_app":      true,
		"azurerm_windows_web_app":    true,
	}
}

// DefaultSoftDeleteTypes lists the types whose names stay reserved for a
// retention period after deletion.
func DefaultSoftDeleteTypes() map[string]bool {
	return map[string]bool{
		"azurerm_key_vault": true,
	}
}

var disallowedTokens = []string{"${", "%{"}

// CheckDisallowedPattern rejects values carrying template control tokens that
// the deployment tooling would interpolate instead of using literally.
func CheckDisallowedPattern(value string) error {
	for _, token := range disallowedTokens {
		if strings.Contains(value, token) {
			return types.NewPreflightError(types.ErrorKindDisallowedPattern, fmt.Sprintf("value %q contains disallowed pattern %q", value, token), nil)
		}
	}

	return nil
}
