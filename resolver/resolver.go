package resolver

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

const (
	subscriptionPrefix   = "/subscriptions/"
	resourceGroupSegment = "resourceGroups"
	placeholderMarker    = "${"
)

type IResolverClient interface {
	ResolveIdentifier(resource types.PlannedResource, containerID string, knownIdentifiers map[string]string) (string, bool)
	ResolveAll(planned []types.PlannedResource, knownIdentifiers map[string]string) (map[string]string, []types.ResolutionFailure)
	TranslateIdentifier(identifier string, sourceRoot string, targetRoot string) string
	ARMTypeFor(resourceType string) (string, bool)
	PatternFor(resourceType string) types.IdentifierPattern
}

type ResolverClient struct {
	TargetSubscriptionID string
	SourceSubscriptionID string
	PatternTable         map[string]PatternRule
	Logger               *logrus.Logger
}

func NewResolverClient(targetSubscriptionID string, sourceSubscriptionID string, patternOverrides map[string]PatternRule, logger *logrus.Logger) *ResolverClient {
	table := DefaultPatternTable()
	for resourceType, rule := range patternOverrides {
		table[resourceType] = rule
	}

	return &ResolverClient{
		TargetSubscriptionID: targetSubscriptionID,
		SourceSubscriptionID: sourceSubscriptionID,
		PatternTable:         table,
		Logger:               logger,
	}
}

// PatternFor returns the identifier pattern a resource type resolves under.
// Types without a mapping are treated as container scoped.
func (resolverClient *ResolverClient) PatternFor(resourceType string) types.IdentifierPattern {
	if rule, ok := resolverClient.PatternTable[resourceType]; ok {
		return rule.Pattern
	}

	return types.PatternContainerScoped
}

// ARMTypeFor returns the directory-side type a declared resource type maps to,
// and false when the table has no mapping for it.
func (resolverClient *ResolverClient) ARMTypeFor(resourceType string) (string, bool) {
	rule, ok := resolverClient.PatternTable[resourceType]
	if !ok || rule.ARMType == "" {
		return "", false
	}

	return rule.ARMType, true
}

// ResolveIdentifier constructs the identifier a planned resource would have in
// the target subscription. The second return is false when no trustworthy
// identifier can be built, in which case the first return is always empty.
func (resolverClient *ResolverClient) ResolveIdentifier(resource types.PlannedResource, containerID string, knownIdentifiers map[string]string) (string, bool) {
	if resource.Type == "" || resource.Name == "" {
		resolverClient.Logger.Debugf("Resource %q is missing a type or name, cannot resolve", resource.Key())
		return "", false
	}

	rule, mapped := resolverClient.PatternTable[resource.Type]
	if !mapped {
		rule = PatternRule{Pattern: types.PatternContainerScoped}
		resolverClient.Logger.Tracef("No pattern mapping for type %s, defaulting to %s", resource.Type, types.PatternContainerScoped)
	}

	// A captured identifier always wins over reconstruction. Declared
	// attributes may still hold unresolved references at this point.
	if identifier, ok := knownIdentifiers[resource.Key()]; ok && identifier != "" {
		if resolverClient.SourceSubscriptionID != "" && !strings.EqualFold(resolverClient.SourceSubscriptionID, resolverClient.TargetSubscriptionID) {
			identifier = resolverClient.TranslateIdentifier(identifier, resolverClient.SourceSubscriptionID, resolverClient.TargetSubscriptionID)
		}

		return identifier, true
	}

	if containerID == "" {
		containerID = resource.ContainerID
	}

	switch rule.Pattern {
	case types.PatternContainerScoped:
		return resolverClient.buildContainerScoped(resource, rule, containerID)
	case types.PatternChildOfParent:
		return resolverClient.buildChildOfParent(resource, rule, containerID)
	case types.PatternRootScoped:
		return resolverClient.buildRootScoped(resource, rule, containerID)
	case types.PatternAssociation:
		resolverClient.Logger.Tracef("Type %s associates two other resources and has no identifier of its own", resource.Type)
		return "", false
	default:
		resolverClient.Logger.Debugf("Unknown identifier pattern %q for type %s", rule.Pattern, resource.Type)
		return "", false
	}
}

// ResolveAll resolves every planned resource and splits the outcome into the
// identifiers that could be built, keyed by resource key, and the per-resource
// failures. Association types are skipped rather than reported, they are never
// independently addressable.
func (resolverClient *ResolverClient) ResolveAll(planned []types.PlannedResource, knownIdentifiers map[string]string) (map[string]string, []types.ResolutionFailure) {
	identifiers := map[string]string{}
	failures := []types.ResolutionFailure{}

	for _, resource := range planned {
		identifier, ok := resolverClient.ResolveIdentifier(resource, "", knownIdentifiers)
		if ok {
			identifiers[resource.Key()] = identifier
			continue
		}

		if resolverClient.PatternFor(resource.Type) == types.PatternAssociation {
			continue
		}

		reason := "identifier could not be constructed from the declared attributes"
		if resource.Type == "" || resource.Name == "" {
			reason = "resource is missing a type or name"
		}

		failures = append(failures, types.ResolutionFailure{
			ResourceType: resource.Type,
			ResourceName: resource.Name,
			Reason:       reason,
		})
	}

	if len(failures) > 0 {
		resolverClient.Logger.Warnf("Failed to resolve identifiers for %d of %d resources", len(failures), len(planned))
	}

	return identifiers, failures
}

func (resolverClient *ResolverClient) buildContainerScoped(resource types.PlannedResource, rule PatternRule, containerID string) (string, bool) {
	if isPlaceholder(resource.Name) {
		resolverClient.Logger.Debugf("Name of %s is an unresolved reference: %s", resource.Key(), resource.Name)
		return "", false
	}

	if rule.ContainerType {
		return fmt.Sprintf("%s%s/%s/%s", subscriptionPrefix, resolverClient.TargetSubscriptionID, resourceGroupSegment, resource.Name), true
	}

	if containerID == "" || isPlaceholder(containerID) {
		resolverClient.Logger.Debugf("Resource %s has no usable resource group: %q", resource.Key(), containerID)
		return "", false
	}

	return fmt.Sprintf("%s%s/%s/%s/providers/%s/%s",
		subscriptionPrefix, resolverClient.TargetSubscriptionID, resourceGroupSegment, containerID, armTypeOrDeclared(rule, resource.Type), resource.Name), true
}

func (resolverClient *ResolverClient) buildChildOfParent(resource types.PlannedResource, rule PatternRule, containerID string) (string, bool) {
	if isPlaceholder(resource.Name) {
		resolverClient.Logger.Debugf("Name of %s is an unresolved reference: %s", resource.Key(), resource.Name)
		return "", false
	}

	if containerID == "" || isPlaceholder(containerID) {
		resolverClient.Logger.Debugf("Resource %s has no usable resource group: %q", resource.Key(), containerID)
		return "", false
	}

	parentName, ok := stringAttribute(resource.Attributes, rule.ParentAttr)
	if !ok || parentName == "" {
		resolverClient.Logger.Debugf("Resource %s is missing parent attribute %s", resource.Key(), rule.ParentAttr)
		return "", false
	}

	if isPlaceholder(parentName) {
		resolverClient.Logger.Debugf("Parent of %s is an unresolved reference: %s", resource.Key(), parentName)
		return "", false
	}

	return fmt.Sprintf("%s%s/%s/%s/providers/%s/%s/%s/%s",
		subscriptionPrefix, resolverClient.TargetSubscriptionID, resourceGroupSegment, containerID, rule.ParentType, parentName, rule.ChildSegment, resource.Name), true
}

func (resolverClient *ResolverClient) buildRootScoped(resource types.PlannedResource, rule PatternRule, containerID string) (string, bool) {
	if isPlaceholder(resource.Name) {
		resolverClient.Logger.Debugf("Name of %s is an unresolved reference: %s", resource.Key(), resource.Name)
		return "", false
	}

	armType := armTypeOrDeclared(rule, resource.Type)

	scopeAttr := rule.ScopeAttr
	if scopeAttr == "" {
		scopeAttr = "scope"
	}

	if scope, ok := stringAttribute(resource.Attributes, scopeAttr); ok && scope != "" {
		if isPlaceholder(scope) {
			resolverClient.Logger.Debugf("Scope of %s is an unresolved reference: %s", resource.Key(), scope)
			return "", false
		}

		if strings.HasPrefix(scope, subscriptionPrefix) {
			return fmt.Sprintf("%s/providers/%s/%s", strings.TrimSuffix(scope, "/"), armType, resource.Name), true
		}

		resolverClient.Logger.Debugf("Scope %q of %s is not subscription rooted, falling back", scope, resource.Key())
	}

	if containerID != "" && !isPlaceholder(containerID) {
		return fmt.Sprintf("%s%s/%s/%s/providers/%s/%s",
			subscriptionPrefix, resolverClient.TargetSubscriptionID, resourceGroupSegment, containerID, armType, resource.Name), true
	}

	return fmt.Sprintf("%s%s/providers/%s/%s", subscriptionPrefix, resolverClient.TargetSubscriptionID, armType, resource.Name), true
}

func armTypeOrDeclared(rule PatternRule, declaredType string) string {
	if rule.ARMType != "" {
		return rule.ARMType
	}

	return declaredType
}

func isPlaceholder(value string) bool {
	return strings.Contains(value, placeholderMarker)
}

func stringAttribute(attributes map[string]any, key string) (string, bool) {
	if attributes == nil || key == "" {
		return "", false
	}

	value, ok := attributes[key]
	if !ok {
		return "", false
	}

	text, ok := value.(string)
	return text, ok
}
