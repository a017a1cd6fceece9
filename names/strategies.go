package names

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rysweet/azure-tenant-grapher-sub012/resolver"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

const (
	defaultSuffix     = "-copy"
	randomTokenLength = 8
)

// proposeName builds a replacement for a conflicting name under the
// configured strategy.
func (validatorClient *ValidatorClient) proposeName(original string, rule resolver.NamingRule, hasRule bool) string {
	switch validatorClient.Strategy {
	case types.FixStrategyCustomPattern:
		return validatorClient.applyCustomPattern(original, rule, hasRule)
	case types.FixStrategyRandomSuffix:
		return fitToRule(original, randomToken(randomTokenLength), rule, hasRule)
	default:
		suffix := validatorClient.Suffix
		if suffix == "" {
			suffix = defaultSuffix
		}
		return fitToRule(original, suffix, rule, hasRule)
	}
}

// fitToRule appends a suffix and makes the result satisfy the rule. When the
// combined name is too long the original is trimmed, never the suffix, so the
// suffix stays recognizable. Lowercasing and hyphen stripping run last since
// they may alter the suffix itself for the strictest types.
func fitToRule(original string, suffix string, rule resolver.NamingRule, hasRule bool) string {
	name := original + suffix

	if hasRule && rule.MaxLength > 0 && len(name) > rule.MaxLength {
		keep := rule.MaxLength - len(suffix)
		if keep < 1 {
			keep = 1
		}
		if keep > len(original) {
			keep = len(original)
		}
		name = original[:keep] + suffix
	}

	if hasRule {
		if rule.Lowercase {
			name = strings.ToLower(name)
		}
		if rule.NoHyphens {
			name = strings.ReplaceAll(name, "-", "")
		}
	}

	return name
}

// applyCustomPattern renders the configured template. {name}, {random} and
// {date} are substituted, anything else stays literal.
func (validatorClient *ValidatorClient) applyCustomPattern(original string, rule resolver.NamingRule, hasRule bool) string {
	pattern := validatorClient.CustomPattern
	if pattern == "" {
		pattern = "{name}" + defaultSuffix
	}

	name := strings.ReplaceAll(pattern, "{name}", original)
	name = strings.ReplaceAll(name, "{random}", randomToken(randomTokenLength))
	name = strings.ReplaceAll(name, "{date}", time.Now().Format("20060102"))

	if hasRule {
		if rule.MaxLength > 0 && len(name) > rule.MaxLength {
			name = name[:rule.MaxLength]
		}
		if rule.Lowercase {
			name = strings.ToLower(name)
		}
		if rule.NoHyphens {
			name = strings.ReplaceAll(name, "-", "")
		}
	}

	return name
}

func randomToken(length int) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	if length > 0 && length < len(token) {
		token = token[:length]
	}

	return token
}
