package resolver

import "strings"

// TranslateIdentifier rewrites the subscription segment of an identifier from
// sourceRoot to targetRoot. Identifiers under any other subscription, and
// identifiers that were already translated, come back unchanged, so the
// operation is idempotent.
func (resolverClient *ResolverClient) TranslateIdentifier(identifier string, sourceRoot string, targetRoot string) string {
	if identifier == "" || sourceRoot == "" || targetRoot == "" {
		return identifier
	}

	rest, hasPrefix := strings.CutPrefix(identifier, subscriptionPrefix)
	if !hasPrefix {
		return identifier
	}

	segment, remainder, hasRemainder := strings.Cut(rest, "/")
	if !strings.EqualFold(segment, sourceRoot) {
		return identifier
	}

	if !hasRemainder {
		return subscriptionPrefix + targetRoot
	}

	return subscriptionPrefix + targetRoot + "/" + remainder
}
