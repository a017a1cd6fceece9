package names

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"

	"github.com/rysweet/azure-tenant-grapher-sub012/resolver"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

func TestFitToRule_AppendsSuffixWhenItFits(t *testing.T) {
	rule := resolver.NamingRule{MaxLength: 24}

	assert.Equal(t, fitToRule("vault1", "-copy", rule, true), "vault1-copy")
}

func TestFitToRule_TrimsOriginalNeverTheSuffix(t *testing.T) {
	rule := resolver.NamingRule{MaxLength: 24}
	original := strings.Repeat("a", 24)

	result := fitToRule(original, "-copy", rule, true)

	assert.Equal(t, len(result), 24)
	assert.True(t, strings.HasSuffix(result, "-copy"))
	assert.Equal(t, result, strings.Repeat("a", 19)+"-copy")
}

func TestFitToRule_LowercasesAndStripsHyphensLast(t *testing.T) {
	rule := resolver.NamingRule{MaxLength: 24, Lowercase: true, NoHyphens: true}

	assert.Equal(t, fitToRule("Acct1", "-copy", rule, true), "acct1copy")
}

func TestFitToRule_NoRulePassesThrough(t *testing.T) {
	assert.Equal(t, fitToRule("anything", "-copy", resolver.NamingRule{}, false), "anything-copy")
}

func TestFitToRule_SuffixLongerThanLimitKeepsOneCharacter(t *testing.T) {
	rule := resolver.NamingRule{MaxLength: 4}

	result := fitToRule("abcdef", "-copy", rule, true)

	assert.Equal(t, result, "a-copy")
}

func TestValidatorClient_ProposeName_SuffixDefaultsToCopy(t *testing.T) {
	validatorClient := &ValidatorClient{Strategy: types.FixStrategySuffix, Logger: logrus.New()}

	assert.Equal(t, validatorClient.proposeName("vault1", resolver.NamingRule{}, false), "vault1-copy")
}

func TestValidatorClient_ProposeName_RandomSuffixDiffersAcrossRuns(t *testing.T) {
	validatorClient := &ValidatorClient{Strategy: types.FixStrategyRandomSuffix, Logger: logrus.New()}

	first := validatorClient.proposeName("vault1", resolver.NamingRule{}, false)
	second := validatorClient.proposeName("vault1", resolver.NamingRule{}, false)

	assert.True(t, strings.HasPrefix(first, "vault1"))
	assert.Equal(t, len(first), len("vault1")+randomTokenLength)
	assert.NotEqual(t, first, second)
}

func TestValidatorClient_ProposeName_CustomPatternSubstitutions(t *testing.T) {
	validatorClient := &ValidatorClient{
		Strategy:      types.FixStrategyCustomPattern,
		CustomPattern: "{name}-{date}-{unknown}",
		Logger:        logrus.New(),
	}

	result := validatorClient.proposeName("vault1", resolver.NamingRule{}, false)

	assert.True(t, strings.HasPrefix(result, "vault1-"))
	assert.Contains(t, result, time.Now().Format("20060102"))
	assert.True(t, strings.HasSuffix(result, "-{unknown}"))
}

func TestValidatorClient_ProposeName_CustomPatternRandomToken(t *testing.T) {
	validatorClient := &ValidatorClient{
		Strategy:      types.FixStrategyCustomPattern,
		CustomPattern: "{name}{random}",
		Logger:        logrus.New(),
	}

	result := validatorClient.proposeName("vault1", resolver.NamingRule{}, false)

	assert.Regexp(t, regexp.MustCompile(`^vault1[0-9a-f]{8}$`), result)
}

func TestValidatorClient_ProposeName_CustomPatternTruncatesToLimit(t *testing.T) {
	validatorClient := &ValidatorClient{
		Strategy:      types.FixStrategyCustomPattern,
		CustomPattern: "{name}-{random}",
		Logger:        logrus.New(),
	}
	rule := resolver.NamingRule{MaxLength: 10}

	result := validatorClient.proposeName("longvaultname", rule, true)

	assert.Equal(t, len(result), 10)
}

func TestRandomToken_LengthAndAlphabet(t *testing.T) {
	token := randomToken(randomTokenLength)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), token)
}
