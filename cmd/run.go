/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/azure"
	"github.com/rysweet/azure-tenant-grapher-sub012/conflicts"
	"github.com/rysweet/azure-tenant-grapher-sub012/csv"
	"github.com/rysweet/azure-tenant-grapher-sub012/filepathparser"
	"github.com/rysweet/azure-tenant-grapher-sub012/hcl"
	"github.com/rysweet/azure-tenant-grapher-sub012/json"
	"github.com/rysweet/azure-tenant-grapher-sub012/names"
	"github.com/rysweet/azure-tenant-grapher-sub012/report"
	"github.com/rysweet/azure-tenant-grapher-sub012/resolver"
	"github.com/rysweet/azure-tenant-grapher-sub012/topology"
	"github.com/rysweet/azure-tenant-grapher-sub012/types"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.New()

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check a generated deployment for conflicts against the target subscription",
	Long: `The run command performs the preflight workflow:

1. Loads the planned resources from the generator's topology export (or derives
   them from the infrastructure config)
2. Detects collisions with existing resources, soft-deleted name holders and
   locked resource groups in the target subscription
3. Validates planned names against their type rules and optionally renames
   conflicting ones in a copy of the config
4. Resolves the Azure resource ID every planned resource would get and writes
   import blocks for the deployment step
5. Writes conflicts.csv, report.txt and the JSON artifacts for operator review

Examples:
  # Detect conflicts for a generated deployment
  tenant-preflight run --targetSubscriptionID 00000000-0000-0000-0000-000000000000 --topologyFile topology.json --configFile config.json

  # Rename conflicting names automatically and purge soft-deleted holders
  tenant-preflight run --targetSubscriptionID 00000000-0000-0000-0000-000000000000 --topologyFile topology.json --configFile config.json --autoFix --autoPurge

  # Offline run, syntax rules and identifier resolution only
  tenant-preflight run --targetSubscriptionID 00000000-0000-0000-0000-000000000000 --topologyFile topology.json --offline`,
	Run: func(cmd *cobra.Command, args []string) {
		logVerbosity, _ := cmd.Flags().GetString("verbosity")
		logLevel, err := logrus.ParseLevel(logVerbosity)
		if err != nil {
			log.Fatalf("Invalid log level: %s", logVerbosity)
		}
		log.SetLevel(logLevel)
		log.SetFormatter(&logrus.TextFormatter{})
		if viper.GetBool("structuredLogs") {
			log.SetFormatter(&logrus.JSONFormatter{})
		}

		for key, value := range viper.GetViper().AllSettings() {
			log.Debugf("Command Flag: %s = %s", key, value)
		}

		workingFolderPath, err := filepathparser.ParsePath(viper.GetString("workingFolderPath"))
		if err != nil {
			log.Fatalf("Error getting working folder path: %v", err)
		}
		if err := filepathparser.EnsureDir(workingFolderPath); err != nil {
			log.Fatalf("Error creating working folder: %v", err)
		}

		targetSubscriptionID := viper.GetString("targetSubscriptionID")
		if targetSubscriptionID == "" {
			log.Fatal("targetSubscriptionID is required")
		}

		topologyFile := viper.GetString("topologyFile")
		configFile := viper.GetString("configFile")
		if topologyFile == "" && configFile == "" {
			log.Fatal("At least one of topologyFile and configFile is required")
		}

		fixStrategy := types.FixStrategy(viper.GetString("fixStrategy"))
		if !fixStrategy.IsValidFixStrategy() {
			log.Fatalf("Invalid fix strategy: %s", fixStrategy)
		}

		patternOverrides := map[string]resolver.PatternRule{}
		if viper.InConfig("identifierPatterns") {
			identifierPatternsRaw := viper.Get("identifierPatterns").([]any)
			for _, rawPattern := range identifierPatternsRaw {
				patternMap := rawPattern.(map[string]any)
				pattern := types.IdentifierPattern(patternMap["pattern"].(string))
				if !pattern.IsValidIdentifierPattern() {
					log.Fatalf("Invalid identifier pattern: %s", pattern)
				}

				rule := resolver.PatternRule{Pattern: pattern}
				if value, ok := patternMap["armtype"]; ok {
					rule.ARMType = cast.ToString(value)
				}
				if value, ok := patternMap["containertype"]; ok {
					rule.ContainerType = cast.ToBool(value)
				}
				if value, ok := patternMap["parenttype"]; ok {
					rule.ParentType = cast.ToString(value)
				}
				if value, ok := patternMap["parentattr"]; ok {
					rule.ParentAttr = cast.ToString(value)
				}
				if value, ok := patternMap["childsegment"]; ok {
					rule.ChildSegment = cast.ToString(value)
				}
				if value, ok := patternMap["scopeattr"]; ok {
					rule.ScopeAttr = cast.ToString(value)
				}
				patternOverrides[patternMap["type"].(string)] = rule
			}
		}

		namingRules := resolver.DefaultNamingRules()
		if viper.InConfig("namingRules") {
			namingRulesRaw := viper.Get("namingRules").([]any)
			for _, rawRule := range namingRulesRaw {
				ruleMap := rawRule.(map[string]any)
				rule := resolver.NamingRule{}
				if value, ok := ruleMap["pattern"]; ok {
					pattern, err := regexp.Compile(cast.ToString(value))
					if err != nil {
						log.Fatalf("Invalid naming rule pattern for %s: %v", ruleMap["type"], err)
					}
					rule.Pattern = pattern
				}
				if value, ok := ruleMap["maxlength"]; ok {
					rule.MaxLength = cast.ToInt(value)
				}
				if value, ok := ruleMap["lowercase"]; ok {
					rule.Lowercase = cast.ToBool(value)
				}
				if value, ok := ruleMap["nohyphens"]; ok {
					rule.NoHyphens = cast.ToBool(value)
				}
				namingRules[ruleMap["type"].(string)] = rule
			}
		}

		globallyUniqueTypes := resolver.DefaultGloballyUniqueTypes()
		for _, resourceType := range viper.GetStringSlice("globallyUniqueTypes") {
			globallyUniqueTypes[resourceType] = true
		}

		softDeleteTypes := resolver.DefaultSoftDeleteTypes()
		for _, resourceType := range viper.GetStringSlice("softDeleteTypes") {
			softDeleteTypes[resourceType] = true
		}

		deleteCommands := []types.DeleteCommand{}
		if viper.InConfig("deleteCommands") {
			deleteCommandsRaw := viper.Get("deleteCommands").([]any)
			for _, rawDeleteCommand := range deleteCommandsRaw {
				deleteCommandMap := rawDeleteCommand.(map[string]any)
				deleteCommands = append(deleteCommands, types.DeleteCommand{
					Type:    deleteCommandMap["type"].(string),
					Command: deleteCommandMap["command"].(string),
				})
			}
		}

		ctx := context.Background()
		if timeout := viper.GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		jsonClient := json.NewJsonClient(
			workingFolderPath,
			log,
		)

		topologyClient := topology.NewTopologyClient(
			jsonClient,
			log,
		)

		resolverClient := resolver.NewResolverClient(
			targetSubscriptionID,
			viper.GetString("sourceSubscriptionID"),
			patternOverrides,
			log,
		)

		csvClient := csv.NewConflictCsvClient(
			workingFolderPath,
			log,
		)

		hclClient := hcl.NewHclClient(
			workingFolderPath,
			deleteCommands,
			log,
		)

		reportClient := report.NewReportClient(
			workingFolderPath,
			log,
		)

		var config types.InfraConfig
		if configFile != "" {
			config = types.InfraConfig(jsonClient.Import(configFile))
		}

		var planned []types.PlannedResource
		failures := []types.ResolutionFailure{}
		if topologyFile != "" {
			planned, failures = topologyClient.LoadPlannedResources(topologyFile)
		} else {
			planned = topologyClient.PlannedFromConfig(config)
		}

		knownIdentifiers := topologyClient.LoadKnownIdentifiers(viper.GetString("knownIdentifiersFile"), planned)

		offline := viper.GetBool("offline")

		var directoryClient azure.IDirectoryClient
		var index *azure.DirectoryIndex
		if !offline {
			directoryClient = azure.NewDirectoryClient(
				targetSubscriptionID,
				viper.GetString("cloud"),
				viper.GetUint64("maxRetries"),
				log,
			)

			index, err = azure.BuildDirectoryIndex(ctx, directoryClient, log)
			if err != nil {
				log.Warnf("Could not index the target subscription up front: %v", err)
				index = nil
			}
		}

		conflictReport := types.ConflictReport{Conflicts: []types.Conflict{}, Warnings: []string{}}
		if offline {
			log.Info("Running offline, skipping conflict detection")
			conflictReport.AddWarning("conflict detection skipped, running offline")
		} else {
			detectorClient := conflicts.NewDetectorClient(
				directoryClient,
				resolverClient,
				index,
				softDeleteTypes,
				log,
			)

			conflictReport = detectorClient.DetectConflicts(ctx, planned, types.DetectOptions{
				CheckExisting:    !viper.GetBool("skipExistingCheck"),
				CheckSoftDeleted: !viper.GetBool("skipSoftDeletedCheck"),
				CheckLocks:       !viper.GetBool("skipLockCheck"),
			})
		}

		validatorClient := names.NewValidatorClient(
			directoryClient,
			resolverClient,
			index,
			namingRules,
			globallyUniqueTypes,
			softDeleteTypes,
			fixStrategy,
			viper.GetString("fixSuffix"),
			viper.GetString("fixPattern"),
			viper.GetBool("autoPurge"),
			log,
		)

		updatedConfig, result := validatorClient.ValidateAndFix(ctx, planned, config, viper.GetBool("autoFix"))

		identifiers, resolutionFailures := resolverClient.ResolveAll(planned, knownIdentifiers)
		failures = append(failures, resolutionFailures...)

		jsonClient.Export(planned, "resources.json")
		jsonClient.Export(identifiers, "identifiers.json")
		jsonClient.ExportIndented(map[string]any{
			"conflicts":          conflictReport,
			"nameValidation":     result,
			"resolutionFailures": failures,
		}, "conflict_report.json")

		if len(result.Fixes) > 0 {
			jsonClient.ExportIndented(result.Fixes, "name_changes.json")
		}
		if viper.GetBool("autoFix") && configFile != "" && len(result.Fixes) > 0 {
			jsonClient.ExportIndented(updatedConfig, "config_updated.json")
			log.Info("Updated config written to config_updated.json, review it before deploying")
		}

		hclClient.CleanFiles([]string{"imports.tf", "cleanup.tf"})

		importBlocks := []types.ImportBlock{}
		keys := make([]string, 0, len(identifiers))
		for key := range identifiers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			importBlocks = append(importBlocks, types.ImportBlock{ID: identifiers[key], To: key})
		}
		hclClient.WriteImportBlocks(importBlocks, "imports.tf")

		if viper.GetBool("emitCleanup") {
			cleanupBlocks := []types.CleanupBlock{}
			for _, conflict := range conflictReport.Conflicts {
				if conflict.Kind != types.ConflictKindExistingResource {
					continue
				}

				armType, ok := resolverClient.ARMTypeFor(conflict.ResourceType)
				if !ok {
					armType = conflict.ResourceType
				}

				resourceID := ""
				if index != nil {
					if existing, found := index.Lookup(armType, conflict.ResourceName); found {
						resourceID = existing.ID
					}
				}
				if resourceID == "" {
					resourceID = identifiers[conflict.ResourceType+"."+conflict.ResourceName]
				}
				if resourceID == "" {
					log.Warnf("No resource ID available to clean up %s %s", conflict.ResourceType, conflict.ResourceName)
					continue
				}

				cleanupBlocks = append(cleanupBlocks, types.CleanupBlock{ID: resourceID, Type: conflict.ResourceType})
			}

			if len(cleanupBlocks) > 0 {
				hclClient.WriteCleanupBlocks(cleanupBlocks, "cleanup.tf")
			}
		}

		csvClient.Export(conflictReport, result)
		reportClient.Write(conflictReport, result, "report.txt")

		if conflictReport.HasConflicts() || result.HasConflicts() {
			log.Errorf("Preflight found %d deployment conflicts and %d name conflicts, review the artifacts in %s",
				len(conflictReport.Conflicts), len(result.Conflicts), workingFolderPath)
			os.Exit(1)
		}

		log.Info("Preflight passed, no conflicts found")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.PersistentFlags().StringP("targetSubscriptionID", "t", "", "Subscription ID of the deployment target")
	viper.BindPFlag("targetSubscriptionID", runCmd.PersistentFlags().Lookup("targetSubscriptionID"))
	runCmd.PersistentFlags().StringP("sourceSubscriptionID", "s", "", "Subscription ID the captured identifiers were taken from")
	viper.BindPFlag("sourceSubscriptionID", runCmd.PersistentFlags().Lookup("sourceSubscriptionID"))
	runCmd.PersistentFlags().StringP("workingFolderPath", "w", ".", "Working folder path to use")
	viper.BindPFlag("workingFolderPath", runCmd.PersistentFlags().Lookup("workingFolderPath"))
	runCmd.PersistentFlags().StringP("topologyFile", "r", "", "Planned resources JSON file, relative to the working folder")
	viper.BindPFlag("topologyFile", runCmd.PersistentFlags().Lookup("topologyFile"))
	runCmd.PersistentFlags().StringP("configFile", "i", "", "Infrastructure config JSON file, relative to the working folder")
	viper.BindPFlag("configFile", runCmd.PersistentFlags().Lookup("configFile"))
	runCmd.PersistentFlags().StringP("knownIdentifiersFile", "k", "", "Captured identifiers JSON file, relative to the working folder")
	viper.BindPFlag("knownIdentifiersFile", runCmd.PersistentFlags().Lookup("knownIdentifiersFile"))
	runCmd.PersistentFlags().BoolP("autoFix", "f", false, "Rename conflicting resource names in a copy of the config")
	viper.BindPFlag("autoFix", runCmd.PersistentFlags().Lookup("autoFix"))
	runCmd.PersistentFlags().String("fixStrategy", "Suffix", "Rename strategy to use: Suffix, CustomPattern or RandomSuffix")
	viper.BindPFlag("fixStrategy", runCmd.PersistentFlags().Lookup("fixStrategy"))
	runCmd.PersistentFlags().String("fixSuffix", "-copy", "Suffix appended by the Suffix strategy")
	viper.BindPFlag("fixSuffix", runCmd.PersistentFlags().Lookup("fixSuffix"))
	runCmd.PersistentFlags().String("fixPattern", "", "Pattern used by the CustomPattern strategy, supports {name}, {random} and {date}")
	viper.BindPFlag("fixPattern", runCmd.PersistentFlags().Lookup("fixPattern"))
	runCmd.PersistentFlags().Bool("autoPurge", false, "Purge soft-deleted name holders instead of renaming")
	viper.BindPFlag("autoPurge", runCmd.PersistentFlags().Lookup("autoPurge"))
	runCmd.PersistentFlags().Bool("skipExistingCheck", false, "Skip the existing resource check")
	viper.BindPFlag("skipExistingCheck", runCmd.PersistentFlags().Lookup("skipExistingCheck"))
	runCmd.PersistentFlags().Bool("skipSoftDeletedCheck", false, "Skip the soft-deleted resource check")
	viper.BindPFlag("skipSoftDeletedCheck", runCmd.PersistentFlags().Lookup("skipSoftDeletedCheck"))
	runCmd.PersistentFlags().Bool("skipLockCheck", false, "Skip the resource lock check")
	viper.BindPFlag("skipLockCheck", runCmd.PersistentFlags().Lookup("skipLockCheck"))
	runCmd.PersistentFlags().Bool("offline", false, "Run without querying the target subscription")
	viper.BindPFlag("offline", runCmd.PersistentFlags().Lookup("offline"))
	runCmd.PersistentFlags().Bool("emitCleanup", false, "Write cleanup blocks for colliding resources")
	viper.BindPFlag("emitCleanup", runCmd.PersistentFlags().Lookup("emitCleanup"))
	runCmd.PersistentFlags().Duration("timeout", 10*time.Minute, "Overall timeout for directory queries")
	viper.BindPFlag("timeout", runCmd.PersistentFlags().Lookup("timeout"))
	runCmd.PersistentFlags().StringP("verbosity", "v", "info", "Log level to use")
	viper.BindPFlag("verbosity", runCmd.PersistentFlags().Lookup("verbosity"))
	runCmd.PersistentFlags().Bool("structuredLogs", false, "Emit logs as JSON")
	viper.BindPFlag("structuredLogs", runCmd.PersistentFlags().Lookup("structuredLogs"))
	runCmd.PersistentFlags().String("cloud", "AzurePublic", "Cloud to use: AzurePublic, AzureGovernment or AzureChina")
	viper.BindPFlag("cloud", runCmd.PersistentFlags().Lookup("cloud"))
	runCmd.PersistentFlags().Uint64("maxRetries", 3, "Max retries for directory requests")
	viper.BindPFlag("maxRetries", runCmd.PersistentFlags().Lookup("maxRetries"))
}
