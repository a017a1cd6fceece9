package csv

import (
	csvwriter "encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rysweet/azure-tenant-grapher-sub012/types"
)

type IConflictCsvClient interface {
	Export(report types.ConflictReport, result types.NameValidationResult)
}

type ConflictCsvClient struct {
	WorkingFolderPath string
	ConflictCsv       *ConflictCsv
	Logger            *logrus.Logger
}

type ConflictCsv struct {
	Header []string
	Rows   []*ConflictCsvRow
}

func NewConflictCsvClient(workingFolderPath string, logger *logrus.Logger) *ConflictCsvClient {
	return &ConflictCsvClient{
		WorkingFolderPath: workingFolderPath,
		ConflictCsv:       &ConflictCsv{Header: []string{"Conflict ID", "Kind", "Resource Type", "Resource Name", "Container", "Detail", "Suggested Name", "Remediation"}},
		Logger:            logger,
	}
}

func (csv *ConflictCsv) AddRow(row *ConflictCsvRow) {
	csv.Rows = append(csv.Rows, row)
}

type ConflictCsvRow struct {
	ConflictID    string
	Kind          string
	ResourceType  string
	ResourceName  string
	Container     string
	Detail        string
	SuggestedName string
	Remediation   string
}

// Export writes both conflict families into one review table, detector
// conflicts first by sort order, name conflicts keyed by their reason.
func (csvClient *ConflictCsvClient) Export(report types.ConflictReport, result types.NameValidationResult) {
	for _, conflict := range report.Conflicts {
		csvRow := ConflictCsvRow{
			ConflictID:    conflict.ConflictID,
			Kind:          string(conflict.Kind),
			ResourceType:  conflict.ResourceType,
			ResourceName:  conflict.ResourceName,
			Container:     conflict.ContainerID,
			Detail:        conflict.Detail,
			SuggestedName: "",
			Remediation:   strings.Join(conflict.RemediationActions, "; "),
		}
		csvClient.ConflictCsv.AddRow(&csvRow)
	}

	for _, conflict := range result.Conflicts {
		csvRow := ConflictCsvRow{
			ConflictID:    "",
			Kind:          string(conflict.Reason),
			ResourceType:  conflict.ResourceType,
			ResourceName:  conflict.ResourceName,
			Container:     conflict.ContainerID,
			Detail:        conflict.Detail,
			SuggestedName: conflict.SuggestedName,
			Remediation:   strings.Join(conflict.RemediationActions, "; "),
		}
		csvClient.ConflictCsv.AddRow(&csvRow)
	}

	sort.Sort(ByKindTypeAndName(csvClient.ConflictCsv.Rows))

	csvClient.writeCsv()
}

func (csvClient *ConflictCsvClient) writeCsv() {
	csvData := [][]string{csvClient.ConflictCsv.Header}
	for _, conflict := range csvClient.ConflictCsv.Rows {
		csvData = append(csvData, []string{
			conflict.ConflictID,
			conflict.Kind,
			conflict.ResourceType,
			conflict.ResourceName,
			conflict.Container,
			conflict.Detail,
			conflict.SuggestedName,
			conflict.Remediation,
		})
	}

	csvFilePath := filepath.Join(csvClient.WorkingFolderPath, "conflicts.csv")
	csvFile, err := os.Create(csvFilePath)
	if err != nil {
		csvClient.Logger.Fatalf("Failed to create file: %v", err)
	}
	defer csvFile.Close()
	csvWriter := csvwriter.NewWriter(csvFile)
	defer csvWriter.Flush()
	err = csvWriter.WriteAll(csvData)
	if err != nil {
		csvClient.Logger.Fatalf("Failed to write CSV file: %v", err)
	}
	csvClient.Logger.Infof("Conflicts written to %s", csvFilePath)
}

type ByKindTypeAndName []*ConflictCsvRow

func (o ByKindTypeAndName) Len() int      { return len(o) }
func (o ByKindTypeAndName) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o ByKindTypeAndName) Less(i, j int) bool {
	if o[i].Kind != o[j].Kind {
		return o[i].Kind < o[j].Kind
	}

	if o[i].ResourceType != o[j].ResourceType {
		return o[i].ResourceType < o[j].ResourceType
	}

	return o[i].ResourceName < o[j].ResourceName
}
