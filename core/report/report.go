// Package report collects the wire activity of a session and renders it:
// console table, json/xml/pdf export, and an optional push of the exported
// artifact to a remote host over SFTP.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/olekukonko/tablewriter"
	"github.com/thoas/go-funk"

	"github.com/hydradancer/hostctl/data"
)

// Session accumulates transfer records for one run of the tool.
type Session struct {
	mu      sync.Mutex
	records []data.TransferRecord
}

func NewSession() *Session {
	return &Session{}
}

// Record appends one transfer record, stamping it with the current time
// when the caller left it zero.
func (s *Session) Record(record data.TransferRecord) {
	if record.Time.IsZero() {
		record.Time = time.Now()
	}
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}

// Records returns a copy of everything recorded so far.
func (s *Session) Records() []data.TransferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]data.TransferRecord(nil), s.records...)
}

// FilterByDirection keeps only records with the given transfer direction.
func FilterByDirection(records []data.TransferRecord, dir data.Direction) []data.TransferRecord {
	filtered := funk.Filter(records, func(record data.TransferRecord) bool {
		return record.Direction == dir
	}).([]data.TransferRecord)

	return filtered
}

// PrintRecords renders the session as a console table.
func PrintRecords(records []data.TransferRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Operation", "Role", "Dir", "Bytes", "Note"})

	table.SetColumnColor(
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgGreenColor},
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgWhiteColor},
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgWhiteColor},
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgWhiteColor},
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgHiRedColor},
		tablewriter.Colors{tablewriter.Normal, tablewriter.FgWhiteColor},
	)

	for _, record := range records {
		table.Append([]string{
			record.Time.Format("Jan _2 15:04:05"),
			record.Operation,
			record.Role,
			string(record.Direction),
			fmt.Sprintf("%d", record.Length),
			record.Note,
		})
	}

	table.SetBorder(true)
	table.SetAutoMergeCells(false)
	table.SetRowLine(true)
	table.Render()
}

// Export writes the session records in the requested format and returns
// the path of the written artifact.
func Export(records []data.TransferRecord, format, fileName string) (string, error) {
	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Representation: %s }}::green", time.Now().Format(time.Stamp), format))

	var exportData []byte
	var err error
	var fn string

	switch format {
	case "json":
		fn = fmt.Sprintf("%s.%s", fileName, "json")
		exportData, err = json.MarshalIndent(records, "", " ")
	case "xml":
		fn = fmt.Sprintf("%s.%s", fileName, "xml")
		exportData, err = xml.MarshalIndent(records, "", " ")
	case "pdf":
		fn = fmt.Sprintf("%s.%s", fileName, "pdf")
		return fn, GeneratePDF(records, fn)
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal session records: %w", err)
	}

	if err := os.WriteFile(fn, exportData, fs.ModePerm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fn, err)
	}

	return fn, nil
}

// ArtifactName builds an export file name under dir for the given
// operation, stamped so repeated runs do not clobber each other.
func ArtifactName(dir, operation string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("session_%s_%s", operation, stamp))
}
