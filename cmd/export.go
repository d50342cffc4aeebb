package cmd

import (
	"fmt"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"

	"github.com/hydradancer/hostctl/core/report"
	"github.com/hydradancer/hostctl/data"
)

// exportSession writes the session artifact and optionally pushes it to a
// configured remote host. Shared by every command that records traffic.
// A non-empty direction keeps only transfers going that way.
func exportSession(session *report.Session, operation, format, fileName, pushHost, direction string) error {
	records := session.Records()

	if direction != "" {
		dir := data.Direction(direction)
		if dir != data.DirOut && dir != data.DirIn {
			return fmt.Errorf("unknown direction: %s (must be %s or %s)", direction, data.DirOut, data.DirIn)
		}
		records = report.FilterByDirection(records, dir)
	}

	if len(records) == 0 {
		_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Nothing to export: no transfers recorded}}::yellow", time.Now().Format(time.Stamp)))
		return nil
	}

	if fileName == "" {
		fileName = report.ArtifactName(configLoaded.Export.Path, operation)
	}

	written, err := report.Export(records, format, fileName)
	if err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Session exported to: %s}}::green", time.Now().Format(time.Stamp), written))

	if pushHost != "" {
		host, err := configLoaded.GetRemoteHost(pushHost)
		if err != nil {
			return err
		}
		if host.InsecureSSH {
			_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] ⚠️  WARNING: SSH host key verification is DISABLED!}}::bgRed|white|bold",
				time.Now().Format(time.Stamp)))
		}
		if err := report.Push(host, written); err != nil {
			return fmt.Errorf("failed to push session artifact: %w", err)
		}
	}

	return nil
}
