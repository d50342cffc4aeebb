package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/core/client"
	"github.com/hydradancer/hostctl/core/report"
	"github.com/hydradancer/hostctl/core/transport"
	"github.com/hydradancer/hostctl/data"
)

var (
	logFollow bool
	logHex    bool

	logExport       bool
	logExportFormat string
	logExportFile   string
	logExportDir    string
	logPushHost     string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read the firmware debug log",
	Long: `Read the debug log endpoint of the board.

By default a single snapshot is taken. With --follow the endpoint is
polled until interrupted.

Examples:
  # One log snapshot
  hostctl log

  # Stream the log until C-c
  hostctl log --follow

  # Stream, export the session as JSON and push it to a configured host
  hostctl log --follow --export --format json --push lab-server`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "poll the log endpoint until interrupted")
	logCmd.Flags().BoolVar(&logHex, "hex", false, "render log buffers as a hex dump")

	logCmd.Flags().BoolVarP(&logExport, "export", "e", false, "export the session records")
	logCmd.Flags().StringVarP(&logExportFormat, "format", "F", "", "export format (json, xml, pdf)")
	logCmd.Flags().StringVarP(&logExportFile, "output", "o", "", "export filename (without extension)")
	logCmd.Flags().StringVarP(&logExportDir, "direction", "d", "", "only export transfers with this direction (out, in)")
	logCmd.Flags().StringVar(&logPushHost, "push", "", "push the exported artifact to this configured remote host")
}

func runLog(cmd *cobra.Command, args []string) error {
	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	session := report.NewSession()
	poller := client.NewPoller(t, configLoaded.Poll.LogInterval)

	if logFollow {
		logFollowAction(rootCtx, poller, session)
	} else {
		logOnceAction(rootCtx, poller, session)
	}

	if logExport {
		if logExportFormat == "" {
			logExportFormat = configLoaded.Export.Format
		}
		if err := exportSession(session, "log", logExportFormat, logExportFile, logPushHost, logExportDir); err != nil {
			return err
		}
	}

	_, _ = cfmt.Println(cfmt.Sprintf("[*] Completed at: %v", time.Now().Format(time.Stamp)))
	return nil
}

// logOnceAction takes one log snapshot. The board's first IN transfer after
// some operations comes back empty even with data pending, so the snapshot
// is two polls, both printed.
func logOnceAction(ctx context.Context, poller *client.Poller, session *report.Session) {
	for i := 0; i < 2; i++ {
		if buffer, ok := poller.PollOnce(ctx); ok {
			printLogBuffer(buffer, session)
		}
	}
}

// logFollowAction streams the log until the context is cancelled.
func logFollowAction(ctx context.Context, poller *client.Poller, session *report.Session) {
	err := poller.PollForever(ctx, func(buffer []byte) {
		printLogBuffer(buffer, session)
	})
	if errors.Is(err, context.Canceled) {
		_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Log streaming stopped}}::yellow", time.Now().Format(time.Stamp)))
	}
}

func printLogBuffer(buffer []byte, session *report.Session) {
	session.Record(data.TransferRecord{
		Operation: "log",
		Role:      transport.LogIn.String(),
		Direction: data.DirIn,
		Length:    len(buffer),
	})

	if logHex {
		fmt.Print(report.HexDump(buffer))
		return
	}
	fmt.Print(client.DisplayString(buffer))
}
