package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/core/client"
	"github.com/hydradancer/hostctl/core/report"
	"github.com/hydradancer/hostctl/core/transport"
	"github.com/hydradancer/hostctl/data"
)

var (
	cipherMessage  string
	cipherTimeout  time.Duration
	cipherInterval time.Duration
	cipherHex      bool

	cipherExport       bool
	cipherExportFormat string
	cipherExportFile   string
	cipherExportDir    string
	cipherPushHost     string
)

var cipherCmd = &cobra.Command{
	Use:   "cipher",
	Short: "Run the firmware cipher (ROT13) echo test",
	Long: `Send a message to the board and print the ciphered reply.

The board answers on the data IN endpoint when ready; until then the
endpoint legitimately returns empty buffers, which are retried. Use
--timeout to bound the wait.

Examples:
  # Prompt for the message
  hostctl cipher

  # Non-interactive, bounded
  hostctl cipher -m "hello" --timeout 5s`,
	RunE: runCipher,
}

func init() {
	rootCmd.AddCommand(cipherCmd)

	cipherCmd.Flags().StringVarP(&cipherMessage, "message", "m", "", "message to cipher (prompted for when empty)")
	cipherCmd.Flags().DurationVar(&cipherTimeout, "timeout", 0, "give up waiting for the reply after this long (0 = wait forever)")
	cipherCmd.Flags().DurationVar(&cipherInterval, "interval", 0, "delay between response polls (0 = tight loop)")
	cipherCmd.Flags().BoolVar(&cipherHex, "hex", false, "render the reply as a hex dump")

	cipherCmd.Flags().BoolVarP(&cipherExport, "export", "e", false, "export the session records")
	cipherCmd.Flags().StringVarP(&cipherExportFormat, "format", "F", "", "export format (json, xml, pdf)")
	cipherCmd.Flags().StringVarP(&cipherExportFile, "output", "o", "", "export filename (without extension)")
	cipherCmd.Flags().StringVarP(&cipherExportDir, "direction", "d", "", "only export transfers with this direction (out, in)")
	cipherCmd.Flags().StringVar(&cipherPushHost, "push", "", "push the exported artifact to this configured remote host")
}

func runCipher(cmd *cobra.Command, args []string) error {
	message := cipherMessage
	if message == "" {
		var err error
		message, err = promptMessage()
		if err != nil {
			return err
		}
	}

	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	session := report.NewSession()
	if err := cipherAction(rootCtx, t, session, message); err != nil {
		return err
	}

	if cipherExport {
		if cipherExportFormat == "" {
			cipherExportFormat = configLoaded.Export.Format
		}
		if err := exportSession(session, "cipher", cipherExportFormat, cipherExportFile, cipherPushHost, cipherExportDir); err != nil {
			return err
		}
	}

	_, _ = cfmt.Println(cfmt.Sprintf("[*] Completed at: %v", time.Now().Format(time.Stamp)))
	return nil
}

func promptMessage() (string, error) {
	fmt.Print("Message to cypher: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// cipherAction runs one echo roundtrip and prints the reply.
func cipherAction(ctx context.Context, t transport.Transport, session *report.Session, message string) error {
	echo := client.NewEcho(t, client.PollPolicy{
		Interval: cipherInterval,
		Timeout:  cipherTimeout,
	})

	session.Record(data.TransferRecord{
		Operation: "cipher",
		Role:      transport.DataOut.String(),
		Direction: data.DirOut,
		Length:    len(message),
		Note:      "request",
	})

	buffer, err := echo.Roundtrip(ctx, []byte(message))
	if err != nil {
		return fmt.Errorf("cipher test aborted: %w", err)
	}

	session.Record(data.TransferRecord{
		Operation: "cipher",
		Role:      transport.DataIn.String(),
		Direction: data.DirIn,
		Length:    len(buffer),
		Note:      "response",
	})

	if cipherHex {
		fmt.Print(report.HexDump(buffer))
	} else {
		fmt.Println(client.DisplayString(buffer))
	}
	return nil
}
