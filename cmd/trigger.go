package cmd

import (
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/core/client"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Send the streaming-mode trigger byte to the board",
	Long: `Send the single-byte trigger frame that switches the board into its
streaming command mode. The board does not acknowledge: a transfer error
is reported but the exit code stays zero, because the wire gives no way
to tell a lost trigger from an accepted one.`,
	RunE: runTrigger,
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	client.NewChannel(t).SendTrigger(rootCtx)

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Trigger sent}}::green", time.Now().Format(time.Stamp)))
	return nil
}
