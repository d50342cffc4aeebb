package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/core/client"
	"github.com/hydradancer/hostctl/core/report"
	"github.com/hydradancer/hostctl/core/transport"
	"github.com/hydradancer/hostctl/data"
)

var (
	emulateProfile     string
	emulateDescriptors string
	emulateTrigger     bool

	emulateExport       bool
	emulateExportFormat string
	emulateExportFile   string
	emulateExportDir    string
	emulatePushHost     string
)

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Upload a descriptor set so the board acts as that device",
	Long: `Upload the USB descriptors of the device the board should emulate.

Descriptors are uploaded in the structural order the firmware expects:
device, config, interface, endpoint, then strings. The firmware is
stateless between uploads and cannot detect an out-of-order set, so the
order is enforced here.

Examples:
  # Built-in boot keyboard identity
  hostctl emulate

  # Identity from a descriptor file
  hostctl emulate --descriptors ./mouse.json`,
	RunE: runEmulate,
}

func init() {
	rootCmd.AddCommand(emulateCmd)

	emulateCmd.Flags().StringVar(&emulateProfile, "profile", "keyboard", "built-in descriptor profile")
	emulateCmd.Flags().StringVar(&emulateDescriptors, "descriptors", "", "descriptor set file (overrides --profile)")
	emulateCmd.Flags().BoolVar(&emulateTrigger, "trigger", false, "send the streaming-mode trigger before uploading")

	emulateCmd.Flags().BoolVarP(&emulateExport, "export", "e", false, "export the session records")
	emulateCmd.Flags().StringVarP(&emulateExportFormat, "format", "F", "", "export format (json, xml, pdf)")
	emulateCmd.Flags().StringVarP(&emulateExportFile, "output", "o", "", "export filename (without extension)")
	emulateCmd.Flags().StringVarP(&emulateExportDir, "direction", "d", "", "only export transfers with this direction (out, in)")
	emulateCmd.Flags().StringVar(&emulatePushHost, "push", "", "push the exported artifact to this configured remote host")
}

func runEmulate(cmd *cobra.Command, args []string) error {
	set, err := resolveDescriptorSet()
	if err != nil {
		return err
	}

	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	session := report.NewSession()
	if err := emulateAction(rootCtx, t, session, set, emulateTrigger); err != nil {
		return err
	}

	if emulateExport {
		if emulateExportFormat == "" {
			emulateExportFormat = configLoaded.Export.Format
		}
		if err := exportSession(session, "emulate", emulateExportFormat, emulateExportFile, emulatePushHost, emulateExportDir); err != nil {
			return err
		}
	}

	_, _ = cfmt.Println(cfmt.Sprintf("[*] Completed at: %v", time.Now().Format(time.Stamp)))
	return nil
}

func resolveDescriptorSet() (data.DescriptorSet, error) {
	if emulateDescriptors != "" {
		return data.LoadDescriptorSet(emulateDescriptors)
	}

	switch emulateProfile {
	case "keyboard":
		return data.KeyboardSet(), nil
	default:
		return data.DescriptorSet{}, fmt.Errorf("unknown profile: %s (use --descriptors for custom sets)", emulateProfile)
	}
}

// emulateAction uploads the descriptor set in structural order. A failed
// transfer does not roll back earlier uploads; the firmware keeps whatever
// it already received.
func emulateAction(ctx context.Context, t transport.Transport, session *report.Session, set data.DescriptorSet, withTrigger bool) error {
	uploader := client.NewUploader(t)

	if withTrigger {
		client.NewChannel(t).SendTrigger(ctx)
		session.Record(data.TransferRecord{
			Operation: "emulate",
			Role:      transport.CommandOut.String(),
			Direction: data.DirOut,
			Length:    1,
			Note:      "streaming-mode trigger",
		})
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Uploading %q descriptor set (%d descriptors)}}::green",
		time.Now().Format(time.Stamp), set.Name, len(set.Entries)))

	bar := progressbar.Default(int64(len(set.Entries)), "uploading")

	err := uploader.UploadSet(ctx, set, func(entry data.Descriptor) {
		session.Record(data.TransferRecord{
			Operation: "emulate",
			Role:      transport.DataOut.String(),
			Direction: data.DirOut,
			Length:    len(entry.Data),
			Note:      fmt.Sprintf("%s descriptor, index %d", entry.Kind, entry.Index),
		})
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Descriptor set uploaded; board will enumerate with the new identity}}::green",
		time.Now().Format(time.Stamp)))

	return nil
}
