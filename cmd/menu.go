package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/core/client"
	"github.com/hydradancer/hostctl/core/report"
	"github.com/hydradancer/hostctl/data"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive action menu",
	Long: `Interactive menu over the protocol operations: log snapshot, log
streaming, cipher test, device emulation. The board is claimed once for
the whole menu session and released on exit.`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func printMenu() {
	_, _ = cfmt.Println(cfmt.Sprintf(`
{{HydraDancer host controller}}::lightYellow|bold
Select your action:
1) Log once
2) Log infinite loop
3) Cipher test (ROT13)
4) Act as keyboard

9) Exit`))
	fmt.Print("> ")
}

func runMenu(cmd *cobra.Command, args []string) error {
	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	session := report.NewSession()
	poller := client.NewPoller(t, configLoaded.Poll.LogInterval)
	scanner := bufio.NewScanner(os.Stdin)

	for rootCtx.Err() == nil {
		printMenu()

		if !scanner.Scan() {
			break
		}
		choice := strings.TrimSpace(scanner.Text())

		switch choice {
		case "1":
			logOnceAction(rootCtx, poller, session)
		case "2":
			logFollowAction(rootCtx, poller, session)
		case "3":
			fmt.Print("Message to cypher: ")
			if !scanner.Scan() {
				// stdin closed mid-prompt; leave the menu entirely
				return scanner.Err()
			}
			message := strings.TrimSpace(scanner.Text())
			if err := cipherAction(rootCtx, t, session, message); err != nil {
				_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] %s}}::red", time.Now().Format(time.Stamp), err.Error()))
			}
		case "4":
			if err := emulateAction(rootCtx, t, session, data.KeyboardSet(), false); err != nil {
				_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] %s}}::red", time.Now().Format(time.Stamp), err.Error()))
			}
		case "9", "q", "exit":
			_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Session summary:}}::green", time.Now().Format(time.Stamp)))
			report.PrintRecords(session.Records())
			return nil
		case "":
			// ignore empty input
		default:
			_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Unknown choice: %s}}::yellow", time.Now().Format(time.Stamp), choice))
		}
	}

	return scanner.Err()
}
