package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/config"
	"github.com/hydradancer/hostctl/core/transport"
)

const (
	version = "v0.2"
	url     = "https://github.com/hydradancer/hostctl"
)

var (
	// Global flags
	cfgFile      string
	configLoaded *config.Config

	// Root context for graceful shutdown
	rootCtx    context.Context
	cancelFunc context.CancelFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hostctl",
	Short: "HydraDancer host controller",
	Long: `hostctl - HydraDancer host controller

Drives a HydraDancer USB peripheral emulator over its BBIO control
protocol: upload the descriptors of the device to emulate, exercise the
firmware cipher test, and read the on-board debug log.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup signal handler for all commands
		rootCtx, cancelFunc = setupSignalHandler()

		// Print banner for non-help commands
		if cmd.Name() != "help" && cmd.Name() != "completion" {
			printBanner()
		}

		// Load configuration file
		var err error
		configLoaded, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cancelFunc != nil {
			cancelFunc()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.hostctl.yaml)")

	// Set custom version template
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
}

// setupSignalHandler creates a context that will be cancelled on SIGINT or SIGTERM
func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigChan
		_, _ = cfmt.Println(cfmt.Sprintf("\n{{[%v] Received signal: %v - initiating graceful shutdown...}}::yellow|bold",
			time.Now().Format(time.Stamp), sig))
		cancel()

		// Force exit if second signal received
		sig = <-sigChan
		_, _ = cfmt.Println(cfmt.Sprintf("\n{{[%v] Received second signal: %v - forcing immediate exit}}::red|bold",
			time.Now().Format(time.Stamp), sig))
		os.Exit(1)
	}()

	return ctx, cancel
}

// openTransport claims the board, reporting which setup stage failed when
// it cannot. The returned transport must be closed by the caller.
func openTransport() (*transport.USBTransport, error) {
	t, err := transport.Open(configLoaded)
	if err != nil {
		var setup *transport.SetupError
		if errors.As(err, &setup) {
			_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] USB setup failed at stage %q: %s}}::red",
				time.Now().Format(time.Stamp), setup.Stage, setup.Err.Error()))
		}
		return nil, err
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Claimed device %04x:%04x (interface %d)}}::green",
		time.Now().Format(time.Stamp),
		configLoaded.Device.VendorID, configLoaded.Device.ProductID, configLoaded.Device.Interface))

	return t, nil
}

func printBanner() {
	_, _ = cfmt.Println(cfmt.Sprintf(`
{{┬ ┬┌─┐┌─┐┌┬┐┌─┐┌┬┐┬  }}::bgLightBlue
{{├─┤│ │└─┐ │ │   │ │  }}::bgLightBlue {{HydraDancer host controller %s}}::lightYellow
{{┴ ┴└─┘└─┘ ┴ └─┘ ┴ ┴─┘}}::bgLightBlue {{%s}}::lightBlue`, version, url))
	_, _ = cfmt.Println(cfmt.Sprintf("[*] Starting at: %v", time.Now().Format(time.Stamp)))
}
