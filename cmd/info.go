package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hydradancer/hostctl/usbids"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the attached board and its endpoint bindings",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	// Best effort: the board is still usable without a usb.ids database
	if err := usbids.LoadFromFile(configLoaded.UsbIds); err != nil {
		_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Warning: usb.ids not loaded: %s}}::yellow",
			time.Now().Format(time.Stamp), err.Error()))
	}

	t, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	info := t.Info()
	vendorName, productName := usbids.FindDevice(info.VendorID, info.ProductID)
	if info.Manufacturer == "" {
		info.Manufacturer = vendorName
	}
	if info.Product == "" {
		info.Product = productName
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"VID", "PID", "Bus", "Addr", "Speed", "Manufacturer", "Product", "Serial"})
	table.Append([]string{
		fmt.Sprintf("%04x", info.VendorID),
		fmt.Sprintf("%04x", info.ProductID),
		fmt.Sprintf("%d", info.Bus),
		fmt.Sprintf("%d", info.Address),
		info.Speed,
		info.Manufacturer,
		info.Product,
		info.Serial,
	})
	table.SetBorder(true)
	table.Render()

	endpoints := tablewriter.NewWriter(os.Stdout)
	endpoints.SetHeader([]string{"Role", "Endpoint"})
	endpoints.Append([]string{"command/out", fmt.Sprintf("%#02x", configLoaded.Endpoints.CommandOut)})
	endpoints.Append([]string{"data/out", fmt.Sprintf("%#02x", configLoaded.Endpoints.DataOut)})
	endpoints.Append([]string{"data/in", fmt.Sprintf("%#02x", configLoaded.Endpoints.DataIn)})
	endpoints.Append([]string{"log/in", fmt.Sprintf("%#02x", configLoaded.Endpoints.LogIn)})
	endpoints.SetBorder(true)
	endpoints.Render()

	return nil
}
