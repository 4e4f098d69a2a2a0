package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"autoswitch/internal/hiddev"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List HID interfaces matching the configured vendor/product id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		infos, err := hiddev.List(cfg.Device.VendorID, cfg.Device.ProductID)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Printf("no HID interfaces match vendor=%#04x product=%#04x\n",
				cfg.Device.VendorID, cfg.Device.ProductID)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tMANUFACTURER\tPRODUCT\tUSAGE PAGE\tUSAGE")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%#04x\t%#04x\n",
				info.Path, info.MfrStr, info.ProductStr, info.UsagePage, info.Usage)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
