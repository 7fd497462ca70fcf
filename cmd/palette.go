package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/digitize-cli/internal/config"
)

var palettePath string

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Show the active legend palette",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := palettePath
		if path == "" {
			path = cfg.Digitize.PalettePath
		}
		palette, err := config.LoadPalette(path, cfg.Digitize.Tolerance)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tHEX\tLOW\tHIGH\tROLE")
		for _, c := range palette {
			role := "speed"
			if c.Exclude {
				role = "exclude"
			}
			fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s\n", c.Label, c.Hex, c.Low, c.High, role)
		}
		return tw.Flush()
	},
}

func init() {
	paletteCmd.Flags().StringVar(&palettePath, "palette", "", "palette yaml path (default from config)")
	rootCmd.AddCommand(paletteCmd)
}
