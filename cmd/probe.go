package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/lightnode/internal/config"
	"github.com/spf13/cobra"
)

// CreateProbeCmd creates the probe command, which verifies the configured
// control files exist and accept writes.
func CreateProbeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check LED control file access",
		Long: `Opens each configured LED control file for writing and reports the ` +
			`result. Useful for verifying paths and permissions on a new board ` +
			`before starting the server.`,
		Run: func(_ *cobra.Command, _ []string) {
			lightsCfg := config.LoadLightsConfig(configFile)

			paths := map[string]string{
				"backlight":   lightsCfg.BacklightPath,
				"rgb control": lightsCfg.RGBControlPath,
			}

			failed := false
			for name, path := range paths {
				if err := probePath(path); err != nil {
					fmt.Printf("FAIL %-12s %s: %v\n", name, path, err)
					failed = true
					continue
				}
				fmt.Printf("OK   %-12s %s\n", name, path)
			}
			if failed {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")

	return cmd
}

// probePath opens the control file write-only without writing anything, so
// probing never changes LED state.
func probePath(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
