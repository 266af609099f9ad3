package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/smazurov/lightnode/internal/config"
	"github.com/smazurov/lightnode/internal/hal"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/smazurov/lightnode/internal/sysfs"
	"github.com/spf13/cobra"
)

// CreateSetCmd creates the set command for one-shot light changes without
// running the server.
func CreateSetCmd() *cobra.Command {
	var configFile string
	var flash string
	var onMS, offMS int

	cmd := &cobra.Command{
		Use:   "set <light> <color>",
		Short: "Set a light directly",
		Long: `Applies an ARGB color to one logical light (backlight, battery, ` +
			`notifications) and exits. A timed flash pattern can be given for the ` +
			`notification light.`,
		Args: cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})
			logger := logging.GetLogger("set")

			color, err := parseColorArg(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid color %q: %v\n", args[1], err)
				os.Exit(1)
			}

			lightsCfg := config.LoadLightsConfig(configFile)
			writer := newWriter(lightsCfg.Driver)
			paths := hal.Paths{
				Backlight:  lightsCfg.BacklightPath,
				RGBControl: lightsCfg.RGBControlPath,
			}

			h := hal.New(paths, writer, logger)
			device, err := h.Open(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
			defer device.Close()

			state := hal.State{
				Color:      color,
				Flash:      hal.ParseFlashMode(flash),
				FlashOnMS:  onMS,
				FlashOffMS: offMS,
			}
			if err := device.Set(state); err != nil {
				fmt.Fprintf(os.Stderr, "failed to set %s: %v\n", args[0], err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")
	cmd.Flags().StringVar(&flash, "flash", "none", "Flash mode (none, timed)")
	cmd.Flags().IntVar(&onMS, "on", 0, "Flash on duration in milliseconds")
	cmd.Flags().IntVar(&offMS, "off", 0, "Flash off duration in milliseconds")

	return cmd
}

// newWriter selects the control file writer for the configured driver.
func newWriter(driver string) sysfs.Writer {
	if driver == "noop" {
		return sysfs.NewNoop(logging.GetLogger("sysfs"))
	}
	return sysfs.New(logging.GetLogger("sysfs"))
}

func parseColorArg(raw string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "#"), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty color")
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
