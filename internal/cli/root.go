package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/lensboard/lensboard/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  _                    _                         _\n" +
		" | |    ___ _ __  ___ | |__   ___   __ _ _ __ __| |\n" +
		" | |   / _ \\ '_ \\/ __|| '_ \\ / _ \\ / _` | '__/ _` |\n" +
		" | |__|  __/ | | \\__ \\| |_) | (_) | (_| | | | (_| |\n" +
		" |_____\\___|_| |_|___/|_.__/ \\___/ \\__,_|_|  \\__,_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "lensboard",
	Short: "Lensboard - AI search visibility dashboard",
	Long:  color.CyanString(logo) + "\nProject telemetry for AI search visibility: health scores, trends, insights.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(projectCmd)
}
