package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/store"
)

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ Lensboard Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 Lensboard Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + path + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults apply, " + path + ")")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			return
		}

		if _, err := os.Stat(cfg.DBPath()); err == nil {
			st, err := store.Open(cfg.DBPath(), nil)
			if err != nil {
				fmt.Printf("Store:   ✗ %v\n", err)
				return
			}
			defer st.Close()
			projects, err := st.ListProjects()
			if err != nil {
				fmt.Printf("Store:   ✗ %v\n", err)
				return
			}
			fmt.Printf("Store:   ✓ %s (%d project(s))\n", cfg.DBPath(), len(projects))
		} else {
			fmt.Println("Store:   ✗ Not created yet (run 'lensboard serve' or 'lensboard project create')")
		}

		if cfg.Ingest.Enabled {
			fmt.Printf("Ingest:  ✓ Enabled (%s / %s)\n", cfg.Ingest.Brokers, cfg.Ingest.Topic)
		} else {
			fmt.Println("Ingest:  ✗ Disabled")
		}
		if cfg.Notify.Slack.Enabled {
			fmt.Printf("Slack:   ✓ Enabled (%s)\n", cfg.Notify.Slack.Channel)
		} else {
			fmt.Println("Slack:   ✗ Disabled")
		}
		fmt.Printf("API:     http://%s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	},
}
