package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateDomain string

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := mustOpenStore()
		defer st.Close()

		p, err := st.CreateProject(args[0], projectCreateDomain)
		if err != nil {
			fmt.Printf("Create error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: func(cmd *cobra.Command, args []string) {
		st := mustOpenStore()
		defer st.Close()

		projects, err := st.ListProjects()
		if err != nil {
			fmt.Printf("List error: %v\n", err)
			os.Exit(1)
		}
		if len(projects) == 0 {
			fmt.Println("No projects yet.")
			return
		}
		for _, p := range projects {
			domain := p.Domain
			if domain == "" {
				domain = "-"
			}
			fmt.Printf("%s  %-24s %s\n", p.ID, p.Name, domain)
		}
	},
}

// activeProjectKey is the settings entry naming the default project for
// commands that take an optional project id.
const activeProjectKey = "active_project"

var projectUseCmd = &cobra.Command{
	Use:   "use <project-id>",
	Short: "Set the default project for report and other commands",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := mustOpenStore()
		defer st.Close()

		p, err := st.GetProject(args[0])
		if err != nil {
			fmt.Printf("Unknown project %q\n", args[0])
			os.Exit(1)
		}
		if err := st.SetSetting(activeProjectKey, p.ID); err != nil {
			fmt.Printf("Save error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Active project: %s (%s)\n", p.Name, p.ID)
	},
}

func mustOpenStore() *store.Store {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(cfg.DBPath(), nil)
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	return st
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateDomain, "domain", "", "site domain to connect")
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUseCmd)
}
