package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lensboard/lensboard/internal/activity"
	"github.com/lensboard/lensboard/internal/checklist"
	"github.com/lensboard/lensboard/internal/config"
	"github.com/lensboard/lensboard/internal/dashboard"
	"github.com/lensboard/lensboard/internal/insight"
	"github.com/lensboard/lensboard/internal/metrics"
	"github.com/lensboard/lensboard/internal/store"
	"github.com/lensboard/lensboard/internal/timeutil"
)

var reportCmd = &cobra.Command{
	Use:   "report [project-id]",
	Short: "Print a project's health, trend, and insights",
	Args:  cobra.MaximumNArgs(1),
	Run:   runReport,
}

func runReport(cmd *cobra.Command, args []string) {
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
	defer st.Close()

	projectID, err := resolveProjectID(st, args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	view, err := st.ProjectView(projectID)
	if err != nil {
		fmt.Printf("Project error: %v\n", err)
		os.Exit(1)
	}
	printReport(dashboard.Build(view, checklist.DefaultPhases(), time.Now()))

	if counts, err := st.CountActivityByKind(projectID); err == nil {
		printActivitySummary(counts)
	}
}

// resolveProjectID picks the explicit argument, then the stored active
// project, then the sole project. A stale active id is ignored.
func resolveProjectID(st *store.Store, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if id, err := st.GetSetting(activeProjectKey); err == nil && id != "" {
		if _, err := st.GetProject(id); err == nil {
			return id, nil
		}
	}
	projects, err := st.ListProjects()
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}
	switch len(projects) {
	case 0:
		return "", fmt.Errorf("no projects yet; create one with 'lensboard project create'")
	case 1:
		return projects[0].ID, nil
	default:
		return "", fmt.Errorf("multiple projects; pass a project id or set one with 'lensboard project use'")
	}
}

func printReport(ov dashboard.Overview) {
	printHeader("📈 " + ov.Project.Name)

	scoreColor := color.New(color.FgGreen)
	switch {
	case ov.Health.Total < 40:
		scoreColor = color.New(color.FgRed)
	case ov.Health.Total < 70:
		scoreColor = color.New(color.FgYellow)
	}
	fmt.Printf("Health score: %s\n", scoreColor.Sprintf("%d/100", ov.Health.Total))
	fmt.Printf("  Checklist: %.1f  External: %.1f  Analyzer: %.1f  Features: %.1f\n",
		ov.Health.Checklist, ov.Health.External, ov.Health.Analyzer, ov.Health.Features)

	if ov.Trend.DeltaKnown {
		if ov.Trend.Delta >= 0 {
			fmt.Printf("Trend: %s since last analysis\n", color.GreenString("+%.1f%%", ov.Trend.Delta))
		} else {
			fmt.Printf("Trend: %s since last analysis\n", color.RedString("%.1f%%", ov.Trend.Delta))
		}
	} else {
		fmt.Println("Trend: not enough analyses yet")
	}
	if ov.Trend.Coverage.Total > 0 {
		fmt.Printf("Engines citing you: %d of %d\n", ov.Trend.Coverage.Citing, ov.Trend.Coverage.Total)
	}
	fmt.Printf("Checklist: %d/%d (%d%%)\n", ov.Checklist.Done, ov.Checklist.Total, ov.Checklist.Percent)

	if len(ov.Trend.Velocity) > 0 {
		fmt.Println("\nCompletion velocity:")
		for _, b := range ov.Trend.Velocity {
			fmt.Printf("  %-16s %d\n", b.Week, b.Count)
		}
	}

	if ov.Citations != nil && len(ov.Citations.Brands) > 0 {
		fmt.Printf("\nCitation share (checked %s):\n", timeutil.ShortDate(ov.Citations.Timestamp, time.Now()))
		for _, b := range brandsByShare(ov.Citations.Brands) {
			name := b.Name
			if b.IsOwn {
				name = color.CyanString(name + " (you)")
			}
			fmt.Printf("  %-28s %5.1f%%  %d mention(s)\n", name, b.SharePercent, b.TotalMentions)
		}
	}

	if len(ov.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, in := range ov.Insights {
			fmt.Printf("  %s %s\n", levelTag(in.Level), in.Text)
			if in.Detail != "" {
				fmt.Printf("     %s\n", in.Detail)
			}
		}
	}
}

// brandsByShare orders brands by share, largest first, with a name
// tiebreaker so output is stable.
func brandsByShare(brands map[string]metrics.BrandShare) []metrics.BrandShare {
	out := make([]metrics.BrandShare, 0, len(brands))
	for _, b := range brands {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b metrics.BrandShare) int {
		if a.SharePercent != b.SharePercent {
			if a.SharePercent > b.SharePercent {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func printActivitySummary(counts map[activity.Kind]int) {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return
	}
	fmt.Printf("\nActivity: %d event(s) logged\n", total)
	for _, kc := range topKinds(counts, 3) {
		fmt.Printf("  %-28s %d\n", activity.Label(kc.kind), kc.count)
	}
}

type kindCount struct {
	kind  activity.Kind
	count int
}

// topKinds returns the n most frequent kinds, count descending with a kind
// tiebreaker.
func topKinds(counts map[activity.Kind]int, n int) []kindCount {
	out := make([]kindCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, kindCount{kind: k, count: c})
	}
	slices.SortFunc(out, func(a, b kindCount) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return strings.Compare(string(a.kind), string(b.kind))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func levelTag(l insight.Level) string {
	switch l {
	case insight.LevelSuccess:
		return color.GreenString("[ok]")
	case insight.LevelWarning:
		return color.YellowString("[warn]")
	default:
		return color.CyanString("[info]")
	}
}
