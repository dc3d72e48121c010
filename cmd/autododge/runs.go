package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/autododge/internal/platform/tui"
	"github.com/vovakirdan/autododge/internal/storage"
)

var (
	flagRunsLimit int
	flagRunsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the run ledger",
	Long: `Display the most recent rendered runs with their score, level and
upload status, followed by aggregate statistics.

Examples:
  autododge runs
  autododge runs --limit 50
  autododge runs --json`,
	Args: cobra.NoArgs,
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&flagRunsLimit, "limit", "n", 20, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsJSON, "json", false, "Print JSON")
}

func runRuns(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("Error opening run ledger: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(flagRunsLimit)
	if err != nil {
		fail("Error retrieving runs: %v", err)
	}
	stats, err := store.Stats()
	if err != nil {
		fail("Error retrieving stats: %v", err)
	}

	if flagRunsJSON {
		if err := printStructured(map[string]any{"runs": runs, "stats": stats}, true); err != nil {
			fail("%v", err)
		}
		return
	}

	theme := tui.DefaultTheme()
	fmt.Println(theme.Title.Render("Run Ledger"))
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'autododge render' to generate the first video!")
		return
	}

	fmt.Println(runsTable(runs))
	fmt.Println()

	best, err := store.BestRun()
	if err == nil && best != nil {
		fmt.Printf("%s %s (run #%d, seed %d)\n",
			theme.Label.Render("Best:"), theme.Value.Render(strconv.Itoa(best.Score)), best.ID, best.Seed)
	}
	fmt.Printf("%s %d runs, %d uploaded, %d wasted, avg score %.0f, max level %d\n",
		theme.Label.Render("Total:"), stats.Runs, stats.Uploaded, stats.Collisions, stats.AvgScore, stats.MaxLevel)
}

func runsTable(runs []storage.Run) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	wasted := cell.Foreground(lipgloss.Color("196"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("135"))).
		Headers("#", "Seed", "Profile", "Theme", "Skill", "Score", "Lvl", "Outcome", "Video", "Date").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 7 && runs[row].Collided:
				return wasted
			default:
				return cell
			}
		})

	for _, r := range runs {
		outcome := "survived"
		if r.Collided {
			outcome = "wasted"
		}
		video := r.VideoID
		if video == "" {
			video = "-"
		}
		t.Row(
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.Seed, 10),
			r.Profile,
			r.Theme,
			fmt.Sprintf("%.2f", r.AISkill),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Level),
			outcome,
			video,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return t
}
