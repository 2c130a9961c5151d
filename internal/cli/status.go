package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/metrics"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

func init() {
	planningCmd.Flags().IntVar(&ticketPhase, "phase", 0, "Filter by phase id")
	planningCmd.Flags().StringVarP(&ticketStatus, "status", "s", "", "Filter by status")
	planningCmd.Flags().StringVarP(&ticketEpic, "epic", "e", "", "Filter by epic")
	planningCmd.Flags().StringVarP(&ticketLabel, "label", "l", "", "Filter by label id")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planningCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project dashboard",
	Long: `Display a dashboard of the project: per-phase ticket progress,
go/no-go criteria, budget and spending, and ticket counts by status.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var (
	colorDone   = lipgloss.Color("#16a34a")
	colorActive = lipgloss.Color("#2563eb")
	colorDim    = lipgloss.Color("#6b7280")
	colorOver   = lipgloss.Color("#dc2626")

	styleHeader = lipgloss.NewStyle().Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
)

// useColor reports whether styled output should be rendered.
func useColor() bool {
	return !IsNoColor() && isTerminal()
}

// render applies style when color output is enabled.
func render(style lipgloss.Style, s string) string {
	if !useColor() {
		return s
	}
	return style.Render(s)
}

// progressBar draws a fixed-width bar for a 0-100 percentage.
func progressBar(pct, width int, color lipgloss.Color) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	bar := render(lipgloss.NewStyle().Foreground(color), strings.Repeat("█", filled)) +
		render(styleDim, strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

func phaseColor(status models.PhaseStatus) lipgloss.Color {
	switch status {
	case models.PhaseDone:
		return colorDone
	case models.PhaseActive:
		return colorActive
	default:
		return colorDim
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	sum := a.store.Summary()
	if IsJSON() {
		return printJSON(sum)
	}

	title := "GerustThuis"
	if sum.Project != nil && sum.Project.Name != "" {
		title = sum.Project.Name
	}
	fmt.Println(render(styleHeader, title))
	fmt.Println(strings.Repeat("=", 65))
	fmt.Println()

	for _, p := range sum.Phases {
		printPhaseStatus(p, sum.ActivePhaseID)
	}

	fmt.Printf("Tickets:  %d total", sum.TotalTickets)
	for _, st := range models.TicketStatuses {
		fmt.Printf(", %d %s", sum.TicketsByStatus[st], st)
	}
	fmt.Println()

	budget := fmt.Sprintf("%s of %s", formatEuro(sum.TotalSpent), formatEuro(sum.TotalBudget))
	if sum.TotalBudget > 0 && sum.TotalSpent > sum.TotalBudget {
		budget = render(lipgloss.NewStyle().Foreground(colorOver), budget+" (over budget)")
	}
	fmt.Printf("Budget:   %s\n", budget)
	return nil
}

func printPhaseStatus(p metrics.PhaseSummary, activeID int) {
	marker := " "
	if p.ID == activeID {
		marker = "▶"
	}
	name := fmt.Sprintf("%s %d. %s", marker, p.ID, p.Name)
	fmt.Printf("%s  %s\n", render(styleHeader, name), render(styleDim, string(p.Status)))

	color := phaseColor(p.Status)
	fmt.Printf("    Tickets   %s  %d/%d\n", progressBar(p.Progress, 30, color), p.DoneTickets, p.Tickets)
	if p.CriteriaTotal > 0 {
		fmt.Printf("    Criteria  %s  %d/%d\n", progressBar(p.CriteriaProgress, 30, color), p.CriteriaDone, p.CriteriaTotal)
	}
	if p.Budget != nil && *p.Budget > 0 {
		pct := int(p.Spent / *p.Budget * 100)
		barColor := color
		if p.Spent > *p.Budget {
			barColor = colorOver
		}
		fmt.Printf("    Budget    %s  %s/%s\n", progressBar(pct, 30, barColor), formatEuro(p.Spent), formatEuro(*p.Budget))
	} else if p.Spent > 0 {
		fmt.Printf("    Spent     %s\n", formatEuro(p.Spent))
	}
	if p.Decision != nil {
		fmt.Printf("    Decision  %s\n", strings.ToUpper(string(*p.Decision)))
	}
	fmt.Println()
}

var planningCmd = &cobra.Command{
	Use:   "planning",
	Short: "Show tickets grouped by planned week",
	Long: `Group tickets by planned ISO week with estimated hours per week.
Unplanned tickets are listed last.`,
	Args: cobra.NoArgs,
	RunE: runPlanning,
}

func runPlanning(cmd *cobra.Command, args []string) error {
	f, err := listFilter()
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	plans := a.store.Planning(f)
	if IsJSON() {
		return printJSON(plans)
	}
	if len(plans) == 0 {
		OutputLine("No tickets found.")
		return nil
	}

	for _, wp := range plans {
		heading := "Unplanned"
		if wp.Week > 0 {
			heading = fmt.Sprintf("Week %d", wp.Week)
		}
		fmt.Printf("%s  %s\n", render(styleHeader, heading),
			render(styleDim, fmt.Sprintf("%d/%d done, %.1fh", wp.Done, len(wp.Tickets), wp.EstimatedHours)))
		for _, t := range wp.Tickets {
			fmt.Printf("  %-8s %-12s %-6s %s\n", t.TicketNumber, t.Status, formatHours(t.EstimatedHours), truncate(t.Title, 50))
		}
		fmt.Println()
	}
	return nil
}
