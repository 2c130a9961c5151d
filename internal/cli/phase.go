package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// Phase command flags
var (
	phaseName        string
	phaseDescription string
	phaseGoal        string
	phaseTargetDate  string
	phaseMeasurement string
	phaseStatus      string
	phaseBudget      float64
	phaseClearBudget bool
	phaseNoGoAction  string
	decisionNotes    string
	purchaseDesc     string
	purchaseAmount   float64
	purchaseDate     string
)

func init() {
	phaseEditCmd.Flags().StringVar(&phaseName, "name", "", "New name")
	phaseEditCmd.Flags().StringVarP(&phaseDescription, "description", "d", "", "New description")
	phaseEditCmd.Flags().StringVar(&phaseGoal, "goal", "", "New goal")
	phaseEditCmd.Flags().StringVar(&phaseTargetDate, "target-date", "", "New target date")
	phaseEditCmd.Flags().StringVar(&phaseMeasurement, "measurement", "", "How the goal is measured")
	phaseEditCmd.Flags().StringVarP(&phaseStatus, "status", "s", "", "New status (not-started, active, done)")
	phaseEditCmd.Flags().Float64Var(&phaseBudget, "budget", 0, "New budget")
	phaseEditCmd.Flags().BoolVar(&phaseClearBudget, "clear-budget", false, "Remove the budget")
	phaseEditCmd.Flags().StringVar(&phaseNoGoAction, "no-go-action", "", "What happens on a no-go")

	phaseDecideCmd.Flags().StringVarP(&decisionNotes, "notes", "n", "", "Decision notes")

	purchaseAddCmd.Flags().StringVarP(&purchaseDesc, "description", "d", "", "What was bought (required)")
	purchaseAddCmd.Flags().Float64VarP(&purchaseAmount, "amount", "a", 0, "Amount in EUR (required)")
	purchaseAddCmd.Flags().StringVar(&purchaseDate, "date", "", "Purchase date YYYY-MM-DD (default today)")
	purchaseAddCmd.MarkFlagRequired("description")
	purchaseAddCmd.MarkFlagRequired("amount")

	purchaseCmd.AddCommand(purchaseAddCmd)
	purchaseCmd.AddCommand(purchaseDeleteCmd)

	phaseCmd.AddCommand(phaseListCmd)
	phaseCmd.AddCommand(phaseShowCmd)
	phaseCmd.AddCommand(phaseEditCmd)
	phaseCmd.AddCommand(phaseEpicsCmd)
	phaseCmd.AddCommand(phaseToggleCmd)
	phaseCmd.AddCommand(phaseDecideCmd)
	phaseCmd.AddCommand(purchaseCmd)

	rootCmd.AddCommand(phaseCmd)
}

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Phase, go/no-go and budget commands",
	Long: `Manage project phases. Each phase ends in a go/no-go gate; a go
closes the phase and starts the next one.`,
}

func parsePhaseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.InvalidArgs("invalid phase id %q", arg)
	}
	return id, nil
}

func phaseNotFound(id int) error {
	return errors.NotFound("phase %d not found", id).WithSuggestion(SuggestListPhases)
}

// phase list
var phaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List phases with progress and spending",
	Args:  cobra.NoArgs,
	RunE:  runPhaseList,
}

func runPhaseList(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	sum := a.store.Summary()
	if IsJSON() {
		return printJSON(sum.Phases)
	}

	fmt.Printf("%-3s %-28s %-12s %7s %9s %9s %s\n", "ID", "NAME", "STATUS", "TICKETS", "BUDGET", "SPENT", "PROGRESS")
	for _, p := range sum.Phases {
		fmt.Printf("%-3d %-28s %-12s %3d/%-3d %9s %9s %3d%%\n",
			p.ID,
			truncate(p.Name, 28),
			p.Status,
			p.DoneTickets,
			p.Tickets,
			formatMoney(p.Budget),
			formatEuro(p.Spent),
			p.Progress,
		)
	}
	return nil
}

// phase show
var phaseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show phase details, criteria and purchases",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhaseShow,
}

func runPhaseShow(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.store.Phase(id)
	if p == nil {
		return phaseNotFound(id)
	}

	if IsJSON() {
		return printJSON(p)
	}

	fmt.Println(strings.Repeat("=", 65))
	fmt.Printf("Phase %d: %s\n", p.ID, p.Name)
	fmt.Println(strings.Repeat("=", 65))
	fmt.Println()
	fmt.Printf("Status:       %s\n", p.Status)
	if p.Goal != "" {
		fmt.Printf("Goal:         %s\n", p.Goal)
	}
	if p.TargetDate != "" {
		fmt.Printf("Target date:  %s\n", p.TargetDate)
	}
	if p.Measurement != "" {
		fmt.Printf("Measurement:  %s\n", p.Measurement)
	}
	fmt.Printf("Progress:     %d%%\n", a.store.PhaseProgress(p.ID))
	fmt.Printf("Budget:       %s (spent %s)\n", formatMoney(p.Budget), formatEuro(a.store.PhaseSpent(p.ID)))

	if p.Description != "" {
		fmt.Println()
		fmt.Printf("  %s\n", p.Description)
	}

	if len(p.GoNoGoCriteria) > 0 {
		fmt.Println()
		fmt.Printf("Go/no-go criteria (%d%%):\n", a.store.CriteriaProgress(p.ID))
		for _, c := range p.GoNoGoCriteria {
			mark := " "
			if c.Completed {
				mark = "x"
			}
			fmt.Printf("  [%s] %-6s %s\n", mark, c.ID, c.Description)
		}
	}
	if d := p.GoNoGoDecision; d != nil {
		fmt.Println()
		fmt.Printf("Decision:     %s on %s\n", strings.ToUpper(string(d.Decision)), d.Date.Format("2006-01-02"))
		if d.Notes != "" {
			fmt.Printf("  %s\n", d.Notes)
		}
	}
	if p.NoGoAction != "" {
		fmt.Printf("On no-go:     %s\n", p.NoGoAction)
	}

	if len(p.Purchases) > 0 {
		fmt.Println()
		fmt.Println("Purchases:")
		for _, pu := range p.Purchases {
			fmt.Printf("  [%d] %s  %-30s %9s\n", pu.ID, pu.Date, truncate(pu.Description, 30), formatEuro(pu.Amount))
		}
	}
	return nil
}

// phase edit
var phaseEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit phase fields",
	Long: `Change one or more fields of a phase. Only flags that are passed are
changed. Status accepts the Dutch labels too (actief, afgerond).

Examples:
  gtadmin phase edit 2 --status active
  gtadmin phase edit 2 --budget 750
  gtadmin phase edit 3 --goal "10 betalende huishoudens"`,
	Args: cobra.ExactArgs(1),
	RunE: runPhaseEdit,
}

func phasePatch(cmd *cobra.Command) (models.PhasePatch, error) {
	var patch models.PhasePatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &phaseName
	}
	if flags.Changed("description") {
		patch.Description = &phaseDescription
	}
	if flags.Changed("goal") {
		patch.Goal = &phaseGoal
	}
	if flags.Changed("target-date") {
		patch.TargetDate = &phaseTargetDate
	}
	if flags.Changed("measurement") {
		patch.Measurement = &phaseMeasurement
	}
	if flags.Changed("no-go-action") {
		patch.NoGoAction = &phaseNoGoAction
	}
	if flags.Changed("status") {
		st, err := models.ParsePhaseStatus(phaseStatus)
		if err != nil {
			return patch, errors.InvalidArgs("%s", err.Error())
		}
		patch.Status = &st
	}
	switch {
	case phaseClearBudget && flags.Changed("budget"):
		return patch, errors.InvalidArgs("--budget and --clear-budget are mutually exclusive")
	case phaseClearBudget:
		patch.Budget = models.Null[float64]()
	case flags.Changed("budget"):
		patch.Budget = models.Some(phaseBudget)
	}

	if patch == (models.PhasePatch{}) {
		return patch, errors.InvalidArgs("no changes specified").
			WithSuggestion("Pass at least one field flag, see 'gtadmin phase edit --help'.")
	}
	return patch, nil
}

func runPhaseEdit(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}
	patch, err := phasePatch(cmd)
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.UpdatePhase(id, patch)
	if err != nil {
		return err
	}
	if p == nil {
		return phaseNotFound(id)
	}

	if IsJSON() {
		return printJSON(p)
	}
	OutputLine("Updated phase %d: %s", p.ID, p.Name)
	return nil
}

// phase epics
var phaseEpicsCmd = &cobra.Command{
	Use:   "epics <id>",
	Short: "List the epics of a phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePhaseID(args[0])
		if err != nil {
			return err
		}
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.store.Phase(id) == nil {
			return phaseNotFound(id)
		}
		epics := a.store.Epics(id)
		if IsJSON() {
			return printJSON(epics)
		}
		for _, e := range epics {
			fmt.Printf("%-30s %d tickets\n", e, len(a.store.TicketsByEpic(id, e)))
		}
		return nil
	},
}

// phase toggle
var phaseToggleCmd = &cobra.Command{
	Use:   "toggle <phase-id> <criterion-id>",
	Short: "Toggle a go/no-go criterion",
	Args:  cobra.ExactArgs(2),
	RunE:  runPhaseToggle,
}

func runPhaseToggle(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.store.ToggleCriterion(id, args[1])
	if err != nil {
		return err
	}
	if c == nil {
		return errors.NotFound("criterion %s of phase %d not found", args[1], id).
			WithSuggestion(fmt.Sprintf("Run 'gtadmin phase show %d' to see its criteria.", id))
	}

	if IsJSON() {
		return printJSON(c)
	}
	state := "open"
	if c.Completed {
		state = "met"
	}
	OutputLine("Criterion %s is now %s (%d%% met)", c.ID, state, a.store.CriteriaProgress(id))
	return nil
}

// phase decide
var phaseDecideCmd = &cobra.Command{
	Use:   "decide <id> <go|no-go>",
	Short: "Record the go/no-go decision of a phase",
	Long: `Record the gate decision of a phase. A go marks the phase done and
activates the next phase if it has not started; a no-go leaves all
statuses as they are.

Examples:
  gtadmin phase decide 1 go --notes "12 aanmeldingen"
  gtadmin phase decide 2 no-go`,
	Args: cobra.ExactArgs(2),
	RunE: runPhaseDecide,
}

func runPhaseDecide(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}
	verdict, err := models.ParseVerdict(args[1])
	if err != nil {
		return errors.InvalidArgs("%s", err.Error())
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.RecordGoNoGoDecision(id, verdict, decisionNotes)
	if err != nil {
		return err
	}
	if p == nil {
		return phaseNotFound(id)
	}

	if IsJSON() {
		return printJSON(p)
	}
	OutputLine("Phase %d: %s", p.ID, strings.ToUpper(string(verdict)))
	OutputLine("Status: %s", p.Status)
	if verdict == models.VerdictGo {
		if next := a.store.Phase(id + 1); next != nil {
			OutputLine("Phase %d (%s): %s", next.ID, next.Name, next.Status)
		}
	}
	return nil
}

// phase purchase
var purchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Record spending on a phase",
}

var purchaseAddCmd = &cobra.Command{
	Use:   "add <phase-id>",
	Short: "Add a purchase to a phase",
	Long: `Add a purchase to a phase. The phase's spent total is the sum of its
purchases.

Examples:
  gtadmin phase purchase add 1 -d "Domeinnaam" -a 12.50`,
	Args: cobra.ExactArgs(1),
	RunE: runPurchaseAdd,
}

func runPurchaseAdd(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	pu, err := a.store.AddPurchase(id, models.PurchaseInput{
		Description: purchaseDesc,
		Amount:      purchaseAmount,
		Date:        purchaseDate,
	})
	if err != nil {
		return err
	}
	if pu == nil {
		return phaseNotFound(id)
	}

	if IsJSON() {
		return printJSON(pu)
	}
	OutputLine("Added purchase %d: %s %s", pu.ID, pu.Description, formatEuro(pu.Amount))
	OutputLine("Phase %d spent: %s", id, formatEuro(a.store.PhaseSpent(id)))
	return nil
}

var purchaseDeleteCmd = &cobra.Command{
	Use:   "delete <phase-id> <purchase-id>",
	Short: "Delete a purchase",
	Args:  cobra.ExactArgs(2),
	RunE:  runPurchaseDelete,
}

func runPurchaseDelete(cmd *cobra.Command, args []string) error {
	id, err := parsePhaseID(args[0])
	if err != nil {
		return err
	}
	purchaseID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.InvalidArgs("invalid purchase id %q", args[1])
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.store.DeletePurchase(id, purchaseID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("purchase %d of phase %d not found", purchaseID, id)
	}
	OutputLine("Deleted purchase %d", purchaseID)
	return nil
}

func formatEuro(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}

func formatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatEuro(*v)
}
