package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

// Ticket command flags
var (
	ticketTitle       string
	ticketDescription string
	ticketPhase       int
	ticketEpic        string
	ticketStatus      string
	ticketPriority    string
	ticketValue       string
	ticketAcceptance  string
	ticketHours       float64
	ticketWeek        int
	ticketLabels      []string
	ticketLabel       string
	ticketClearHours  bool
	ticketClearWeek   bool
)

func init() {
	// ticket create
	ticketCreateCmd.Flags().StringVarP(&ticketTitle, "title", "t", "", "Ticket title (required)")
	ticketCreateCmd.Flags().StringVarP(&ticketDescription, "description", "d", "", "Detailed description")
	ticketCreateCmd.Flags().IntVar(&ticketPhase, "phase", 0, "Phase id (required)")
	ticketCreateCmd.Flags().StringVarP(&ticketEpic, "epic", "e", "", "Epic name")
	ticketCreateCmd.Flags().StringVarP(&ticketStatus, "status", "s", "", "Status (todo, in-progress, done)")
	ticketCreateCmd.Flags().StringVarP(&ticketPriority, "priority", "p", "", "Priority (must, should, nice)")
	ticketCreateCmd.Flags().StringVar(&ticketValue, "value", "", "What the ticket is worth")
	ticketCreateCmd.Flags().StringVar(&ticketAcceptance, "acceptance", "", "Acceptance criteria")
	ticketCreateCmd.Flags().Float64Var(&ticketHours, "hours", 0, "Estimated hours")
	ticketCreateCmd.Flags().IntVarP(&ticketWeek, "week", "w", 0, "Planned ISO week (1-53)")
	ticketCreateCmd.Flags().StringSliceVarP(&ticketLabels, "label", "l", nil, "Label ids (comma-separated)")
	ticketCreateCmd.MarkFlagRequired("title")
	ticketCreateCmd.MarkFlagRequired("phase")

	// ticket list
	ticketListCmd.Flags().IntVar(&ticketPhase, "phase", 0, "Filter by phase id")
	ticketListCmd.Flags().StringVarP(&ticketStatus, "status", "s", "", "Filter by status")
	ticketListCmd.Flags().StringVarP(&ticketEpic, "epic", "e", "", "Filter by epic")
	ticketListCmd.Flags().StringVarP(&ticketLabel, "label", "l", "", "Filter by label id")

	// ticket edit
	ticketEditCmd.Flags().StringVarP(&ticketTitle, "title", "t", "", "New title")
	ticketEditCmd.Flags().StringVarP(&ticketDescription, "description", "d", "", "New description")
	ticketEditCmd.Flags().IntVar(&ticketPhase, "phase", 0, "Move to phase")
	ticketEditCmd.Flags().StringVarP(&ticketEpic, "epic", "e", "", "New epic")
	ticketEditCmd.Flags().StringVarP(&ticketStatus, "status", "s", "", "New status")
	ticketEditCmd.Flags().StringVarP(&ticketPriority, "priority", "p", "", "New priority")
	ticketEditCmd.Flags().StringVar(&ticketValue, "value", "", "New value")
	ticketEditCmd.Flags().StringVar(&ticketAcceptance, "acceptance", "", "New acceptance criteria")
	ticketEditCmd.Flags().Float64Var(&ticketHours, "hours", 0, "New estimated hours")
	ticketEditCmd.Flags().IntVarP(&ticketWeek, "week", "w", 0, "New planned ISO week")
	ticketEditCmd.Flags().StringSliceVarP(&ticketLabels, "label", "l", nil, "Replace labels (comma-separated)")
	ticketEditCmd.Flags().BoolVar(&ticketClearHours, "clear-hours", false, "Remove the estimate")
	ticketEditCmd.Flags().BoolVar(&ticketClearWeek, "clear-week", false, "Unplan the ticket")

	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketShowCmd)
	ticketCmd.AddCommand(ticketEditCmd)
	ticketCmd.AddCommand(ticketDeleteCmd)
	ticketCmd.AddCommand(ticketNextNumberCmd)

	rootCmd.AddCommand(ticketCmd)
}

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Ticket management commands",
	Long: `Manage tickets. A ticket is referenced by its id (101) or its
ticket number (TM-01, GT-062); numbers are matched case-insensitively.`,
}

// ticket create
var ticketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket",
	Long: `Create a ticket in a phase. It gets the next ticket number.

Examples:
  gtadmin ticket create --phase 1 --title "Flyer ontwerpen"
  gtadmin ticket create --phase 2 -t "Sensor kiezen" -p must -w 12 -l research`,
	Args: cobra.NoArgs,
	RunE: runTicketCreate,
}

func runTicketCreate(cmd *cobra.Command, args []string) error {
	in := models.TicketInput{
		Title:              ticketTitle,
		Description:        ticketDescription,
		PhaseID:            ticketPhase,
		Epic:               ticketEpic,
		Value:              ticketValue,
		AcceptanceCriteria: ticketAcceptance,
		Labels:             ticketLabels,
	}
	if ticketStatus != "" {
		st, err := models.ParseTicketStatus(ticketStatus)
		if err != nil {
			return errors.InvalidArgs("%s", err.Error())
		}
		in.Status = st
	}
	if ticketPriority != "" {
		p, err := models.ParsePriority(ticketPriority)
		if err != nil {
			return errors.InvalidArgs("%s", err.Error())
		}
		in.Priority = p
	}
	if cmd.Flags().Changed("hours") {
		h := ticketHours
		in.EstimatedHours = &h
	}
	if cmd.Flags().Changed("week") {
		w := ticketWeek
		in.PlannedWeek = &w
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.AddTicket(in)
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(t)
	}
	OutputLine("Created: %s", t.TicketNumber)
	OutputLine("Title: %s", t.Title)
	OutputLine("Status: %s", t.Status)
	return nil
}

// ticket list
var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets with filtering",
	Long: `List tickets, optionally filtered by phase, status, epic or label.

Examples:
  gtadmin ticket list --phase 1
  gtadmin ticket list --status in-progress
  gtadmin ticket list --phase 2 --epic Hardware`,
	Args: cobra.NoArgs,
	RunE: runTicketList,
}

func listFilter() (store.TicketFilter, error) {
	f := store.TicketFilter{PhaseID: ticketPhase, Epic: ticketEpic, Label: ticketLabel}
	if ticketStatus != "" {
		st, err := models.ParseTicketStatus(ticketStatus)
		if err != nil {
			return f, errors.InvalidArgs("%s", err.Error())
		}
		f.Status = st
	}
	return f, nil
}

func runTicketList(cmd *cobra.Command, args []string) error {
	f, err := listFilter()
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	tickets := a.store.ListTickets(f)

	if IsJSON() {
		return printJSON(tickets)
	}

	if len(tickets) == 0 {
		OutputLine("No tickets found.")
		return nil
	}
	printTicketTable(tickets)
	return nil
}

func printTicketTable(tickets []*models.Ticket) {
	fmt.Printf("%-8s %-6s %-12s %-7s %-5s %s\n", "NUMBER", "PHASE", "STATUS", "PRI", "WEEK", "TITLE")
	fmt.Println(strings.Repeat("-", 80))
	for _, t := range tickets {
		fmt.Printf("%-8s %-6d %-12s %-7s %-5s %s\n",
			t.TicketNumber,
			t.PhaseID,
			t.Status,
			t.Priority,
			formatWeek(t.PlannedWeek),
			truncate(t.Title, 45),
		)
	}
}

// ticket show
var ticketShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show ticket details",
	Long: `Show a ticket with its dependencies, dependents and comments.

Examples:
  gtadmin ticket show TM-01
  gtadmin ticket show 101`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketShow,
}

type ticketDetails struct {
	*models.Ticket
	Dependencies []*models.Ticket `json:"dependencies"`
	Blocked      []*models.Ticket `json:"blocked"`
}

func runTicketShow(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}

	details := ticketDetails{
		Ticket:       t,
		Dependencies: a.store.DependencyTickets(t.ID),
		Blocked:      a.store.BlockedTickets(t.ID),
	}

	if IsJSON() {
		return printJSON(details)
	}

	fmt.Println(strings.Repeat("=", 65))
	fmt.Printf("%s: %s\n", t.TicketNumber, t.Title)
	fmt.Println(strings.Repeat("=", 65))
	fmt.Println()
	fmt.Printf("ID:           %d\n", t.ID)
	fmt.Printf("Phase:        %d\n", t.PhaseID)
	if t.Epic != "" {
		fmt.Printf("Epic:         %s\n", t.Epic)
	}
	fmt.Printf("Status:       %s\n", t.Status)
	fmt.Printf("Priority:     %s\n", t.Priority)
	fmt.Printf("Week:         %s\n", formatWeek(t.PlannedWeek))
	fmt.Printf("Estimate:     %s\n", formatHours(t.EstimatedHours))
	if len(t.Labels) > 0 {
		fmt.Printf("Labels:       %s\n", strings.Join(t.Labels, ", "))
	}
	if t.CreatedAt != nil {
		fmt.Printf("Created:      %s\n", common.FormatAge(*t.CreatedAt))
	}

	if t.Description != "" {
		fmt.Println()
		fmt.Println("Description:")
		fmt.Printf("  %s\n", t.Description)
	}
	if t.Value != "" {
		fmt.Println()
		fmt.Println("Value:")
		fmt.Printf("  %s\n", t.Value)
	}
	if t.AcceptanceCriteria != "" {
		fmt.Println()
		fmt.Println("Acceptance criteria:")
		fmt.Printf("  %s\n", t.AcceptanceCriteria)
	}

	printTicketRefs("Depends on:", t.DependsOn, details.Dependencies)
	printTicketRefs("Blocks:", t.BlockedBy, details.Blocked)

	if len(t.Comments) > 0 {
		fmt.Println()
		fmt.Println("Comments:")
		for _, c := range t.Comments {
			fmt.Printf("  [%d] %s (%s)\n", c.ID, c.Text, common.FormatAge(c.CreatedAt))
		}
	}
	return nil
}

// printTicketRefs lists linked tickets. Ids that no longer resolve are
// shown as dangling.
func printTicketRefs(title string, ids []int64, resolved []*models.Ticket) {
	if len(ids) == 0 {
		return
	}
	byID := make(map[int64]*models.Ticket, len(resolved))
	for _, t := range resolved {
		byID[t.ID] = t
	}
	fmt.Println()
	fmt.Println(title)
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			fmt.Printf("  - %s %s [%s]\n", t.TicketNumber, t.Title, t.Status)
		} else {
			fmt.Printf("  - %d (deleted)\n", id)
		}
	}
}

// ticket edit
var ticketEditCmd = &cobra.Command{
	Use:   "edit <ref>",
	Short: "Edit ticket fields",
	Long: `Change one or more fields of a ticket. Only flags that are passed
are changed.

Examples:
  gtadmin ticket edit TM-02 --status in-progress
  gtadmin ticket edit GT-062 --week 14 --hours 3
  gtadmin ticket edit GT-062 --clear-week`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketEdit,
}

// ticketPatch builds a patch from the flags that were set on cmd.
func ticketPatch(cmd *cobra.Command) (models.TicketPatch, error) {
	var patch models.TicketPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &ticketTitle
	}
	if flags.Changed("description") {
		patch.Description = &ticketDescription
	}
	if flags.Changed("phase") {
		patch.PhaseID = &ticketPhase
	}
	if flags.Changed("epic") {
		patch.Epic = &ticketEpic
	}
	if flags.Changed("status") {
		st, err := models.ParseTicketStatus(ticketStatus)
		if err != nil {
			return patch, errors.InvalidArgs("%s", err.Error())
		}
		patch.Status = &st
	}
	if flags.Changed("priority") {
		p, err := models.ParsePriority(ticketPriority)
		if err != nil {
			return patch, errors.InvalidArgs("%s", err.Error())
		}
		patch.Priority = &p
	}
	if flags.Changed("value") {
		patch.Value = &ticketValue
	}
	if flags.Changed("acceptance") {
		patch.AcceptanceCriteria = &ticketAcceptance
	}
	if flags.Changed("label") {
		labels := append([]string{}, ticketLabels...)
		patch.Labels = &labels
	}

	switch {
	case ticketClearHours && flags.Changed("hours"):
		return patch, errors.InvalidArgs("--hours and --clear-hours are mutually exclusive")
	case ticketClearHours:
		patch.EstimatedHours = models.Null[float64]()
	case flags.Changed("hours"):
		patch.EstimatedHours = models.Some(ticketHours)
	}
	switch {
	case ticketClearWeek && flags.Changed("week"):
		return patch, errors.InvalidArgs("--week and --clear-week are mutually exclusive")
	case ticketClearWeek:
		patch.PlannedWeek = models.Null[int]()
	case flags.Changed("week"):
		patch.PlannedWeek = models.Some(ticketWeek)
	}

	if patch.IsEmpty() {
		return patch, errors.InvalidArgs("no changes specified").
			WithSuggestion("Pass at least one field flag, see 'gtadmin ticket edit --help'.")
	}
	return patch, nil
}

func runTicketEdit(cmd *cobra.Command, args []string) error {
	patch, err := ticketPatch(cmd)
	if err != nil {
		return err
	}

	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	updated, err := a.store.UpdateTicket(t.ID, patch)
	if err != nil {
		return err
	}
	if updated == nil {
		return errors.NotFound("ticket %s not found", args[0])
	}

	if IsJSON() {
		return printJSON(updated)
	}
	OutputLine("Updated: %s", updated.TicketNumber)
	return nil
}

// ticket delete
var ticketDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a ticket",
	Long: `Delete a ticket. Dependency links on other tickets that point at it
are kept; remove them with 'gtadmin dep remove'.`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketDelete,
}

func runTicketDelete(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	deleted, err := a.store.DeleteTicket(t.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("ticket %s not found", args[0])
	}

	if IsJSON() {
		return printJSON(map[string]interface{}{"deleted": t.TicketNumber, "id": t.ID})
	}
	OutputLine("Deleted: %s", t.TicketNumber)
	return nil
}

// ticket next-number
var ticketNextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Show the number the next ticket will get",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		next := a.store.NextTicketNumber()
		if IsJSON() {
			return printJSON(map[string]string{"ticketNumber": next})
		}
		fmt.Println(next)
		return nil
	},
}

// withSuggestion adds a suggestion to not-found errors that carry none.
func withSuggestion(err error, suggestion string) error {
	if e, ok := errors.As(err); ok && e.Kind == errors.KindNotFound && e.Suggestion == "" {
		return e.WithSuggestion(suggestion)
	}
	return err
}

func formatWeek(w *int) string {
	if w == nil {
		return "-"
	}
	return "W" + strconv.Itoa(*w)
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', -1, 64) + "h"
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
