package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

var (
	labelName  string
	labelColor string
)

func init() {
	labelCreateCmd.Flags().StringVar(&labelColor, "color", "#6b7280", "Hex color (#rrggbb)")

	labelEditCmd.Flags().StringVar(&labelName, "name", "", "New name")
	labelEditCmd.Flags().StringVar(&labelColor, "color", "", "New hex color")

	labelCmd.AddCommand(labelListCmd)
	labelCmd.AddCommand(labelCreateCmd)
	labelCmd.AddCommand(labelEditCmd)
	labelCmd.AddCommand(labelDeleteCmd)
	labelCmd.AddCommand(labelToggleCmd)

	rootCmd.AddCommand(labelCmd)
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label commands",
}

var labelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		labels := a.store.Labels()
		if IsJSON() {
			return printJSON(labels)
		}
		fmt.Printf("%-38s %-20s %-8s %s\n", "ID", "NAME", "COLOR", "TICKETS")
		for _, l := range labels {
			n := len(a.store.ListTickets(store.TicketFilter{Label: l.ID}))
			fmt.Printf("%-38s %-20s %-8s %d\n", l.ID, l.Name, l.Color, n)
		}
		return nil
	},
}

var labelCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a label",
	Long: `Create a label. Names are unique, compared case-insensitively.

Examples:
  gtadmin label create Juridisch --color "#0ea5e9"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.store.AddLabel(args[0], labelColor)
		if err != nil {
			return err
		}
		if IsJSON() {
			return printJSON(l)
		}
		OutputLine("Created label %s (%s)", l.Name, l.ID)
		return nil
	},
}

var labelEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename or recolor a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch models.LabelPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &labelName
		}
		if cmd.Flags().Changed("color") {
			patch.Color = &labelColor
		}
		if patch.Name == nil && patch.Color == nil {
			return errors.InvalidArgs("no changes specified").
				WithSuggestion("Pass --name or --color.")
		}

		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.store.UpdateLabel(args[0], patch)
		if err != nil {
			return err
		}
		if l == nil {
			return labelNotFound(args[0])
		}
		if IsJSON() {
			return printJSON(l)
		}
		OutputLine("Updated label %s: %s %s", l.ID, l.Name, l.Color)
		return nil
	},
}

var labelDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a label and remove it from all tickets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.store.DeleteLabel(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return labelNotFound(args[0])
		}
		OutputLine("Deleted label %s", args[0])
		return nil
	},
}

var labelToggleCmd = &cobra.Command{
	Use:   "toggle <ticket> <label-id>",
	Short: "Add a label to a ticket, or remove it if present",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.store.ResolveTicket(args[0])
		if err != nil {
			return withSuggestion(err, SuggestListTickets)
		}
		updated, err := a.store.ToggleTicketLabel(t.ID, args[1])
		if err != nil {
			return err
		}
		if updated == nil {
			return errors.NotFound("ticket %s not found", args[0])
		}
		if IsJSON() {
			return printJSON(updated)
		}
		if updated.HasLabel(args[1]) {
			OutputLine("Labeled %s with %s", updated.TicketNumber, args[1])
		} else {
			OutputLine("Removed %s from %s", args[1], updated.TicketNumber)
		}
		return nil
	},
}

func labelNotFound(id string) error {
	return errors.NotFound("label %s not found", id).WithSuggestion(SuggestListLabels)
}
