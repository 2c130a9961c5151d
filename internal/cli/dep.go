package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

var depStrict bool

func init() {
	depChainCmd.Flags().BoolVar(&depStrict, "strict", false, "Fail when the chain contains a cycle")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depBlockedCmd)
	depCmd.AddCommand(depChainCmd)

	rootCmd.AddCommand(depCmd)
}

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Ticket dependency commands",
	Long: `Manage dependencies between tickets. "A depends on B" means B must be
done before A; B then lists A as blocked.`,
}

var depAddCmd = &cobra.Command{
	Use:   "add <ticket> <depends-on>",
	Short: "Make a ticket depend on another",
	Long: `Record that <ticket> depends on <depends-on>. Adding an existing link
is a no-op.

Examples:
  gtadmin dep add TM-03 TM-02`,
	Args: cobra.ExactArgs(2),
	RunE: runDepAdd,
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	dep, err := a.store.ResolveTicket(args[1])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	if _, err := a.store.AddDependency(t.ID, dep.ID); err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(a.store.Ticket(t.ID))
	}
	OutputLine("%s now depends on %s", t.TicketNumber, dep.TicketNumber)
	return nil
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <ticket> <depends-on>",
	Short: "Remove a dependency",
	Long: `Remove the link between two tickets. <depends-on> may be the id of
a deleted ticket, which cleans up a dangling link.

Examples:
  gtadmin dep remove TM-03 TM-02
  gtadmin dep remove TM-03 102`,
	Args: cobra.ExactArgs(2),
	RunE: runDepRemove,
}

func runDepRemove(cmd *cobra.Command, args []string) error {
	depID, number, err := common.ParseTicketRef(args[1])
	if err != nil {
		return errors.InvalidArgs("invalid ticket reference %q", args[1])
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
	if number != "" {
		dep, err := a.store.ResolveTicket(number)
		if err != nil {
			return err
		}
		depID = dep.ID
	}
	if _, err := a.store.RemoveDependency(t.ID, depID); err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(a.store.Ticket(t.ID))
	}
	OutputLine("Removed dependency of %s on %s", t.TicketNumber, args[1])
	return nil
}

var depListCmd = &cobra.Command{
	Use:   "list <ticket>",
	Short: "List the tickets a ticket depends on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDepQuery(args[0], func(a *app, t *models.Ticket) ([]*models.Ticket, error) {
			return a.store.DependencyTickets(t.ID), nil
		})
	},
}

var depBlockedCmd = &cobra.Command{
	Use:   "blocked <ticket>",
	Short: "List the tickets waiting on a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDepQuery(args[0], func(a *app, t *models.Ticket) ([]*models.Ticket, error) {
			return a.store.BlockedTickets(t.ID), nil
		})
	},
}

var depChainCmd = &cobra.Command{
	Use:   "chain <ticket>",
	Short: "Show the full dependency chain in work order",
	Long: `Show every ticket the given ticket transitively depends on, ordered so
each ticket comes after its dependencies, ending with the ticket itself.

Examples:
  gtadmin dep chain TM-05
  gtadmin dep chain TM-05 --strict   # exit 4 if the chain has a cycle`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDepQuery(args[0], func(a *app, t *models.Ticket) ([]*models.Ticket, error) {
			if depStrict {
				return a.store.TicketChainStrict(t.ID)
			}
			return a.store.TicketChain(t.ID), nil
		})
	},
}

func runDepQuery(ref string, query func(*app, *models.Ticket) ([]*models.Ticket, error)) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(ref)
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	tickets, err := query(a, t)
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(tickets)
	}
	if len(tickets) == 0 {
		OutputLine("No tickets.")
		return nil
	}
	for _, dt := range tickets {
		fmt.Printf("%-8s %-12s %s\n", dt.TicketNumber, dt.Status, dt.Title)
	}
	return nil
}
