package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

func init() {
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	rootCmd.AddCommand(commentCmd)
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Ticket comment commands",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <ticket> <text>...",
	Short: "Add a comment to a ticket",
	Long: `Add a comment to a ticket. Remaining arguments are joined with spaces.

Examples:
  gtadmin comment add TM-02 Offerte aangevraagd bij drukker`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCommentAdd,
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}
	c, err := a.store.AddComment(t.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if c == nil {
		return errors.NotFound("ticket %s not found", args[0])
	}

	if IsJSON() {
		return printJSON(c)
	}
	OutputLine("Added comment %d to %s", c.ID, t.TicketNumber)
	return nil
}

var commentListCmd = &cobra.Command{
	Use:   "list <ticket>",
	Short: "List the comments of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

func runCommentList(cmd *cobra.Command, args []string) error {
	a, err := openStore()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.ResolveTicket(args[0])
	if err != nil {
		return withSuggestion(err, SuggestListTickets)
	}

	if IsJSON() {
		return printJSON(t.Comments)
	}
	if len(t.Comments) == 0 {
		OutputLine("No comments on %s.", t.TicketNumber)
		return nil
	}
	fmt.Printf("%-15s %-9s %s\n", "ID", "AGE", "TEXT")
	for _, c := range t.Comments {
		fmt.Printf("%-15d %-9s %s\n", c.ID, common.FormatAge(c.CreatedAt), c.Text)
	}
	return nil
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <ticket> <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentDelete,
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	commentID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errors.InvalidArgs("invalid comment id %q", args[1])
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
	deleted, err := a.store.DeleteComment(t.ID, commentID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("comment %d not found on %s", commentID, t.TicketNumber)
	}

	OutputLine("Deleted comment %d from %s", commentID, t.TicketNumber)
	return nil
}
