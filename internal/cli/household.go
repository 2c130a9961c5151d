package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogenes-ai-code/gtadmin/internal/backend"
	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// Household command flags
var (
	householdEmail        string
	householdPasswordFile string
	householdDays         int
)

func init() {
	householdCmd.PersistentFlags().StringVar(&householdEmail, "email", "", "Account email (default $GTADMIN_BACKEND_EMAIL)")
	householdCmd.PersistentFlags().StringVar(&householdPasswordFile, "password-file", "", "Read the password from a file, - to prompt")
	householdActivityCmd.Flags().IntVar(&householdDays, "days", backend.DefaultActivityDays, "Days of activity to show")

	householdCmd.AddCommand(householdListCmd)
	householdCmd.AddCommand(householdMembersCmd)
	householdCmd.AddCommand(householdInvitationsCmd)
	householdCmd.AddCommand(householdActivityCmd)

	rootCmd.AddCommand(householdCmd)
}

var householdCmd = &cobra.Command{
	Use:   "household",
	Short: "Read pilot households from the hosted backend",
	Long: `Query households, members, invitations and room activity from the
hosted backend configured under [backend].

Each command signs in first. The password is taken from --password-file,
then $GTADMIN_BACKEND_PASSWORD, then an interactive prompt.`,
}

// readPassword resolves the sign-in password without echoing it.
func readPassword() (string, error) {
	if householdPasswordFile != "" && householdPasswordFile != "-" {
		data, err := os.ReadFile(householdPasswordFile)
		if err != nil {
			return "", errors.InvalidArgs("cannot read password file: %v", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	if householdPasswordFile == "" {
		if pw := os.Getenv("GTADMIN_BACKEND_PASSWORD"); pw != "" {
			return pw, nil
		}
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.InvalidArgs("no terminal available for password prompt").
			WithSuggestion("Use --password-file or set GTADMIN_BACKEND_PASSWORD")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.WrapInternal(err, "failed to read password")
	}
	return string(pw), nil
}

// withBackend signs in, runs fn and signs out again.
func withBackend(ctx context.Context, fn func(*backend.Client) error) error {
	client, err := backend.New(GetConfig().Backend, logger)
	if err != nil {
		return err
	}

	email := householdEmail
	if email == "" {
		email = os.Getenv("GTADMIN_BACKEND_EMAIL")
	}
	if email == "" {
		return errors.InvalidArgs("no account email").WithSuggestion("Pass --email or set GTADMIN_BACKEND_EMAIL")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	sess, err := client.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	VerboseOutput("Signed in as %s\n", sess.User.Email)
	defer func() {
		if err := client.SignOut(ctx); err != nil {
			logger.Warn("sign-out failed", "error", err)
		}
	}()

	return fn(client)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

var householdListCmd = &cobra.Command{
	Use:   "list",
	Short: "List households",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd.Context(), func(c *backend.Client) error {
			households, err := c.Households(cmd.Context())
			if err != nil {
				return err
			}
			if IsJSON() {
				return printJSON(households)
			}
			if len(households) == 0 {
				OutputLine("No households found.")
				return nil
			}
			fmt.Printf("%-36s %-24s %-30s %s\n", "ID", "NAME", "BRIDGE OWNER", "CREATED")
			for _, h := range households {
				owner := "-"
				if h.HueConfig != nil {
					owner = h.HueConfig.UserEmail
				}
				fmt.Printf("%-36s %-24s %-30s %s\n", h.ID, truncate(h.Name, 24), owner, common.FormatAge(h.CreatedAt))
			}
			return nil
		})
	},
}

var householdMembersCmd = &cobra.Command{
	Use:   "members <household-id>",
	Short: "List members of a household",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd.Context(), func(c *backend.Client) error {
			members, err := c.Members(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if IsJSON() {
				return printJSON(members)
			}
			if len(members) == 0 {
				OutputLine("No members.")
				return nil
			}
			fmt.Printf("%-24s %-10s %s\n", "NAME", "ROLE", "JOINED")
			for _, m := range members {
				fmt.Printf("%-24s %-10s %s\n", optional(m.DisplayName), m.Role, common.FormatAge(m.CreatedAt))
			}
			return nil
		})
	},
}

var householdInvitationsCmd = &cobra.Command{
	Use:   "invitations <household-id>",
	Short: "List invitations of a household",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd.Context(), func(c *backend.Client) error {
			invitations, err := c.Invitations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if IsJSON() {
				return printJSON(invitations)
			}
			if len(invitations) == 0 {
				OutputLine("No invitations.")
				return nil
			}
			fmt.Printf("%-32s %-10s %-10s %s\n", "EMAIL", "ROLE", "STATE", "EXPIRES")
			for _, inv := range invitations {
				state := "open"
				if inv.AcceptedAt != nil {
					state = "accepted"
				}
				fmt.Printf("%-32s %-10s %-10s %s\n", inv.InvitedEmail, inv.Role, state, common.FormatAge(inv.ExpiresAt))
			}
			return nil
		})
	},
}

var householdActivityCmd = &cobra.Command{
	Use:   "activity <config-id>",
	Short: "Show hourly room activity of a bridge configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if householdDays <= 0 {
			return errors.InvalidArgs("--days must be positive")
		}
		return withBackend(cmd.Context(), func(c *backend.Client) error {
			rows, err := c.RoomActivity(cmd.Context(), args[0], householdDays)
			if err != nil {
				return err
			}
			if IsJSON() {
				return printJSON(rows)
			}
			if len(rows) == 0 {
				OutputLine("No activity in the last %d days.", householdDays)
				return nil
			}
			fmt.Printf("%-16s %-20s %s\n", "HOUR", "ROOM", "EVENTS")
			for _, r := range rows {
				fmt.Printf("%-16s %-20s %d\n", r.Hour.Local().Format("2006-01-02 15:04"), truncate(r.RoomName, 20), r.TotalEvents)
			}
			return nil
		})
	},
}
