package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect stored email drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent drafts",
	Args:  cobra.NoArgs,
	RunE:  runDraftsList,
}

var draftsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print a draft and its inputs as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsGet,
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsDelete,
}

var (
	draftsDatabaseURL string
	draftsLimit       int
)

func init() {
	draftsCmd.PersistentFlags().StringVar(&draftsDatabaseURL, "db-url", "", "Database URL, postgres:// or sqlite:PATH (overrides DATABASE_URL)")
	draftsListCmd.Flags().IntVarP(&draftsLimit, "limit", "n", 20, "Maximum number of drafts to list")

	draftsCmd.AddCommand(draftsListCmd, draftsGetCmd, draftsDeleteCmd)
	rootCmd.AddCommand(draftsCmd)
}

func runDraftsList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := requireDatabase(ctx, draftsDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	drafts, err := database.ListDrafts(ctx, draftsLimit)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No drafts found")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\tCOMPANY\tROLE\tBACKEND\tSUBJECT")
	for _, d := range drafts {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.CreatedAt.Format("2006-01-02 15:04"), d.CompanyName, d.Role, d.Backend, d.Subject)
	}
	return tw.Flush()
}

func runDraftsGet(cmd *cobra.Command, args []string) error {
	id, err := parseDraftID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := requireDatabase(ctx, draftsDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	rec, err := database.GetDraft(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), "", rec)
}

func runDraftsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseDraftID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := requireDatabase(ctx, draftsDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteDraft(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", id)
	return nil
}

func parseDraftID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid draft ID %q: %w", s, err)
	}
	return id, nil
}
