package cmd

import (
	"fmt"
	"strings"

	"larose-cli/history"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage recent room searches",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyAddCmd())
	cmd.AddCommand(historyRemoveCmd())
	cmd.AddCommand(historyClearCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	var match string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent searches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			terms, err := historyStore(db).List(match, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, terms)
			}
			if len(terms) == 0 {
				fmt.Fprintln(out, "No recent searches.")
				return nil
			}
			for _, term := range terms {
				fmt.Fprintln(out, term)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Only show searches containing this text")
	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, fmt.Sprintf("Maximum entries (at most %d are kept)", history.MaxEntries))
	return cmd
}

func historyAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <term>",
		Short: "Record a search term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(strings.Join(args, " "))
			if term == "" {
				return fmt.Errorf("search term is empty")
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := historyStore(db).Record(term); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q.\n", term)
			return nil
		},
	}
}

func historyRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <term>",
		Short: "Forget one search term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := historyStore(db).Remove(term); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q.\n", term)
			return nil
		},
	}
}

func historyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all search terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := historyStore(db).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
			return nil
		},
	}
}
