package cmd

import (
	"context"
	"fmt"

	"larose-cli/history"
	"larose-cli/suggest"

	"github.com/spf13/cobra"
)

func suggestionsCmd() *cobra.Command {
	var refresh bool
	var match string
	var limit int

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Show search suggestions from booking history and recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			cache := suggestionCache(db)
			if refresh {
				if err := cache.Invalidate(); err != nil {
					return err
				}
			}
			suggestions := suggest.Filter(cache.Get(cmd.Context(), fetchSuggestions), match)

			terms, err := historyStore(db).List(match, limit)
			if err != nil {
				return err
			}
			suggestions = append(suggestions, suggest.FromHistory(terms)...)

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, suggestions)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions.")
				return nil
			}

			table := newTable(out)
			if !outputCompact {
				fmt.Fprintln(table, "KIND\tLABEL\tVALUE\tBOOKINGS\tLAST BOOKED")
			}
			for _, s := range suggestions {
				count := "-"
				if s.Kind != suggest.KindHistory {
					count = fmt.Sprint(s.Count)
				}
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n", s.Kind, s.Label, s.Value, count, orDash(s.LastBookedDate))
			}
			return table.Flush()
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore cached suggestions")
	cmd.Flags().StringVar(&match, "match", "", "Only show suggestions containing this text")
	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "Number of recent searches to show")
	return cmd
}

func fetchSuggestions(ctx context.Context) ([]suggest.Raw, error) {
	items, err := client.GetSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	raw := make([]suggest.Raw, 0, len(items))
	for _, item := range items {
		raw = append(raw, suggest.Raw{
			SuggestionType: item.SuggestionType,
			RoomID:         item.RoomID,
			RoomTitle:      item.RoomTitle,
			RoomCode:       item.RoomCode,
			RoomTypeID:     item.RoomTypeID,
			RoomTypeName:   item.RoomTypeName,
			LastBookedDate: item.LastBookedDate,
			BookingCount:   item.BookingCount,
		})
	}
	return raw, nil
}
