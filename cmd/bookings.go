package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/calendar"
	"larose-cli/logging"
	"larose-cli/pager"
	"larose-cli/storage"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var bookingStatuses = []string{"pending", "confirmed", "checked_in", "checked_out", "cancelled", "no_show"}

type BookingStats struct {
	TotalBookings         int     `json:"total_bookings"`
	TotalNights           int     `json:"total_nights"`
	TotalSpent            float64 `json:"total_spent"`
	FavouriteRoomType     string  `json:"favourite_room_type"`
	FavouriteRoomTypeStay int     `json:"favourite_room_type_stays"`
	LastStay              string  `json:"last_stay"`
	NextStay              string  `json:"next_stay"`
}

func bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your bookings",
	}

	cmd.AddCommand(bookingsListCmd())
	cmd.AddCommand(bookingsCancelCmd())
	cmd.AddCommand(bookingsRemoveCmd())
	cmd.AddCommand(bookingsStatsCmd())
	cmd.AddCommand(bookingsSyncCmd())
	return cmd
}

func bookingsListCmd() *cobra.Command {
	var status string
	var page int
	var size int
	var local bool
	var past bool
	var from string
	var to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			status = strings.ToLower(strings.TrimSpace(status))
			if status != "" && !slices.Contains(bookingStatuses, status) {
				return fmt.Errorf("--status must be one of %s", strings.Join(bookingStatuses, ", "))
			}
			if local {
				return listLocalBookings(cmd.OutOrStdout(), status, past, from, to)
			}
			if err := checkPageSize(size, historyPageSizes); err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be 1 or greater")
			}
			if _, err := requireSession(); err != nil {
				return err
			}

			ctx := cmd.Context()
			history := pager.New(fetchBookingHistory, pager.Options{
				Sizes:       historyPageSizes,
				DefaultSize: size,
				Logger:      logger.WithName("bookings"),
			})
			defer history.Close()

			if err := history.Apply(ctx, status); err != nil {
				return err
			}
			if page > 1 {
				if total := history.Snapshot().TotalPages; page > total {
					return fmt.Errorf("page %d is out of range (%d pages)", page, total)
				}
				if err := history.ChangePage(ctx, page-1); err != nil {
					return err
				}
			}
			state := history.Snapshot()

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, map[string]any{
					"page":          state.Page,
					"size":          state.Size,
					"totalPages":    state.TotalPages,
					"totalElements": state.TotalElements,
					"content":       state.Content,
				})
			}
			if len(state.Content) == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}
			if err := renderBookings(out, state.Content); err != nil {
				return err
			}
			if !outputCompact {
				fmt.Fprintln(out, pageFooter(state.Page, state.TotalPages, state.TotalElements, "bookings"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status ("+strings.Join(bookingStatuses, ", ")+")")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 10, "Page size ("+joinInts(historyPageSizes)+")")
	cmd.Flags().BoolVar(&local, "local", false, "List the local copy instead of asking the backend")
	cmd.Flags().BoolVar(&past, "past", false, "With --local: list past stays")
	cmd.Flags().StringVar(&from, "from", "", "With --local: check-in on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "With --local: check-in on or before (YYYY-MM-DD)")
	return cmd
}

func fetchBookingHistory(ctx context.Context, req pager.Request[string]) (pager.Result[api.Booking], error) {
	page, err := client.GetBookingHistory(ctx, req.Filters, req.Page, req.Size)
	if err != nil {
		return pager.Result[api.Booking]{}, err
	}
	return pager.Result[api.Booking]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

func renderBookings(w io.Writer, bookings []api.Booking) error {
	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tCODE\tROOM\tCHECK-IN\tCHECK-OUT\tGUESTS\tTOTAL\tSTATUS")
	}
	for _, b := range bookings {
		room := b.RoomTitle
		if room == "" {
			room = fmt.Sprintf("#%d", b.RoomID)
		}
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, orDash(b.BookingCode), room, b.CheckIn, b.CheckOut, b.Guests, formatVND(b.PriceTotal), orDash(b.Status))
	}
	return table.Flush()
}

func listLocalBookings(w io.Writer, status string, past bool, from, to string) error {
	loc := cfg.location()
	now := time.Now()
	filter := storage.BookingFilter{Status: status}
	if from != "" {
		day, err := parseDateInput(from, now, loc)
		if err != nil {
			return err
		}
		filter.From = day.String()
	}
	if to != "" {
		day, err := parseDateInput(to, now, loc)
		if err != nil {
			return err
		}
		filter.To = day.String()
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return fmt.Errorf("--from must be on or before --to")
	}
	filter.NowDate = calendar.DayOf(now.In(loc)).String()
	if filter.From == "" && filter.To == "" {
		if past {
			filter.Past = true
		} else {
			filter.Upcoming = true
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	bookings, err := storage.ListBookings(db, filter)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(w, bookings)
	}
	if len(bookings) == 0 {
		fmt.Fprintln(w, "No bookings found.")
		return nil
	}

	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tCODE\tROOM\tCHECK-IN\tCHECK-OUT\tNIGHTS\tTOTAL\tSTATUS")
	}
	for _, b := range bookings {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, orDash(b.BookingCode), orDash(b.RoomTitle), b.CheckIn, b.CheckOut, b.Nights, formatVND(b.PriceTotal), orDash(b.Status))
	}
	return table.Flush()
}

func bookingsCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			if _, err := requireSession(); err != nil {
				return err
			}

			message, err := client.CancelBooking(cmd.Context(), id)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := storage.SetBookingStatus(db, id, "cancelled"); err != nil {
				logger.Error(err, "update local booking", "id", id)
			}

			if message == "" {
				message = fmt.Sprintf("Booking %d cancelled.", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}

	return cmd
}

func bookingsRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <booking-id>",
		Short: "Remove a booking from the local copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := storage.RemoveBooking(db, id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("booking %d not found", id)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed booking %d.\n", id)
			return nil
		},
	}

	return cmd
}

func bookingsStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stay statistics from the local copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			bookings, err := storage.ListBookings(db, storage.BookingFilter{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(bookings) == 0 {
				fmt.Fprintln(out, "No bookings found. Run 'larose bookings sync' first.")
				return nil
			}

			today := calendar.DayOf(time.Now().In(cfg.location())).String()
			stats := computeBookingStats(bookings, today)
			if outputJSON {
				return writeJSON(out, stats)
			}

			fmt.Fprintf(out, "Total bookings: %d\n", stats.TotalBookings)
			fmt.Fprintf(out, "Total nights: %d\n", stats.TotalNights)
			fmt.Fprintf(out, "Total spent: %s\n", formatVND(stats.TotalSpent))
			fmt.Fprintf(out, "Favourite room type: %s (%d stays)\n", stats.FavouriteRoomType, stats.FavouriteRoomTypeStay)
			fmt.Fprintf(out, "Last stay: %s\n", stats.LastStay)
			fmt.Fprintf(out, "Next stay: %s\n", stats.NextStay)
			return nil
		},
	}

	return cmd
}

// computeBookingStats ignores cancelled bookings. today is YYYY-MM-DD.
func computeBookingStats(bookings []storage.Booking, today string) BookingStats {
	stats := BookingStats{LastStay: "N/A", NextStay: "N/A"}

	typeCounts := map[string]int{}
	for _, b := range bookings {
		if b.Status == "cancelled" {
			continue
		}
		stats.TotalBookings++
		stats.TotalNights += b.Nights
		stats.TotalSpent += b.PriceTotal
		if b.RoomTypeName != "" {
			typeCounts[b.RoomTypeName]++
		}
		if b.CheckIn < today && (stats.LastStay == "N/A" || b.CheckIn > stats.LastStay) {
			stats.LastStay = b.CheckIn
		}
		if b.CheckIn >= today && (stats.NextStay == "N/A" || b.CheckIn < stats.NextStay) {
			stats.NextStay = b.CheckIn
		}
	}

	stats.FavouriteRoomType, stats.FavouriteRoomTypeStay = topCount(typeCounts)
	return stats
}

func topCount(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	top := ""
	best := 0
	for _, key := range keys {
		if counts[key] > best {
			best = counts[key]
			top = key
		}
	}
	if top == "" {
		return "N/A", 0
	}
	return top, best
}

func bookingsSyncCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy your booking history from the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			if err := checkPageSize(size, historyPageSizes); err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := syncBookings(cmd.Context(), db, size, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, result)
			}
			fmt.Fprintf(out, "Sync complete. Added %d, updated %d (total %d).\n", result.Added, result.Updated, result.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 20, "Bookings fetched per request ("+joinInts(historyPageSizes)+")")
	return cmd
}

type syncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Total   int `json:"total_in_account"`
}

func syncBookings(ctx context.Context, db *sqlx.DB, size int, now time.Time) (syncResult, error) {
	log := logging.FromContext(ctx).WithName("sync")
	result := syncResult{}
	for page := 0; ; page++ {
		batch, err := client.GetBookingHistory(ctx, "", page, size)
		if err != nil {
			return result, err
		}
		log.V(1).Info("fetched history page", "page", page, "totalPages", batch.TotalPages, "count", len(batch.Content))
		for _, b := range batch.Content {
			result.Total++
			created, err := storage.SaveBooking(db, ledgerBooking(b, "sync", now))
			if err != nil {
				return result, err
			}
			if created {
				result.Added++
			} else {
				result.Updated++
			}
		}
		if page+1 >= batch.TotalPages || len(batch.Content) == 0 {
			return result, nil
		}
	}
}

// ledgerBooking maps a backend booking onto a local ledger row.
func ledgerBooking(b api.Booking, source string, now time.Time) storage.Booking {
	checkIn := dateOnly(b.CheckIn)
	checkOut := dateOnly(b.CheckOut)
	nights := b.Nights
	if nights == 0 {
		in, errIn := calendar.ParseDay(checkIn)
		out, errOut := calendar.ParseDay(checkOut)
		if errIn == nil && errOut == nil {
			nights = calendar.Nights(in, out)
		}
	}
	return storage.Booking{
		ID:           b.ID,
		BookingCode:  b.BookingCode,
		RoomID:       b.RoomID,
		RoomTitle:    b.RoomTitle,
		RoomTypeName: b.RoomTypeName,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Nights:       nights,
		Guests:       b.Guests,
		PriceTotal:   b.PriceTotal,
		Status:       strings.ToLower(b.Status),
		CreatedAt:    b.CreatedAt,
		SyncedAt:     now.UTC().Format(time.RFC3339),
		Source:       source,
	}
}

func dateOnly(value string) string {
	if day, err := calendar.ParseDay(value); err == nil {
		return day.String()
	}
	return value
}
