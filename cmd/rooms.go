package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/calendar"
	"larose-cli/history"
	"larose-cli/pager"
	"larose-cli/query"

	"github.com/spf13/cobra"
)

type roomPager = pager.Controller[api.Room, query.Filters]

func roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse rooms",
	}

	cmd.AddCommand(roomsListCmd())
	cmd.AddCommand(roomsShowCmd())
	cmd.AddCommand(roomsTypesCmd())
	cmd.AddCommand(roomsBookedDatesCmd())
	return cmd
}

func fetchRooms(ctx context.Context, req pager.Request[query.Filters]) (pager.Result[api.Room], error) {
	page, err := client.ListRooms(ctx, query.Build(req.Filters, req.Page, req.Size))
	if err != nil {
		return pager.Result[api.Room]{}, err
	}
	return pager.Result[api.Room]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

func newRoomPager(size int) *roomPager {
	return pager.New(fetchRooms, pager.Options{
		Sizes:       roomPageSizes,
		DefaultSize: size,
		Logger:      logger.WithName("rooms"),
	})
}

func roomsListCmd() *cobra.Command {
	var filters query.Filters
	var page int
	var size int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size == 0 {
				size = cfg.DefaultPageSize
			}
			if err := checkPageSize(size, roomPageSizes); err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be 1 or greater")
			}
			if filters.Capacity != "" {
				if _, ok := query.ParseCapacity(filters.Capacity); !ok {
					return fmt.Errorf("--capacity must be a positive number")
				}
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			store := historyStore(db)

			ctx := cmd.Context()
			rooms := newRoomPager(size)
			defer rooms.Close()

			if interactive {
				browser := newRoomBrowser(rooms, store, filters, cmd.OutOrStdout())
				return browser.run(ctx, cmd.InOrStdin())
			}

			if err := store.Record(filters.Keyword); err != nil {
				logger.Error(err, "record search term")
			}
			if err := rooms.Apply(ctx, filters); err != nil {
				return err
			}
			if page > 1 {
				if total := rooms.Snapshot().TotalPages; page > total {
					return fmt.Errorf("page %d is out of range (%d pages)", page, total)
				}
				if err := rooms.ChangePage(ctx, page-1); err != nil {
					return err
				}
			}
			return renderRooms(cmd.OutOrStdout(), rooms.Snapshot())
		},
	}

	cmd.Flags().StringVar(&filters.Keyword, "keyword", "", "Search keyword")
	cmd.Flags().StringVar(&filters.TypeID, "type", "", "Room type ID")
	cmd.Flags().StringVar(&filters.PriceRange, "price", "", "Price range MIN-MAX, e.g. "+strings.Join(query.PriceRanges[:2], ", "))
	cmd.Flags().StringVar(&filters.Capacity, "capacity", "", "Minimum number of guests")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 0, "Page size ("+joinInts(roomPageSizes)+")")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Page through results interactively")
	return cmd
}

func renderRooms(w io.Writer, state pager.State[api.Room, query.Filters]) error {
	if outputJSON {
		return writeJSON(w, map[string]any{
			"page":          state.Page,
			"size":          state.Size,
			"totalPages":    state.TotalPages,
			"totalElements": state.TotalElements,
			"filters":       state.Filters,
			"content":       state.Content,
		})
	}

	if state.Status == pager.Errored {
		fmt.Fprintf(w, "Could not load rooms: %v\n", state.Err)
	}
	if len(state.Content) == 0 {
		if state.Status != pager.Errored {
			fmt.Fprintln(w, "No rooms found.")
		}
		return nil
	}

	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tCODE\tTITLE\tTYPE\tGUESTS\tPRICE/NIGHT\tSTATUS")
	}
	for _, room := range state.Content {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			room.ID, room.Code, room.Title, orDash(room.Type.Name), room.Capacity, formatVND(room.NightlyPrice()), orDash(room.Status))
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintln(w, pageFooter(state.Page, state.TotalPages, state.TotalElements, "rooms"))
	}
	return nil
}

// roomBrowser drives a room pager from line commands read on stdin.
type roomBrowser struct {
	rooms    *roomPager
	debounce *history.Debouncer
	draft    query.Filters
	out      io.Writer
}

func newRoomBrowser(rooms *roomPager, store *history.Store, filters query.Filters, out io.Writer) *roomBrowser {
	return &roomBrowser{
		rooms:    rooms,
		debounce: history.NewDebouncer(store, history.DefaultDelay, logger.WithName("history")),
		draft:    filters,
		out:      out,
	}
}

const roomBrowserHelp = `n next page, p previous page, g N go to page, s N page size,
k TERM keyword, t ID room type, c N capacity, $ RANGE price range,
x clear filters, r refresh, q quit`

func (b *roomBrowser) run(ctx context.Context, in io.Reader) error {
	defer func() {
		if err := b.debounce.Flush(); err != nil {
			logger.Error(err, "record search term")
		}
	}()

	b.debounce.Observe(b.draft.Keyword)
	b.show(b.rooms.Apply(ctx, b.draft))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(b.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "q", "quit":
			return nil
		case "?", "h", "help":
			fmt.Fprintln(b.out, roomBrowserHelp)
		case "n":
			b.show(b.step(ctx, 1))
		case "p":
			b.show(b.step(ctx, -1))
		case "g":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(b.out, "usage: g N")
				continue
			}
			b.show(b.rooms.ChangePage(ctx, n-1))
		case "s":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(b.out, "usage: s N")
				continue
			}
			err = b.rooms.ChangePageSize(ctx, n)
			if errors.Is(err, pager.ErrInvalidPageSize) {
				fmt.Fprintf(b.out, "page size must be one of %s\n", joinInts(roomPageSizes))
				continue
			}
			b.show(err)
		case "k":
			b.draft.Keyword = arg
			b.debounce.Observe(arg)
			b.show(b.rooms.Apply(ctx, b.draft))
		case "t":
			b.draft.TypeID = arg
			b.show(b.rooms.Apply(ctx, b.draft))
		case "c":
			if _, ok := query.ParseCapacity(arg); arg != "" && !ok {
				fmt.Fprintln(b.out, "capacity must be a positive number")
				continue
			}
			b.draft.Capacity = arg
			b.show(b.rooms.Apply(ctx, b.draft))
		case "$":
			b.draft.PriceRange = arg
			b.show(b.rooms.Apply(ctx, b.draft))
		case "x":
			b.draft = query.Filters{}
			b.debounce.Stop()
			b.show(b.rooms.Apply(ctx, b.draft))
		case "r":
			b.show(b.rooms.Refresh(ctx))
		default:
			fmt.Fprintf(b.out, "unknown command %q (? for help)\n", verb)
		}
	}
}

func (b *roomBrowser) step(ctx context.Context, delta int) error {
	state := b.rooms.Snapshot()
	next := state.Page + delta
	if next < 0 || next >= state.TotalPages {
		fmt.Fprintln(b.out, "no more pages")
		return nil
	}
	return b.rooms.ChangePage(ctx, next)
}

func (b *roomBrowser) show(err error) {
	if errors.Is(err, pager.ErrSuperseded) || errors.Is(err, pager.ErrClosed) {
		return
	}
	if err := renderRooms(b.out, b.rooms.Snapshot()); err != nil {
		logger.Error(err, "render rooms")
	}
}

func roomsShowCmd() *cobra.Command {
	var days int
	var withReviews bool

	cmd := &cobra.Command{
		Use:   "show <room-id>",
		Short: "Show room details and occupied days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "room")
			if err != nil {
				return err
			}
			if days <= 0 {
				return fmt.Errorf("--days must be greater than 0")
			}
			ctx := cmd.Context()

			room, err := client.GetRoom(ctx, id)
			if err != nil {
				return err
			}
			occupied, err := occupiedDays(ctx, id)
			if err != nil {
				return err
			}
			today := calendar.DayOf(time.Now().In(cfg.location()))
			upcoming := daysInWindow(occupied, today, today.AddDays(days))

			var reviews []api.Review
			if withReviews {
				reviews, err = client.ListRoomReviews(ctx, id)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				payload := map[string]any{
					"room":         room,
					"amenities":    room.Amenities.Labels(),
					"occupiedDays": upcoming,
				}
				if withReviews {
					payload["reviews"] = reviews
				}
				return writeJSON(out, payload)
			}

			fmt.Fprintf(out, "%s (%s)\n", room.Title, room.Code)
			fmt.Fprintf(out, "Type: %s\n", orDash(room.Type.Name))
			fmt.Fprintf(out, "Guests: up to %d\n", room.Capacity)
			fmt.Fprintf(out, "Price: %s per night\n", formatVND(room.NightlyPrice()))
			if labels := room.Amenities.Labels(); len(labels) > 0 {
				fmt.Fprintf(out, "Amenities: %s\n", strings.Join(labels, ", "))
			}
			if room.Description != "" && !outputCompact {
				fmt.Fprintf(out, "\n%s\n", room.Description)
			}
			fmt.Fprintf(out, "\nOccupied in the next %d days: ", days)
			if len(upcoming) == 0 {
				fmt.Fprintln(out, "none")
			} else {
				fmt.Fprintln(out, formatDays(upcoming))
			}
			if withReviews {
				renderRoomReviews(out, reviews)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 60, "Days ahead to show occupancy for")
	cmd.Flags().BoolVar(&withReviews, "reviews", false, "Include guest reviews")
	return cmd
}

func renderRoomReviews(w io.Writer, reviews []api.Review) {
	fmt.Fprintf(w, "\nReviews (%d):\n", len(reviews))
	for _, r := range reviews {
		fmt.Fprintf(w, "  %s %s: %s\n", strings.Repeat("*", r.Rating), orDash(r.UserFullName), r.Content)
		for _, resp := range r.Responses {
			fmt.Fprintf(w, "    -> %s: %s\n", orDash(resp.ResponderName), resp.Content)
		}
	}
}

func roomsTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List room types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := client.ListRoomTypes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, types)
			}
			if len(types) == 0 {
				fmt.Fprintln(out, "No room types.")
				return nil
			}

			table := newTable(out)
			if !outputCompact {
				fmt.Fprintln(table, "ID\tNAME\tGUESTS\tBASE PRICE")
			}
			for _, t := range types {
				fmt.Fprintf(table, "%d\t%s\t%d\t%s\n", t.ID, t.Name, t.MaxGuests, formatVND(t.BasePrice))
			}
			return table.Flush()
		},
	}
}

func roomsBookedDatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "booked-dates <room-id>",
		Short: "List every occupied day of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "room")
			if err != nil {
				return err
			}
			occupied, err := occupiedDays(cmd.Context(), id)
			if err != nil {
				return err
			}
			days := occupied.Sorted()

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, days)
			}
			if len(days) == 0 {
				fmt.Fprintln(out, "No booked dates.")
				return nil
			}
			for _, d := range days {
				fmt.Fprintln(out, d)
			}
			return nil
		},
	}
}

func occupiedDays(ctx context.Context, roomID int64) (calendar.DaySet, error) {
	bookings, err := client.GetBookedDates(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return calendar.ExpandOccupiedDays(api.Intervals(bookings, cfg.location())), nil
}

// daysInWindow returns the sorted occupied days in [from, to).
func daysInWindow(set calendar.DaySet, from, to calendar.Day) []calendar.Day {
	out := []calendar.Day{}
	for _, d := range set.Sorted() {
		if d.Before(from) || !d.Before(to) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func formatDays(days []calendar.Day) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
