package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/pager"

	"github.com/spf13/cobra"
)

type adminBookingFilters struct {
	Status string
	Search string
}

func (f adminBookingFilters) values(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sortBy", "createdAt")
	q.Set("sortDirection", "desc")
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func fetchAllBookings(ctx context.Context, req pager.Request[adminBookingFilters]) (pager.Result[api.Booking], error) {
	page, err := client.ListAllBookings(ctx, req.Filters.values(req.Page, req.Size))
	if err != nil {
		return pager.Result[api.Booking]{}, err
	}
	return pager.Result[api.Booking]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

func adminBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage all guests' bookings",
	}

	var filters adminBookingFilters
	var page int
	var size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPageSize(size, ledgerPageSizes); err != nil {
				return err
			}
			filters.Status = strings.ToLower(strings.TrimSpace(filters.Status))
			if filters.Status != "" && !slices.Contains(api.BookingStatuses, filters.Status) {
				return fmt.Errorf("--status must be one of %s", strings.Join(api.BookingStatuses, ", "))
			}
			bookings := pager.New(fetchAllBookings, pager.Options{
				Sizes:       ledgerPageSizes,
				DefaultSize: size,
				Logger:      logger.WithName("admin-bookings"),
			})
			defer bookings.Close()
			if err := loadPage(cmd.Context(), bookings, filters, page); err != nil {
				return err
			}

			state := bookings.Snapshot()
			w := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(w, map[string]any{
					"page":          state.Page,
					"size":          state.Size,
					"totalPages":    state.TotalPages,
					"totalElements": state.TotalElements,
					"content":       state.Content,
				})
			}
			if len(state.Content) == 0 {
				fmt.Fprintln(w, "No bookings found.")
				return nil
			}
			table := newTable(w)
			if !outputCompact {
				fmt.Fprintln(table, "ID\tCODE\tGUEST\tROOM\tCHECK-IN\tCHECK-OUT\tTOTAL\tSTATUS")
			}
			for _, b := range state.Content {
				fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, orDash(b.BookingCode), orDash(b.UserEmail), roomLabel(b), dateOnly(b.CheckIn), dateOnly(b.CheckOut), formatVND(b.PriceTotal), orDash(b.Status))
			}
			if err := table.Flush(); err != nil {
				return err
			}
			if !outputCompact {
				fmt.Fprintln(w, pageFooter(state.Page, state.TotalPages, state.TotalElements, "bookings"))
			}
			return nil
		},
	}
	list.Flags().StringVar(&filters.Status, "status", "", "Filter by status ("+strings.Join(api.BookingStatuses, ", ")+")")
	list.Flags().StringVar(&filters.Search, "search", "", "Match booking code, guest name or email")
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 20, "Page size ("+joinInts(ledgerPageSizes)+")")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <booking-id>",
		Short: "Show a booking with its services",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			booking, err := client.GetBookingAdmin(cmd.Context(), id)
			if err != nil {
				return err
			}
			extras, err := client.ListBookingServices(cmd.Context(), id)
			if err != nil {
				logger.V(1).Info("booking services unavailable", "booking", id, "error", err.Error())
				extras = []api.BookingService{}
			}
			w := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(w, map[string]any{"booking": booking, "services": extras})
			}
			fmt.Fprintf(w, "Booking %s (id %d), status %s\n", orDash(booking.BookingCode), booking.ID, orDash(booking.Status))
			fmt.Fprintf(w, "Guest: %s %s\n", orDash(booking.UserFullName), orDash(booking.UserEmail))
			fmt.Fprintf(w, "Room: %s\n", roomLabel(booking))
			fmt.Fprintf(w, "Stay: %s to %s, %d guest(s)\n", dateOnly(booking.CheckIn), dateOnly(booking.CheckOut), booking.Guests)
			fmt.Fprintf(w, "Total: %s\n", formatVND(booking.PriceTotal))
			if booking.CancelReason != "" {
				fmt.Fprintf(w, "Cancelled: %s\n", booking.CancelReason)
			}
			if len(extras) > 0 {
				fmt.Fprintln(w)
				return renderBookingServices(w, extras)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <booking-id> <status>",
		Short: "Move a booking to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			booking, err := client.UpdateBookingStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), booking)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %d is now %s.\n", id, orDash(booking.Status))
			return nil
		},
	})

	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking on a guest's behalf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			booking, err := client.CancelBookingAdmin(cmd.Context(), id, reason)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), booking)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %d cancelled.\n", id)
			return nil
		},
	}
	cancel.Flags().StringVar(&reason, "reason", "", "Reason shown to the guest")
	cmd.AddCommand(cancel)
	return cmd
}

func roomLabel(b api.Booking) string {
	if b.RoomTitle != "" {
		return b.RoomTitle
	}
	return fmt.Sprintf("#%d", b.RoomID)
}

type paymentFilters struct {
	Status   string
	Provider string
	From     string
	To       string
}

func (f paymentFilters) values(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sortBy", "createdAt")
	q.Set("sortDirection", "desc")
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Provider != "" {
		q.Set("provider", f.Provider)
	}
	if f.From != "" {
		q.Set("startDate", f.From)
	}
	if f.To != "" {
		q.Set("endDate", f.To)
	}
	return q
}

func fetchTransactions(ctx context.Context, req pager.Request[paymentFilters]) (pager.Result[api.Transaction], error) {
	page, err := client.ListTransactions(ctx, req.Filters.values(req.Page, req.Size))
	if err != nil {
		return pager.Result[api.Transaction]{}, err
	}
	return pager.Result[api.Transaction]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

// matchBookingCode keeps transactions whose booking code contains code. The
// backend cannot search by booking code, so this only narrows the loaded page.
func matchBookingCode(txs []api.Transaction, code string) []api.Transaction {
	needle := strings.ToLower(strings.TrimSpace(code))
	if needle == "" {
		return txs
	}
	out := []api.Transaction{}
	for _, tx := range txs {
		if tx.Booking != nil && strings.Contains(strings.ToLower(tx.Booking.BookingCode), needle) {
			out = append(out, tx)
		}
	}
	return out
}

func adminPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Review payment transactions",
	}

	var filters paymentFilters
	var bookingCode string
	var page int
	var size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPageSize(size, ledgerPageSizes); err != nil {
				return err
			}
			filters.Status = strings.ToLower(strings.TrimSpace(filters.Status))
			if filters.Status != "" && !slices.Contains(api.TransactionStatuses, filters.Status) {
				return fmt.Errorf("--status must be one of %s", strings.Join(api.TransactionStatuses, ", "))
			}
			filters.Provider = strings.ToUpper(strings.TrimSpace(filters.Provider))
			loc := cfg.location()
			now := time.Now()
			for _, d := range []*string{&filters.From, &filters.To} {
				if *d == "" {
					continue
				}
				day, err := parseDateInput(*d, now, loc)
				if err != nil {
					return err
				}
				*d = day.String()
			}

			txs := pager.New(fetchTransactions, pager.Options{
				Sizes:       ledgerPageSizes,
				DefaultSize: size,
				Logger:      logger.WithName("payments"),
			})
			defer txs.Close()
			if err := loadPage(cmd.Context(), txs, filters, page); err != nil {
				return err
			}

			state := txs.Snapshot()
			content := matchBookingCode(state.Content, bookingCode)
			w := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(w, map[string]any{
					"page":          state.Page,
					"size":          state.Size,
					"totalPages":    state.TotalPages,
					"totalElements": state.TotalElements,
					"content":       content,
				})
			}
			return renderTransactions(w, content, state)
		},
	}
	list.Flags().StringVar(&filters.Status, "status", "", "Filter by status ("+strings.Join(api.TransactionStatuses, ", ")+")")
	list.Flags().StringVar(&filters.Provider, "provider", "", "Filter by provider (vnpay, cash)")
	list.Flags().StringVar(&filters.From, "from", "", "Created on or after this date")
	list.Flags().StringVar(&filters.To, "to", "", "Created on or before this date")
	list.Flags().StringVar(&bookingCode, "booking", "", "Only show this page's rows whose booking code contains this text")
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 20, "Page size ("+joinInts(ledgerPageSizes)+")")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "status <transaction-id> <status>",
		Short: "Mark a transaction as " + strings.Join(api.TransactionStatuses, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			tx, err := client.UpdateTransactionStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), tx)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %d is now %s.\n", id, orDash(tx.Status))
			return nil
		},
	})
	return cmd
}

func renderTransactions(w io.Writer, txs []api.Transaction, state pager.State[api.Transaction, paymentFilters]) error {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return nil
	}
	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tREF\tBOOKING\tGUEST\tPROVIDER\tAMOUNT\tSTATUS\tCREATED")
	}
	for _, tx := range txs {
		code, guest := "-", "-"
		if tx.Booking != nil {
			code = orDash(tx.Booking.BookingCode)
			guest = orDash(tx.Booking.UserEmail)
		}
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, orDash(tx.ProviderTransactionID), code, guest, orDash(tx.Provider), formatVND(tx.Amount), orDash(tx.Status), orDash(tx.CreatedAt))
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintln(w, pageFooter(state.Page, state.TotalPages, state.TotalElements, "transactions"))
	}
	return nil
}

func adminServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage the extra services catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every service, active or not",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := client.ListServices(cmd.Context(), false)
			if err != nil {
				return err
			}
			return renderServices(cmd.OutOrStdout(), services)
		},
	})

	var form serviceForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := form.service(cmd, api.Service{Unit: api.ServiceUnits[0], Category: "OTHER"})
			if err != nil {
				return err
			}
			created, err := client.CreateService(cmd.Context(), svc)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created service %d (%s).\n", created.ID, created.Name)
			return nil
		},
	}
	form.bind(create)
	cmd.AddCommand(create)

	var edit serviceForm
	update := &cobra.Command{
		Use:   "update <service-id>",
		Short: "Change a service; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "service")
			if err != nil {
				return err
			}
			services, err := client.ListServices(cmd.Context(), false)
			if err != nil {
				return err
			}
			i := slices.IndexFunc(services, func(s api.Service) bool { return s.ID == id })
			if i < 0 {
				return fmt.Errorf("service %d not found", id)
			}
			svc, err := edit.service(cmd, services[i])
			if err != nil {
				return err
			}
			updated, err := client.UpdateService(cmd.Context(), id, svc)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated service %d.\n", id)
			return nil
		},
	}
	edit.bind(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <service-id>",
		Short: "Delete a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "service")
			if err != nil {
				return err
			}
			if err := client.DeleteService(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted service %d.\n", id)
			return nil
		},
	})
	return cmd
}

type serviceForm struct {
	name        string
	description string
	price       float64
	unit        string
	category    string
	active      bool
}

func (f *serviceForm) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Service name")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Price in VND")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Billing unit ("+strings.Join(api.ServiceUnits, ", ")+")")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
	cmd.Flags().BoolVar(&f.active, "active", true, "Offer the service to guests")
}

// service overlays the flags the user set onto base.
func (f *serviceForm) service(cmd *cobra.Command, base api.Service) (api.Service, error) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		base.Name = strings.TrimSpace(f.name)
	}
	if flags.Changed("description") {
		base.Description = f.description
	}
	if flags.Changed("price") {
		base.Price = f.price
	}
	if flags.Changed("unit") {
		if !slices.Contains(api.ServiceUnits, f.unit) {
			return api.Service{}, fmt.Errorf("--unit must be one of %s", strings.Join(api.ServiceUnits, ", "))
		}
		base.Unit = f.unit
	}
	if flags.Changed("category") {
		base.Category = strings.ToUpper(strings.TrimSpace(f.category))
	}
	if flags.Changed("active") || base.IsActive == nil {
		active := f.active
		base.IsActive = &active
	}
	return base, nil
}

func renderServices(w io.Writer, services []api.Service) error {
	if outputJSON {
		return writeJSON(w, services)
	}
	if len(services) == 0 {
		fmt.Fprintln(w, "No services.")
		return nil
	}
	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tNAME\tPRICE\tUNIT\tCATEGORY\tACTIVE")
	}
	for _, s := range services {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%t\n", s.ID, s.Name, formatVND(s.Price), orDash(s.Unit), orDash(s.Category), s.Active())
	}
	return table.Flush()
}

func renderBookingServices(w io.Writer, items []api.BookingService) error {
	if outputJSON {
		return writeJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No services on this booking.")
		return nil
	}
	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tSERVICE\tQTY\tUNIT PRICE\tTOTAL\tNOTES")
	}
	var total float64
	for _, item := range items {
		total += item.TotalPrice
		fmt.Fprintf(table, "%d\t%s\t%d\t%s\t%s\t%s\n",
			item.ID, orDash(item.ServiceName), item.Quantity, formatVND(item.PricePerUnit), formatVND(item.TotalPrice), orDash(item.Notes))
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintf(w, "Services total: %s\n", formatVND(total))
	}
	return nil
}

type roomForm struct {
	code         string
	typeID       int64
	title        string
	description  string
	capacity     int
	price        float64
	status       string
	amenities    []string
	deleteImages []int64
}

func (f *roomForm) bind(cmd *cobra.Command, withImages bool) {
	cmd.Flags().StringVar(&f.code, "code", "", "Room code, e.g. R-201")
	cmd.Flags().Int64Var(&f.typeID, "type", 0, "Room type ID")
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "Maximum guests")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Nightly price in VND")
	cmd.Flags().StringVar(&f.status, "status", "", "Status ("+strings.Join(api.RoomStatuses, ", ")+")")
	cmd.Flags().StringSliceVar(&f.amenities, "amenity", nil, "Amenity key, or key=false to turn one off (repeatable)")
	if withImages {
		cmd.Flags().Int64SliceVar(&f.deleteImages, "delete-image", nil, "Image ID to remove (repeatable)")
	}
}

// apply overlays the flags the user set onto req.
func (f *roomForm) apply(cmd *cobra.Command, req *api.RoomRequest) error {
	flags := cmd.Flags()
	if flags.Changed("code") {
		req.Code = f.code
	}
	if flags.Changed("type") {
		req.RoomTypeID = f.typeID
	}
	if flags.Changed("title") {
		req.Title = f.title
	}
	if flags.Changed("description") {
		req.Description = f.description
	}
	if flags.Changed("capacity") {
		req.Capacity = f.capacity
	}
	if flags.Changed("price") {
		req.Price = f.price
	}
	if flags.Changed("status") {
		req.Status = f.status
	}
	if req.Amenities == nil {
		req.Amenities = api.Amenities{}
	}
	for _, entry := range f.amenities {
		key, value, found := strings.Cut(entry, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return fmt.Errorf("--amenity needs a key")
		}
		on := true
		if found {
			parsed, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("--amenity %s: value must be true or false", key)
			}
			on = parsed
		}
		req.Amenities[key] = on
	}
	req.DeleteImages = f.deleteImages
	return nil
}

func renderSavedRoom(cmd *cobra.Command, verb string, room api.Room) error {
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), room)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s room %s (id %d), status %s.\n", verb, orDash(room.Code), room.ID, orDash(room.Status))
	return nil
}

func adminRoomCreateCmd() *cobra.Command {
	var form roomForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.RoomRequest
			if err := form.apply(cmd, &req); err != nil {
				return err
			}
			room, err := client.CreateRoom(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderSavedRoom(cmd, "Created", room)
		},
	}
	form.bind(cmd, false)
	return cmd
}

func adminRoomUpdateCmd() *cobra.Command {
	var form roomForm
	cmd := &cobra.Command{
		Use:   "update <room-id>",
		Short: "Change a room; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "room")
			if err != nil {
				return err
			}
			current, err := client.GetRoom(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := api.RequestFor(current)
			if err := form.apply(cmd, &req); err != nil {
				return err
			}
			room, err := client.UpdateRoom(cmd.Context(), current.Code, req)
			if err != nil {
				return err
			}
			return renderSavedRoom(cmd, "Updated", room)
		},
	}
	form.bind(cmd, true)
	return cmd
}

func adminRoomStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <room-id> <status>",
		Short: "Set a room " + strings.Join(api.RoomStatuses, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "room")
			if err != nil {
				return err
			}
			current, err := client.GetRoom(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := api.RequestFor(current)
			req.Status = args[1]
			room, err := client.UpdateRoom(cmd.Context(), current.Code, req)
			if err != nil {
				return err
			}
			return renderSavedRoom(cmd, "Updated", room)
		},
	}
}
