package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"larose-cli/api"
	"larose-cli/pager"
	"larose-cli/query"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office commands (administrators only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			_, err := requireAdmin()
			return err
		},
	}

	cmd.AddCommand(adminRoomsCmd())
	cmd.AddCommand(adminReviewsCmd())
	cmd.AddCommand(adminCustomersCmd())
	cmd.AddCommand(adminBookingsCmd())
	cmd.AddCommand(adminPaymentsCmd())
	cmd.AddCommand(adminServicesCmd())
	return cmd
}

// loadPage applies filters and moves to the 1-based page.
func loadPage[T, F any](ctx context.Context, c *pager.Controller[T, F], filters F, page int) error {
	if page < 1 {
		return fmt.Errorf("--page must be 1 or greater")
	}
	if err := c.Apply(ctx, filters); err != nil {
		return err
	}
	if page == 1 {
		return nil
	}
	if total := c.Snapshot().TotalPages; page > total {
		return fmt.Errorf("page %d is out of range (%d pages)", page, total)
	}
	return c.ChangePage(ctx, page-1)
}

func adminRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}

	var filters query.Filters
	var page int
	var size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List rooms with their codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size == 0 {
				size = cfg.DefaultPageSize
			}
			if err := checkPageSize(size, roomPageSizes); err != nil {
				return err
			}
			rooms := newRoomPager(size)
			defer rooms.Close()
			if err := loadPage(cmd.Context(), rooms, filters, page); err != nil {
				return err
			}
			return renderRooms(cmd.OutOrStdout(), rooms.Snapshot())
		},
	}
	list.Flags().StringVar(&filters.Keyword, "keyword", "", "Search keyword")
	list.Flags().StringVar(&filters.TypeID, "type", "", "Room type ID")
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 0, "Page size ("+joinInts(roomPageSizes)+")")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <room-code>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			if err := client.DeleteRoom(cmd.Context(), code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted room %s.\n", code)
			return nil
		},
	})
	cmd.AddCommand(adminRoomCreateCmd())
	cmd.AddCommand(adminRoomUpdateCmd())
	cmd.AddCommand(adminRoomStatusCmd())
	return cmd
}

func fetchReviews(ctx context.Context, req pager.Request[string]) (pager.Result[api.Review], error) {
	page, err := client.ListReviewsAdmin(ctx, req.Filters, req.Page, req.Size)
	if err != nil {
		return pager.Result[api.Review]{}, err
	}
	return pager.Result[api.Review]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

func adminReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Moderate reviews",
	}

	var status string
	var page int
	var size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPageSize(size, reviewPageSizes); err != nil {
				return err
			}
			status = strings.ToLower(strings.TrimSpace(status))
			if status != "" && !slices.Contains(api.ReviewStatuses, status) {
				return fmt.Errorf("--status must be one of %s", strings.Join(api.ReviewStatuses, ", "))
			}
			reviews := pager.New(fetchReviews, pager.Options{
				Sizes:       reviewPageSizes,
				DefaultSize: size,
				Logger:      logger.WithName("reviews"),
			})
			defer reviews.Close()
			if err := loadPage(cmd.Context(), reviews, status, page); err != nil {
				return err
			}
			return renderReviews(cmd.OutOrStdout(), reviews.Snapshot())
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status ("+strings.Join(api.ReviewStatuses, ", ")+")")
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 20, "Page size ("+joinInts(reviewPageSizes)+")")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "status <review-id> <status>",
		Short: "Publish, hide or re-queue a review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			review, err := client.UpdateReviewStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), review)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d is now %s.\n", review.ID, review.Status)
			return nil
		},
	})

	var responseID int64
	respond := &cobra.Command{
		Use:   "respond <review-id> <text>",
		Short: "Reply to a review, or edit a reply with --update",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")

			var response api.ReviewResponse
			if responseID > 0 {
				response, err = client.UpdateReviewResponse(cmd.Context(), responseID, content)
			} else {
				response, err = client.CreateReviewResponse(cmd.Context(), id, content)
			}
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), response)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved response %d on review %d.\n", response.ID, id)
			return nil
		},
	}
	respond.Flags().Int64Var(&responseID, "update", 0, "Edit this existing response instead of adding one")
	cmd.AddCommand(respond)

	var isResponse bool
	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a review, or a response with --response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "review"
			if isResponse {
				what = "response"
			}
			id, err := parseID(args[0], what)
			if err != nil {
				return err
			}
			if isResponse {
				err = client.DeleteReviewResponse(cmd.Context(), id)
			} else {
				err = client.DeleteReview(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d.\n", what, id)
			return nil
		},
	}
	remove.Flags().BoolVar(&isResponse, "response", false, "The id is a response id")
	cmd.AddCommand(remove)
	return cmd
}

func renderReviews(w io.Writer, state pager.State[api.Review, string]) error {
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
		fmt.Fprintln(w, "No reviews found.")
		return nil
	}

	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tRATING\tSTATUS\tROOM\tGUEST\tTITLE\tREPLIES")
	}
	for _, r := range state.Content {
		fmt.Fprintf(table, "%d\t%d\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Rating, r.Status, orDash(r.RoomCode), orDash(r.UserEmail), orDash(r.Title), len(r.Responses))
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintln(w, pageFooter(state.Page, state.TotalPages, state.TotalElements, "reviews"))
	}
	return nil
}

type customerFilters struct {
	Search string
	Active string
	Role   string
}

func (f customerFilters) values(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sortBy", "createdAt")
	q.Set("sortDirection", "desc")
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Active != "" {
		q.Set("isActive", f.Active)
	}
	if f.Role != "" {
		q.Set("role", strings.ToUpper(f.Role))
	}
	return q
}

func fetchCustomers(ctx context.Context, req pager.Request[customerFilters]) (pager.Result[api.User], error) {
	page, err := client.ListUsers(ctx, req.Filters.values(req.Page, req.Size))
	if err != nil {
		return pager.Result[api.User]{}, err
	}
	return pager.Result[api.User]{
		Content:       page.Content,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}, nil
}

func adminCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage customer accounts",
	}

	var filters customerFilters
	var page int
	var size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPageSize(size, customerPageSizes); err != nil {
				return err
			}
			if filters.Active != "" && filters.Active != "true" && filters.Active != "false" {
				return fmt.Errorf("--active must be true or false")
			}
			customers := pager.New(fetchCustomers, pager.Options{
				Sizes:       customerPageSizes,
				DefaultSize: size,
				Logger:      logger.WithName("customers"),
			})
			defer customers.Close()
			if err := loadPage(cmd.Context(), customers, filters, page); err != nil {
				return err
			}
			return renderCustomers(cmd.OutOrStdout(), customers.Snapshot())
		},
	}
	list.Flags().StringVar(&filters.Search, "search", "", "Match name, email or phone")
	list.Flags().StringVar(&filters.Active, "active", "", "Filter by active flag (true or false)")
	list.Flags().StringVar(&filters.Role, "role", "", "Filter by role, e.g. customer or admin")
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&size, "size", 20, "Page size ("+joinInts(customerPageSizes)+")")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			user, err := client.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderCustomer(cmd.OutOrStdout(), user)
		},
	})

	var update api.UserUpdate
	var active string
	edit := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change a customer's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if active != "" {
				value, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("--active must be true or false")
				}
				update.IsActive = &value
			}
			user, err := client.UpdateUser(cmd.Context(), id, update)
			if err != nil {
				return err
			}
			return renderCustomer(cmd.OutOrStdout(), user)
		},
	}
	edit.Flags().StringVar(&update.Email, "email", "", "New email")
	edit.Flags().StringVar(&update.FullName, "name", "", "New full name")
	edit.Flags().StringVar(&update.Phone, "phone", "", "New phone number")
	edit.Flags().StringVar(&active, "active", "", "Set the active flag (true or false)")
	cmd.AddCommand(edit)

	actions := []struct {
		use   string
		short string
		done  string
		run   func(*api.Client, context.Context, int64) (api.User, error)
	}{
		{"activate", "Activate an account", "activated", (*api.Client).ActivateUser},
		{"deactivate", "Deactivate an account", "deactivated", (*api.Client).DeactivateUser},
		{"restore", "Restore a deleted account", "restored", (*api.Client).RestoreUser},
	}
	for _, action := range actions {
		cmd.AddCommand(&cobra.Command{
			Use:   action.use + " <user-id>",
			Short: action.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "user")
				if err != nil {
					return err
				}
				user, err := action.run(client, cmd.Context(), id)
				if err != nil {
					return err
				}
				if outputJSON {
					return writeJSON(cmd.OutOrStdout(), user)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Account %d %s.\n", id, action.done)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if err := client.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d deleted.\n", id)
			return nil
		},
	})
	return cmd
}

func renderCustomers(w io.Writer, state pager.State[api.User, customerFilters]) error {
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
		fmt.Fprintln(w, "No customers found.")
		return nil
	}

	table := newTable(w)
	if !outputCompact {
		fmt.Fprintln(table, "ID\tEMAIL\tNAME\tPHONE\tACTIVE\tVERIFIED\tROLES")
	}
	for _, u := range state.Content {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%t\t%t\t%s\n",
			u.ID, u.Email, orDash(u.FullName), orDash(u.Phone), u.IsActive, u.EmailVerified, orDash(strings.Join(u.Roles, ",")))
	}
	if err := table.Flush(); err != nil {
		return err
	}
	if !outputCompact {
		fmt.Fprintln(w, pageFooter(state.Page, state.TotalPages, state.TotalElements, "customers"))
	}
	return nil
}

func renderCustomer(w io.Writer, u api.User) error {
	if outputJSON {
		return writeJSON(w, u)
	}
	fmt.Fprintf(w, "ID: %d\n", u.ID)
	fmt.Fprintf(w, "Email: %s\n", u.Email)
	fmt.Fprintf(w, "Name: %s\n", orDash(u.FullName))
	fmt.Fprintf(w, "Phone: %s\n", orDash(u.Phone))
	fmt.Fprintf(w, "Active: %t, verified: %t\n", u.IsActive, u.EmailVerified)
	fmt.Fprintf(w, "Roles: %s\n", orDash(strings.Join(u.Roles, ", ")))
	fmt.Fprintf(w, "Last login: %s\n", orDash(u.LastLogin))
	return nil
}
