package cmd

import (
	"fmt"
	"io"
	"strings"

	"larose-cli/api"

	"github.com/spf13/cobra"
)

func reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write reviews of your stays",
	}

	cmd.AddCommand(reviewsWriteCmd())
	cmd.AddCommand(reviewsShowCmd())
	return cmd
}

func reviewsWriteCmd() *cobra.Command {
	var req api.ReviewRequest

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Review a stay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			review, err := client.CreateReview(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, review)
			}
			fmt.Fprintf(out, "Review %d saved (%s).\n", review.ID, orDash(review.Status))
			return nil
		},
	}

	cmd.Flags().Int64Var(&req.BookingID, "booking", 0, "Booking ID")
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.Title, "title", "", "Title")
	cmd.Flags().StringVar(&req.Content, "content", "", "Review text")
	return cmd
}

func reviewsShowCmd() *cobra.Command {
	var bookingID int64

	cmd := &cobra.Command{
		Use:   "show [review-id]",
		Short: "Show a review, or the review of a booking with --booking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var review api.Review
			switch {
			case bookingID > 0:
				if _, err := requireSession(); err != nil {
					return err
				}
				found, err := client.GetBookingReview(ctx, bookingID)
				if api.IsNotFound(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "Booking %d has no review yet.\n", bookingID)
					return nil
				}
				if err != nil {
					return err
				}
				review = found
			case len(args) == 1:
				id, err := parseID(args[0], "review")
				if err != nil {
					return err
				}
				if review, err = client.GetReview(ctx, id); err != nil {
					return err
				}
			default:
				return fmt.Errorf("pass a review id or --booking")
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), review)
			}
			renderReview(cmd.OutOrStdout(), review)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bookingID, "booking", 0, "Show the review left for this booking")
	return cmd
}

func renderReview(w io.Writer, r api.Review) {
	fmt.Fprintf(w, "%s %s\n", strings.Repeat("*", r.Rating), orDash(r.Title))
	fmt.Fprintf(w, "Room %s, booking %s, %s\n", orDash(r.RoomCode), orDash(r.BookingCode), orDash(r.Status))
	if r.Content != "" {
		fmt.Fprintln(w, r.Content)
	}
	for _, resp := range r.Responses {
		fmt.Fprintf(w, "  %s replied: %s\n", orDash(resp.ResponderName), resp.Content)
	}
}
