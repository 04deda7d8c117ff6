package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func servicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Browse extra services and add them to your bookings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the services on offer",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := client.ListServices(cmd.Context(), true)
			if err != nil {
				return err
			}
			return renderServices(cmd.OutOrStdout(), services)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "booking <booking-id>",
		Short: "Show the services added to a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			items, err := client.ListBookingServices(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderBookingServices(cmd.OutOrStdout(), items)
		},
	})

	var quantity int
	var notes string
	add := &cobra.Command{
		Use:   "add <booking-id> <service-id>",
		Short: "Add a service to a booking",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			bookingID, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			serviceID, err := parseID(args[1], "service")
			if err != nil {
				return err
			}
			item, err := client.AddServiceToBooking(cmd.Context(), bookingID, serviceID, quantity, notes)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s to booking %d (%s), line %d.\n",
				item.Quantity, orDash(item.ServiceName), bookingID, formatVND(item.TotalPrice), item.ID)
			return nil
		},
	}
	add.Flags().IntVar(&quantity, "quantity", 1, "How many units")
	add.Flags().StringVar(&notes, "notes", "", "Notes for the front desk")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "quantity <line-id> <quantity>",
		Short: "Change how many units of a booked service you want",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			lineID, err := parseID(args[0], "service line")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("quantity must be a whole number of at least 1")
			}
			item, err := client.UpdateBookingServiceQuantity(cmd.Context(), lineID, n)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Line %d now has %d unit(s).\n", lineID, item.Quantity)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <line-id>",
		Short: "Remove a service from a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			lineID, err := parseID(args[0], "service line")
			if err != nil {
				return err
			}
			if err := client.RemoveBookingService(cmd.Context(), lineID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed line %d.\n", lineID)
			return nil
		},
	})
	return cmd
}
