package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/storage"

	"github.com/spf13/cobra"
)

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Payments and booking confirmations",
	}

	cmd.AddCommand(payReturnCmd())
	cmd.AddCommand(payStatusCmd())
	cmd.AddCommand(payQRCmd())
	return cmd
}

func payReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <booking-code>",
		Short: "Confirm a booking after the VNPay redirect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			code := strings.TrimSpace(args[0])
			booking, err := client.VNPayReturn(cmd.Context(), code)
			if err != nil {
				return err
			}

			if booking.ID > 0 {
				db, err := openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				if _, err := storage.SaveBooking(db, ledgerBooking(booking, "payment", time.Now())); err != nil {
					logger.Error(err, "save booking locally", "code", code)
				}
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, booking)
			}
			fmt.Fprintf(out, "Booking %s is %s.\n", orDash(booking.BookingCode), orDash(booking.Status))
			fmt.Fprintf(out, "Stay: %s to %s\n", booking.CheckIn, booking.CheckOut)
			if booking.DepositAmount > 0 {
				fmt.Fprintf(out, "Paid: %s of %s\n", formatVND(booking.DepositAmount), formatVND(booking.PriceTotal))
			}
			return nil
		},
	}
}

func payStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <booking-id>",
		Short: "Show the transaction recorded for a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "booking")
			if err != nil {
				return err
			}
			if _, err := requireSession(); err != nil {
				return err
			}

			tx, err := client.GetTransaction(cmd.Context(), id)
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("no transaction recorded for booking %d", id)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, tx)
			}
			fmt.Fprintf(out, "Transaction %d for booking %d\n", tx.ID, tx.BookingID)
			fmt.Fprintf(out, "Provider: %s (%s)\n", orDash(tx.Provider), orDash(tx.ProviderTransactionID))
			fmt.Fprintf(out, "Amount: %s\n", formatVND(tx.Amount))
			fmt.Fprintf(out, "Status: %s\n", orDash(tx.Status))
			return nil
		},
	}
}

func payQRCmd() *cobra.Command {
	var data string
	var file string

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Submit the data from a booking confirmation QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				data = string(raw)
			}

			qr, err := api.ParseBookingQR(data)
			if err != nil {
				if errors.Is(err, api.ErrNotFoundLocal) {
					return fmt.Errorf("no booking found in QR data, pass --data or --file")
				}
				return err
			}

			message, err := client.SubmitBookingQR(cmd.Context(), qr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, map[string]any{"booking": qr, "message": message})
			}
			fmt.Fprintf(out, "Booking %s for %s submitted.\n", qr.BookingID, qr.CustomerEmail)
			if message != "" {
				fmt.Fprintln(out, message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "QR payload (JSON)")
	cmd.Flags().StringVar(&file, "file", "", "Read the QR payload from a file")
	return cmd
}
