package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/calendar"
	"larose-cli/logging"
	"larose-cli/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// depositRate is the share of the total charged when paying a deposit.
const depositRate = 0.2

var paymentProviders = map[string]string{
	"vnpay": "VNPAY",
	"cash":  "CASH",
}

type bookingPlan struct {
	Room     api.Room     `json:"room"`
	CheckIn  calendar.Day `json:"checkIn"`
	CheckOut calendar.Day `json:"checkOut"`
	Nights   int          `json:"nights"`
	Guests   int          `json:"guests"`
	Total    float64      `json:"total"`
	Amount   float64      `json:"amountDue"`
	Option   string       `json:"paymentOption,omitempty"`
	Provider string       `json:"provider,omitempty"`
}

func (p bookingPlan) booking() api.Booking {
	return api.Booking{
		RoomID:     p.Room.ID,
		CheckIn:    p.CheckIn.String(),
		CheckOut:   p.CheckOut.String(),
		Nights:     p.Nights,
		Guests:     p.Guests,
		PriceTotal: p.Total,
	}
}

func bookCmd() *cobra.Command {
	var roomID int64
	var checkIn string
	var checkOut string
	var guests int
	var pay string
	var deposit bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomID <= 0 || checkIn == "" {
				return fmt.Errorf("--room and --check-in are required")
			}
			pay = strings.ToLower(strings.TrimSpace(pay))
			if _, ok := paymentProviders[pay]; pay != "" && !ok {
				return fmt.Errorf("--pay must be vnpay or cash")
			}
			if deposit && pay == "" {
				return fmt.Errorf("--deposit requires --pay")
			}
			session, err := requireSession()
			if err != nil {
				return err
			}

			loc := cfg.location()
			now := time.Now()
			in, err := parseDateInput(checkIn, now, loc)
			if err != nil {
				return err
			}
			out := calendar.MinCheckOut(in)
			if checkOut != "" {
				if out, err = parseDateInput(checkOut, now, loc); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			plan, err := planBooking(ctx, roomID, in, out, guests, calendar.DayOf(now.In(loc)))
			if err != nil {
				return err
			}
			if pay != "" {
				plan.Provider = paymentProviders[pay]
				plan.Option = "full"
				if deposit {
					plan.Option = "deposit"
					plan.Amount = math.Round(plan.Total * depositRate)
				}
			}

			w := cmd.OutOrStdout()
			if dryRun {
				if outputJSON {
					return writeJSON(w, plan)
				}
				printPlan(w, plan)
				fmt.Fprintln(w, "Dry run, nothing was booked.")
				return nil
			}

			created, paymentURL, placeErr := placeBooking(ctx, plan, session.User.ID)
			if placeErr != nil && created.ID == 0 {
				return placeErr
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if created.ID > 0 {
				row := ledgerBooking(created, "booked", now)
				if row.RoomTitle == "" {
					row.RoomTitle = plan.Room.Title
				}
				if row.RoomTypeName == "" {
					row.RoomTypeName = plan.Room.Type.Name
				}
				if _, err := storage.SaveBooking(db, row); err != nil {
					logger.Error(err, "save booking locally", "id", created.ID)
				}
			}
			if placeErr != nil {
				return placeErr
			}

			if outputJSON {
				return writeJSON(w, map[string]any{
					"booking":    created,
					"plan":       plan,
					"paymentUrl": paymentURL,
				})
			}
			printPlan(w, plan)
			if created.BookingCode != "" {
				fmt.Fprintf(w, "Booked %s (id %d), status %s.\n", created.BookingCode, created.ID, orDash(created.Status))
			} else {
				fmt.Fprintln(w, "Booking request sent.")
			}
			if paymentURL != "" {
				fmt.Fprintf(w, "Complete the payment at:\n%s\n", paymentURL)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&roomID, "room", 0, "Room ID")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "Check-in date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Check-out date (default: the day after check-in)")
	cmd.Flags().IntVar(&guests, "guests", 1, "Number of guests")
	cmd.Flags().StringVar(&pay, "pay", "", "Pay now with vnpay or cash")
	cmd.Flags().BoolVar(&deposit, "deposit", false, "Pay a 20% deposit instead of the full amount")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check availability and price without booking")
	return cmd
}

// planBooking validates a stay against the room and its reservations.
func planBooking(ctx context.Context, roomID int64, in, out calendar.Day, guests int, today calendar.Day) (bookingPlan, error) {
	if in.Before(today) {
		return bookingPlan{}, fmt.Errorf("check-in %s is in the past", in)
	}
	if out.Before(calendar.MinCheckOut(in)) {
		return bookingPlan{}, fmt.Errorf("check-out must be at least one day after check-in")
	}
	if guests <= 0 {
		return bookingPlan{}, fmt.Errorf("--guests must be at least 1")
	}

	room, err := client.GetRoom(ctx, roomID)
	if err != nil {
		return bookingPlan{}, err
	}
	if room.Capacity > 0 && guests > room.Capacity {
		return bookingPlan{}, fmt.Errorf("room %s holds at most %d guests", orDash(room.Title), room.Capacity)
	}

	occupied, err := occupiedDays(ctx, roomID)
	if err != nil {
		return bookingPlan{}, err
	}
	if conflicts := calendar.Conflicts(occupied, in, out); len(conflicts) > 0 {
		return bookingPlan{}, fmt.Errorf("room is already booked on %s", formatDays(conflicts))
	}

	nights := calendar.Nights(in, out)
	total := room.NightlyPrice() * float64(nights)
	return bookingPlan{
		Room:     room,
		CheckIn:  in,
		CheckOut: out,
		Nights:   nights,
		Guests:   guests,
		Total:    total,
		Amount:   total,
	}, nil
}

// placeBooking creates the booking directly, or through a transaction when
// paying. A VNPay payment also returns the gateway URL.
func placeBooking(ctx context.Context, plan bookingPlan, userID int64) (api.Booking, string, error) {
	booking := plan.booking()
	if plan.Provider == "" {
		created, err := client.CreateBooking(ctx, booking)
		return created, "", err
	}

	txnRef := fmt.Sprintf("TXN_%d_%s", plan.Room.ID, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	logging.FromContext(ctx).V(1).Info("creating transaction", "roomId", plan.Room.ID, "provider", plan.Provider, "txnRef", txnRef)
	tx, err := client.CreateTransaction(ctx, api.TransactionRequest{
		UserID:                userID,
		Provider:              plan.Provider,
		ProviderTransactionID: txnRef,
		Amount:                plan.Amount,
		Currency:              "VND",
		Type:                  "PAYMENT",
		Metadata:              "paymentOption=" + plan.Option,
		Booking:               &booking,
	})
	if err != nil {
		return api.Booking{}, "", err
	}

	created := booking
	if tx.Booking != nil {
		created = *tx.Booking
		if created.CheckIn == "" {
			created.CheckIn, created.CheckOut = booking.CheckIn, booking.CheckOut
			created.Nights, created.Guests = booking.Nights, booking.Guests
		}
		if created.PriceTotal == 0 {
			created.PriceTotal = booking.PriceTotal
		}
	}
	if created.ID == 0 {
		created.ID = tx.BookingID
	}
	if plan.Provider != "VNPAY" {
		return created, "", nil
	}

	paymentURL, err := client.SubmitVNPayOrder(ctx, api.PaymentOrder{
		Amount: int64(math.Round(plan.Amount)),
		RoomID: plan.Room.ID,
		TxnRef: txnRef,
	})
	if err != nil {
		return created, "", fmt.Errorf("booking created but payment could not be started: %w", err)
	}
	return created, paymentURL, nil
}

func printPlan(w io.Writer, plan bookingPlan) {
	title := plan.Room.Title
	if title == "" {
		title = fmt.Sprintf("#%d", plan.Room.ID)
	}
	fmt.Fprintf(w, "Room: %s (%s)\n", title, orDash(plan.Room.Type.Name))
	fmt.Fprintf(w, "Stay: %s to %s, %d night(s), %d guest(s)\n", plan.CheckIn, plan.CheckOut, plan.Nights, plan.Guests)
	fmt.Fprintf(w, "Total: %s\n", formatVND(plan.Total))
	if plan.Provider != "" {
		fmt.Fprintf(w, "Paying %s by %s (%s)\n", formatVND(plan.Amount), plan.Provider, plan.Option)
	}
}
