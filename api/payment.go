package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type PaymentOrder struct {
	Amount int64
	RoomID int64
	// TxnRef defaults to TXN_<roomId><unix millis>.
	TxnRef string
	Now    func() time.Time
}

func (o PaymentOrder) orderInfo(now time.Time) string {
	if o.RoomID > 0 {
		return fmt.Sprintf("Booking%d", o.RoomID)
	}
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	return "Booking" + millis[len(millis)-6:]
}

func (o PaymentOrder) form() url.Values {
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(o.Amount, 10))
	form.Set("orderInfo", o.orderInfo(now))
	if o.RoomID > 0 {
		form.Set("roomId", strconv.FormatInt(o.RoomID, 10))
		ref := o.TxnRef
		if ref == "" {
			ref = fmt.Sprintf("TXN_%d%d", o.RoomID, now.UnixMilli())
		}
		form.Set("txnRef", ref)
	}
	return form
}

// SubmitVNPayOrder registers a payment and returns the gateway URL to open.
func (c *Client) SubmitVNPayOrder(ctx context.Context, order PaymentOrder) (string, error) {
	if order.Amount <= 0 {
		return "", Invalid("amount", "must be greater than 0")
	}
	body := strings.NewReader(order.form().Encode())
	req, err := c.newPublicRequest(ctx, http.MethodPost, "/api/vnpay/submit-order", nil, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain")

	text, err := c.doText(req)
	if err != nil {
		return "", err
	}
	return parsePaymentURL(text)
}

func parsePaymentURL(text string) (string, error) {
	if strings.HasPrefix(text, "{") {
		var payload struct {
			PaymentURL string `json:"paymentUrl"`
			URL        string `json:"url"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return "", fmt.Errorf("decode payment response: %w", err)
		}
		text = payload.PaymentURL
		if text == "" {
			text = payload.URL
		}
	}
	if text == "" {
		return "", fmt.Errorf("payment response missing URL")
	}
	if _, err := url.ParseRequestURI(text); err != nil {
		return "", fmt.Errorf("payment response is not a URL: %q", text)
	}
	return text, nil
}

type TransactionRequest struct {
	BookingID             int64   `json:"bookingId"`
	UserID                int64   `json:"userId,omitempty"`
	Provider              string  `json:"provider"`
	ProviderTransactionID string  `json:"providerTransactionId,omitempty"`
	Amount                float64 `json:"amount"`
	Currency              string  `json:"currency"`
	Status                string  `json:"status,omitempty"`
	Type                  string  `json:"type"`
	Metadata              string  `json:"metadata,omitempty"`

	// Booking, when set, is created by the backend together with the transaction.
	Booking *Booking `json:"bookingDTO,omitempty"`
}

func (c *Client) CreateTransaction(ctx context.Context, tx TransactionRequest) (Transaction, error) {
	if tx.BookingID <= 0 && tx.Booking == nil {
		return Transaction{}, Invalid("bookingId", "a booking id or booking is required")
	}
	if tx.Amount <= 0 {
		return Transaction{}, Invalid("amount", "must be greater than 0")
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/transaction", tx, true)
	if err != nil {
		return Transaction{}, err
	}

	var created Transaction
	if err := c.doJSON(req, &created); err != nil {
		return Transaction{}, err
	}
	return created, nil
}

// VNPayReturn fetches the booking confirmed by a payment return.
func (c *Client) VNPayReturn(ctx context.Context, bookingCode string) (Booking, error) {
	if bookingCode == "" {
		return Booking{}, Invalid("bookingCode", "is required")
	}
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/api/vnpay/vnpay_return/"+url.PathEscape(bookingCode), nil, nil)
	if err != nil {
		return Booking{}, err
	}

	var booking Booking
	if err := c.doJSON(req, &booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// BookingQR is the payload encoded in a booking confirmation QR code.
type BookingQR struct {
	BookingID     string  `json:"bookingId"`
	RoomType      string  `json:"roomType"`
	RoomNumber    string  `json:"roomNumber"`
	CheckIn       string  `json:"checkin"`
	CheckOut      string  `json:"checkout"`
	Customer      string  `json:"customer"`
	PaymentMethod string  `json:"paymentMethod"`
	AmountPaid    float64 `json:"amountPaid"`
	AmountToPay   float64 `json:"amountToPay"`
	RemainingDue  float64 `json:"remainingDue"`
	PaymentOption string  `json:"paymentOption"`
	CustomerEmail string  `json:"customerEmail"`
	CreatedAt     string  `json:"createdAt"`
}

// ParseBookingQR decodes QR data. Missing or unreadable data is ErrNotFoundLocal.
func ParseBookingQR(data string) (BookingQR, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return BookingQR{}, fmt.Errorf("booking QR data: %w", ErrNotFoundLocal)
	}
	var qr BookingQR
	if err := json.Unmarshal([]byte(data), &qr); err != nil {
		return BookingQR{}, fmt.Errorf("booking QR data unreadable (%v): %w", err, ErrNotFoundLocal)
	}
	if qr.BookingID == "" {
		return BookingQR{}, fmt.Errorf("booking QR data has no bookingId: %w", ErrNotFoundLocal)
	}
	return qr, nil
}

// SubmitBookingQR asks the backend to process a QR booking and email the guest.
func (c *Client) SubmitBookingQR(ctx context.Context, qr BookingQR) (string, error) {
	if qr.CustomerEmail == "" {
		return "", Invalid("customerEmail", "is required")
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/vnpay/vnpay_return/qr", qr, false)
	if err != nil {
		return "", err
	}
	return c.doText(req)
}
