package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"larose-cli/calendar"
	"larose-cli/history"
	"larose-cli/storage"
	"larose-cli/suggest"

	"github.com/jmoiron/sqlx"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 2, 2, ' ', 0)
}

// parseDateInput accepts YYYY-MM-DD, "today" and "tomorrow", relative to loc.
func parseDateInput(input string, now time.Time, loc *time.Location) (calendar.Day, error) {
	if input == "" {
		return calendar.Day{}, fmt.Errorf("date is required")
	}
	today := calendar.DayOf(now.In(loc))
	switch strings.ToLower(input) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	day, err := calendar.ParseDay(input)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return day, nil
}

func parseID(input, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, input)
	}
	return id, nil
}

func checkPageSize(size int, allowed []int) error {
	if !slices.Contains(allowed, size) {
		return fmt.Errorf("--size must be one of %s", joinInts(allowed))
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// formatVND renders an amount the way the hotel prints prices: 1.500.000 ₫.
func formatVND(amount float64) string {
	if amount == 0 {
		return "-"
	}
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " ₫"
}

func pageFooter(page, totalPages int, total int64, noun string) string {
	if totalPages == 0 {
		return fmt.Sprintf("No %s.", noun)
	}
	return fmt.Sprintf("Page %d/%d (%d %s)", page+1, totalPages, total, noun)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func openDB() (*sqlx.DB, error) {
	db, err := storage.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return db, nil
}

func historyStore(db *sqlx.DB) *history.Store {
	return history.NewStore(storage.NewKV(db), logger.WithName("history"))
}

func suggestionCache(db *sqlx.DB) *suggest.Cache {
	return suggest.NewCache(storage.NewKV(db), suggest.WithLogger(logger.WithName("suggest")))
}

// requireSession returns the stored session or an error telling the user to log in.
func requireSession() (*storage.Session, error) {
	session, err := storage.LoadSession()
	if err != nil {
		return nil, err
	}
	if session == nil || session.AccessToken == "" {
		return nil, fmt.Errorf("not logged in, run 'larose auth login'")
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired for %s, run 'larose auth login'", session.User.Email)
	}
	return session, nil
}

func requireAdmin() (*storage.Session, error) {
	session, err := requireSession()
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, fmt.Errorf("%s is not an administrator", session.User.Email)
	}
	return session, nil
}
