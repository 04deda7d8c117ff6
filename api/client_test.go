package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func newTestClient(t *testing.T, routes func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := NewClient()
	client.BaseURL = srv.URL
	client.RetryBackoff = time.Millisecond
	client.Tokens = StaticToken("tok-123")
	return client
}

func TestPublicRequestsSkipAuth(t *testing.T) {
	g := NewWithT(t)
	var roomsAuth, suggestionsAuth string
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/rooms", func(c *gin.Context) {
			roomsAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, gin.H{"content": []any{}, "totalPages": 0, "totalElements": 0})
		})
		r.GET("/api/booking/suggestions", func(c *gin.Context) {
			suggestionsAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, []any{})
		})
	})

	page, err := client.ListRooms(context.Background(), nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content).NotTo(BeNil())
	g.Expect(roomsAuth).To(BeEmpty())

	_, err = client.GetSuggestions(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(suggestionsAuth).To(Equal("Bearer tok-123"))
}

func TestGetRetriesServerErrors(t *testing.T) {
	g := NewWithT(t)
	var calls atomic.Int32
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/rooms/types", func(c *gin.Context) {
			if calls.Add(1) < 3 {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service Unavailable"})
				return
			}
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Deluxe"}})
		})
	})

	types, err := client.ListRoomTypes(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(types).To(HaveLen(1))
	g.Expect(types[0].Name).To(Equal("Deluxe"))
	g.Expect(calls.Load()).To(BeEquivalentTo(3))
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	g := NewWithT(t)
	var calls atomic.Int32
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/rooms/:id", func(c *gin.Context) {
			calls.Add(1)
			c.JSON(http.StatusInternalServerError, gin.H{"status": 500, "error": "Internal Server Error", "message": "boom"})
		})
	})
	client.MaxRetries = 2

	_, err := client.GetRoom(context.Background(), 7)
	var serr *ServerError
	g.Expect(errors.As(err, &serr)).To(BeTrue())
	g.Expect(serr.StatusCode).To(Equal(http.StatusInternalServerError))
	g.Expect(serr.Message).To(Equal("boom"))
	g.Expect(calls.Load()).To(BeEquivalentTo(3))
}

func TestNonGetIsNotRetried(t *testing.T) {
	g := NewWithT(t)
	var calls atomic.Int32
	client := newTestClient(t, func(r *gin.Engine) {
		r.PUT("/api/booking/cancel/:id", func(c *gin.Context) {
			calls.Add(1)
			c.String(http.StatusBadGateway, "upstream down")
		})
	})

	_, err := client.CancelBooking(context.Background(), 4)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("upstream down"))
	g.Expect(calls.Load()).To(BeEquivalentTo(1))
}

func TestUnauthorizedHook(t *testing.T) {
	g := NewWithT(t)
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/booking/my-history", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": 401, "error": "Unauthorized", "message": "token expired"})
		})
		r.POST("/api/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": 401, "error": "Unauthorized", "message": "bad credentials"})
		})
	})
	var cleared atomic.Int32
	client.OnUnauthorized = func() { cleared.Add(1) }

	_, err := client.GetBookingHistory(context.Background(), "", 0, 10)
	g.Expect(IsUnauthorized(err)).To(BeTrue())
	g.Expect(cleared.Load()).To(BeEquivalentTo(1))

	_, err = client.Login(context.Background(), "guest@example.com", "wrong")
	g.Expect(IsUnauthorized(err)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("bad credentials"))
	g.Expect(cleared.Load()).To(BeEquivalentTo(1))
}

func TestNetworkErrorIsClassified(t *testing.T) {
	g := NewWithT(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient()
	client.BaseURL = srv.URL
	client.MaxRetries = 0

	_, err := client.ListRoomTypes(context.Background())
	g.Expect(IsNetwork(err)).To(BeTrue())
	g.Expect(IsNotFound(err)).To(BeFalse())
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	g := NewWithT(t)
	var calls atomic.Int32
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/rooms/types", func(c *gin.Context) {
			calls.Add(1)
			c.Status(http.StatusServiceUnavailable)
		})
	})
	client.RetryBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ListRoomTypes(ctx)
	g.Expect(err).To(HaveOccurred())
	g.Expect(calls.Load()).To(BeEquivalentTo(1))
}

func TestServerErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend message", `{"status":409,"error":"Conflict","message":"Room not available"}`, "request failed: 409 Conflict: Room not available"},
		{"plain text", "nope", "request failed: 409 Conflict: nope"},
		{"empty", "", "request failed: 409 Conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newServerError(http.StatusConflict, "409 Conflict", []byte(tt.body))
			if got := err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListRoomsSurvivesUnreadableAmenities(t *testing.T) {
	g := NewWithT(t)
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/rooms", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"content": []gin.H{
					{"id": 1, "title": "Twin", "amenities": gin.H{"wifi": true}},
					{"id": 2, "title": "Double", "amenities": "wifi, tv"},
				},
				"totalPages":    1,
				"totalElements": 2,
			})
		})
	})

	page, err := client.ListRooms(context.Background(), nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content).To(HaveLen(2))
	g.Expect(page.Content[0].Amenities).To(HaveKeyWithValue("wifi", true))
	g.Expect(page.Content[1].Title).To(Equal("Double"))
	g.Expect(page.Content[1].Amenities).To(BeEmpty())
}
