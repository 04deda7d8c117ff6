package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestServiceCatalog(t *testing.T) {
	g := NewWithT(t)
	var created map[string]any
	var deleted string
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/services", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{
				{"id": 1, "name": "Breakfast", "price": 150000, "unit": "người", "isActive": true},
				{"id": 2, "name": "Airport pickup", "price": 400000, "isActive": false},
			})
		})
		r.GET("/api/services/active", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Breakfast", "price": 150000}})
		})
		r.POST("/api/services", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&created)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 3, "name": created["name"], "price": created["price"]})
		})
		r.DELETE("/api/services/:id", func(c *gin.Context) {
			deleted = c.Param("id")
			c.String(http.StatusOK, "Service deleted")
		})
	})
	ctx := context.Background()

	all, err := client.ListServices(ctx, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(all).To(HaveLen(2))
	g.Expect(all[1].Active()).To(BeFalse())

	active, err := client.ListServices(ctx, true)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(active).To(HaveLen(1))
	g.Expect(active[0].Active()).To(BeTrue())

	svc, err := client.CreateService(ctx, Service{Name: "Spa", Price: 500000, Unit: "giờ", Category: "OTHER"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(svc.ID).To(BeEquivalentTo(3))
	g.Expect(created).To(HaveKeyWithValue("unit", "giờ"))
	g.Expect(created).NotTo(HaveKey("isActive"))

	_, err = client.CreateService(ctx, Service{Name: " ", Price: 1})
	var verr *ValidationError
	g.Expect(errors.As(err, &verr)).To(BeTrue())

	g.Expect(client.DeleteService(ctx, 3)).To(Succeed())
	g.Expect(deleted).To(Equal("3"))
}

func TestBookingServices(t *testing.T) {
	g := NewWithT(t)
	var added map[string]any
	var quantity string
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/services/booking/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 8, "bookingId": 55, "serviceName": "Breakfast", "quantity": 2, "totalPrice": 300000}})
		})
		r.POST("/api/services/booking/:id", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&added)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 9, "bookingId": 55, "serviceId": added["serviceId"], "quantity": added["quantity"]})
		})
		r.PUT("/api/services/booking-service/:id", func(c *gin.Context) {
			quantity = c.Query("quantity")
			c.JSON(http.StatusOK, gin.H{"id": 9, "quantity": 3})
		})
		r.DELETE("/api/services/booking-service/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "removed")
		})
	})
	ctx := context.Background()

	items, err := client.ListBookingServices(ctx, 55)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(items[0].TotalPrice).To(BeEquivalentTo(300000))

	item, err := client.AddServiceToBooking(ctx, 55, 1, 2, "")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(item.ID).To(BeEquivalentTo(9))
	g.Expect(added).To(HaveKeyWithValue("serviceId", BeNumerically("==", 1)))
	g.Expect(added).NotTo(HaveKey("notes"))

	_, err = client.UpdateBookingServiceQuantity(ctx, 9, 3)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(quantity).To(Equal("3"))

	_, err = client.UpdateBookingServiceQuantity(ctx, 9, 0)
	g.Expect(err).To(MatchError(ContainSubstring("quantity")))
	g.Expect(client.RemoveBookingService(ctx, 9)).To(Succeed())
}

func TestAdminBookingsAndTransactions(t *testing.T) {
	g := NewWithT(t)
	var bookingStatus, reason, txStatus string
	var listQuery url.Values
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/admin/bookings", func(c *gin.Context) {
			listQuery = c.Request.URL.Query()
			c.JSON(http.StatusOK, gin.H{"content": []gin.H{{"id": 1, "status": "pending"}}, "totalPages": 1, "totalElements": 1})
		})
		r.PUT("/api/admin/bookings/:id/status", func(c *gin.Context) {
			bookingStatus = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"id": 1, "status": bookingStatus})
		})
		r.PUT("/api/admin/bookings/:id/cancel", func(c *gin.Context) {
			reason = c.Query("reason")
			c.JSON(http.StatusOK, gin.H{"id": 1, "status": "cancelled", "cancelReason": reason})
		})
		r.GET("/api/admin/transactions", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"content": nil, "totalPages": 0})
		})
		r.PUT("/api/admin/transactions/:id/status", func(c *gin.Context) {
			txStatus = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"id": 4, "status": txStatus})
		})
	})
	ctx := context.Background()

	page, err := client.ListAllBookings(ctx, url.Values{"status": {"pending"}, "page": {"0"}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content).To(HaveLen(1))
	g.Expect(listQuery.Get("status")).To(Equal("pending"))

	booking, err := client.UpdateBookingStatus(ctx, 1, "Checked_In")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(bookingStatus).To(Equal("checked_in"))
	g.Expect(booking.Status).To(Equal("checked_in"))

	_, err = client.UpdateBookingStatus(ctx, 1, "gone")
	g.Expect(err).To(MatchError(ContainSubstring("must be one of")))

	booking, err = client.CancelBookingAdmin(ctx, 1, " guest asked ")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reason).To(Equal("guest asked"))
	g.Expect(booking.CancelReason).To(Equal("guest asked"))

	txs, err := client.ListTransactions(ctx, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(txs.Content).NotTo(BeNil())

	tx, err := client.UpdateTransactionStatus(ctx, 4, "REFUNDED")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(txStatus).To(Equal("refunded"))
	g.Expect(tx.Status).To(Equal("refunded"))
}

func TestCreateAndUpdateRoom(t *testing.T) {
	g := NewWithT(t)
	var contentType, method, path string
	var sent RoomRequest
	client := newTestClient(t, func(r *gin.Engine) {
		save := func(c *gin.Context) {
			contentType = c.GetHeader("Content-Type")
			method, path = c.Request.Method, c.Request.URL.Path
			g.Expect(json.Unmarshal([]byte(c.PostForm("roomRequest")), &sent)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 12, "code": sent.Code, "title": sent.Title, "status": sent.Status})
		}
		r.POST("/api/rooms", save)
		r.PUT("/api/rooms/:code", save)
	})
	ctx := context.Background()

	room, err := client.CreateRoom(ctx, RoomRequest{Code: " R-201 ", RoomTypeID: 2, Title: "Lake View", Capacity: 2, Price: 1200000})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(room.ID).To(BeEquivalentTo(12))
	g.Expect(strings.HasPrefix(contentType, "multipart/form-data")).To(BeTrue())
	g.Expect(method).To(Equal(http.MethodPost))
	g.Expect(sent.Code).To(Equal("R-201"))
	g.Expect(sent.Status).To(Equal("available"))
	g.Expect(sent.Amenities).NotTo(BeNil())

	req := RequestFor(Room{Code: "R-201", Title: "Lake View", Capacity: 2, Type: RoomType{ID: 2}, Amenities: Amenities{"wifi": true}})
	req.Status = "Maintenance"
	_, err = client.UpdateRoom(ctx, "R-201", req)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(method).To(Equal(http.MethodPut))
	g.Expect(path).To(Equal("/api/rooms/R-201"))
	g.Expect(sent.Status).To(Equal("maintenance"))
	g.Expect(sent.Amenities).To(HaveKeyWithValue("wifi", true))

	_, err = client.CreateRoom(ctx, RoomRequest{Code: "R-1", RoomTypeID: 1, Title: "x", Capacity: 1, Status: "closed"})
	g.Expect(err).To(MatchError(ContainSubstring("status")))
}
