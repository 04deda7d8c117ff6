package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"larose-cli/api"
)

func TestAdminBookingsListStatusAndCancel(t *testing.T) {
	g := NewWithT(t)
	var listStatus, newStatus, reason string
	newBackend(t, func(r *gin.Engine) {
		r.GET("/api/admin/bookings", func(c *gin.Context) {
			listStatus = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"totalPages": 1, "totalElements": 1, "content": []gin.H{
				{"id": 31, "bookingCode": "BK-31", "userEmail": "an@example.com", "roomTitle": "Garden Suite", "checkIn": "2026-07-01T14:00:00", "checkOut": "2026-07-03", "priceTotal": 3000000, "status": "confirmed"},
			}})
		})
		r.PUT("/api/admin/bookings/:id/status", func(c *gin.Context) {
			newStatus = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"id": 31, "status": newStatus})
		})
		r.PUT("/api/admin/bookings/:id/cancel", func(c *gin.Context) {
			reason = c.Query("reason")
			c.JSON(http.StatusOK, gin.H{"id": 31, "status": "cancelled"})
		})
	})
	loginAs(t, "ROLE_ADMIN")

	out, err := runCLI("admin", "bookings", "list", "--status", "Confirmed")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(listStatus).To(Equal("confirmed"))
	g.Expect(out).To(ContainSubstring("BK-31"))
	g.Expect(out).To(ContainSubstring("2026-07-01"))
	g.Expect(out).To(ContainSubstring("Page 1/1 (1 bookings)"))

	_, err = runCLI("admin", "bookings", "list", "--status", "lost")
	g.Expect(err).To(MatchError(ContainSubstring("--status must be one of")))

	out, err = runCLI("admin", "bookings", "status", "31", "checked_in")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(newStatus).To(Equal("checked_in"))
	g.Expect(out).To(Equal("Booking 31 is now checked_in.\n"))

	out, err = runCLI("admin", "bookings", "cancel", "31", "--reason", "overbooked")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reason).To(Equal("overbooked"))
	g.Expect(out).To(Equal("Booking 31 cancelled.\n"))
}

func TestAdminPaymentsListAndStatus(t *testing.T) {
	g := NewWithT(t)
	var provider, startDate, txStatus string
	newBackend(t, func(r *gin.Engine) {
		r.GET("/api/admin/transactions", func(c *gin.Context) {
			provider = c.Query("provider")
			startDate = c.Query("startDate")
			c.JSON(http.StatusOK, gin.H{"totalPages": 1, "totalElements": 2, "content": []gin.H{
				{"id": 1, "providerTransactionId": "TXN_4_a", "provider": "VNPAY", "amount": 200000, "status": "success", "bookingDTO": gin.H{"bookingCode": "BK-77"}},
				{"id": 2, "providerTransactionId": "TXN_5_b", "provider": "VNPAY", "amount": 500000, "status": "initiated", "bookingDTO": gin.H{"bookingCode": "BK-90"}},
			}})
		})
		r.PUT("/api/admin/transactions/:id/status", func(c *gin.Context) {
			txStatus = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"id": 2, "status": txStatus})
		})
	})
	loginAs(t, "ROLE_ADMIN")

	out, err := runCLI("admin", "payments", "list", "--provider", "vnpay", "--from", "2026-06-01", "--booking", "bk-77")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(provider).To(Equal("VNPAY"))
	g.Expect(startDate).To(Equal("2026-06-01"))
	g.Expect(out).To(ContainSubstring("TXN_4_a"))
	g.Expect(out).NotTo(ContainSubstring("TXN_5_b"))

	out, err = runCLI("admin", "payments", "status", "2", "failed")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(txStatus).To(Equal("failed"))
	g.Expect(out).To(Equal("Transaction 2 is now failed.\n"))
}

func TestAdminServicesCreateUpdateDelete(t *testing.T) {
	g := NewWithT(t)
	var created, updated map[string]any
	deleted := false
	newBackend(t, func(r *gin.Engine) {
		r.GET("/api/services", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 5, "name": "Breakfast", "price": 150000, "unit": "người", "isActive": true, "category": "FOOD"}})
		})
		r.POST("/api/services", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&created)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 6, "name": created["name"]})
		})
		r.PUT("/api/services/:id", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&updated)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 5})
		})
		r.DELETE("/api/services/:id", func(c *gin.Context) {
			deleted = true
			c.String(http.StatusOK, "deleted")
		})
	})
	loginAs(t, "ROLE_ADMIN")

	out, err := runCLI("admin", "services", "create", "--name", "Spa", "--price", "500000", "--unit", "giờ")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(Equal("Created service 6 (Spa).\n"))
	g.Expect(created).To(HaveKeyWithValue("category", "OTHER"))
	g.Expect(created).To(HaveKeyWithValue("isActive", true))

	_, err = runCLI("admin", "services", "create", "--name", "Spa", "--unit", "week")
	g.Expect(err).To(MatchError(ContainSubstring("--unit must be one of")))

	_, err = runCLI("admin", "services", "update", "5", "--price", "180000", "--active=false")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(updated).To(HaveKeyWithValue("name", "Breakfast"))
	g.Expect(updated).To(HaveKeyWithValue("price", BeNumerically("==", 180000)))
	g.Expect(updated).To(HaveKeyWithValue("isActive", false))
	g.Expect(updated).To(HaveKeyWithValue("category", "FOOD"))

	_, err = runCLI("admin", "services", "update", "99", "--price", "1")
	g.Expect(err).To(MatchError("service 99 not found"))

	_, err = runCLI("admin", "services", "delete", "5")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(deleted).To(BeTrue())
}

func TestAdminRoomsCreateUpdateStatus(t *testing.T) {
	g := NewWithT(t)
	var sent api.RoomRequest
	var path string
	newBackend(t, func(r *gin.Engine) {
		r.GET("/api/rooms/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": 12, "code": "R-201", "title": "Lake View", "capacity": 2, "price": 1200000, "status": "available",
				"type": gin.H{"id": 3}, "amenities": gin.H{"wifi": true, "tv": true}})
		})
		save := func(c *gin.Context) {
			path = c.Request.URL.Path
			g.Expect(json.Unmarshal([]byte(c.PostForm("roomRequest")), &sent)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 12, "code": sent.Code, "status": sent.Status})
		}
		r.POST("/api/rooms", save)
		r.PUT("/api/rooms/:code", save)
	})
	loginAs(t, "ROLE_ADMIN")

	out, err := runCLI("admin", "rooms", "create", "--code", "R-301", "--type", "3", "--title", "Hill View", "--capacity", "2", "--price", "900000", "--amenity", "wifi")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(path).To(Equal("/api/rooms"))
	g.Expect(sent.Amenities).To(Equal(api.Amenities{"wifi": true}))
	g.Expect(out).To(Equal("Created room R-301 (id 12), status available.\n"))

	_, err = runCLI("admin", "rooms", "update", "12", "--price", "1500000", "--amenity", "tv=false", "--delete-image", "4")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(path).To(Equal("/api/rooms/R-201"))
	g.Expect(sent.Price).To(BeEquivalentTo(1500000))
	g.Expect(sent.Title).To(Equal("Lake View"))
	g.Expect(sent.RoomTypeID).To(BeEquivalentTo(3))
	g.Expect(sent.Amenities).To(Equal(api.Amenities{"wifi": true, "tv": false}))
	g.Expect(sent.DeleteImages).To(Equal([]int64{4}))

	out, err = runCLI("admin", "rooms", "status", "12", "maintenance")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sent.Status).To(Equal("maintenance"))
	g.Expect(sent.Price).To(BeEquivalentTo(1200000))
	g.Expect(out).To(Equal("Updated room R-201 (id 12), status maintenance.\n"))

	_, err = runCLI("admin", "rooms", "status", "12", "closed")
	g.Expect(err).To(MatchError(ContainSubstring("status: must be one of")))
}

func TestServicesForBooking(t *testing.T) {
	g := NewWithT(t)
	var added map[string]any
	var quantity string
	newBackend(t, func(r *gin.Engine) {
		r.GET("/api/services/active", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 5, "name": "Breakfast", "price": 150000, "unit": "người"}})
		})
		r.GET("/api/services/booking/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{
				{"id": 9, "serviceName": "Breakfast", "quantity": 2, "pricePerUnit": 150000, "totalPrice": 300000},
				{"id": 10, "serviceName": "Spa", "quantity": 1, "pricePerUnit": 500000, "totalPrice": 500000},
			})
		})
		r.POST("/api/services/booking/:id", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&added)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 11, "serviceName": "Breakfast", "quantity": 2, "totalPrice": 300000})
		})
		r.PUT("/api/services/booking-service/:id", func(c *gin.Context) {
			quantity = c.Query("quantity")
			c.JSON(http.StatusOK, gin.H{"id": 11, "quantity": 4})
		})
	})

	out, err := runCLI("services", "list")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("Breakfast"))
	g.Expect(out).To(ContainSubstring("150.000 ₫"))

	_, err = runCLI("services", "add", "55", "5")
	g.Expect(err).To(MatchError(ContainSubstring("not logged in")))

	loginAs(t)
	out, err = runCLI("services", "booking", "55")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("Services total: 800.000 ₫"))

	out, err = runCLI("services", "add", "55", "5", "--quantity", "2")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(added).To(HaveKeyWithValue("quantity", BeNumerically("==", 2)))
	g.Expect(out).To(Equal("Added 2 x Breakfast to booking 55 (300.000 ₫), line 11.\n"))

	_, err = runCLI("services", "quantity", "11", "0")
	g.Expect(err).To(MatchError(ContainSubstring("at least 1")))
	out, err = runCLI("services", "quantity", "11", "4")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(quantity).To(Equal("4"))
	g.Expect(out).To(Equal("Line 11 now has 4 unit(s).\n"))
}
