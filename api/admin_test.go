package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestReviewModeration(t *testing.T) {
	g := NewWithT(t)
	var statusParam string
	var responseBody map[string]any
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/reviews/admin", func(c *gin.Context) {
			g.Expect(c.Query("status")).To(Equal("pending"))
			c.JSON(http.StatusOK, gin.H{
				"content":    []gin.H{{"id": 1, "rating": 4, "status": "pending", "roomId": 2}},
				"totalPages": 1, "totalElements": 1,
			})
		})
		r.PUT("/api/reviews/:id/status", func(c *gin.Context) {
			statusParam = c.Query("status")
			c.JSON(http.StatusOK, gin.H{"id": 1, "status": statusParam})
		})
		r.POST("/api/reviews/response", func(c *gin.Context) {
			g.Expect(c.ShouldBindJSON(&responseBody)).To(Succeed())
			c.JSON(http.StatusOK, gin.H{"id": 10, "content": responseBody["content"]})
		})
		r.DELETE("/api/reviews/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "deleted")
		})
	})
	ctx := context.Background()

	page, err := client.ListReviewsAdmin(ctx, "pending", 0, 20)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content).To(HaveLen(1))

	updated, err := client.UpdateReviewStatus(ctx, 1, " Published ")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(statusParam).To(Equal("published"))
	g.Expect(updated.Status).To(Equal("published"))

	resp, err := client.CreateReviewResponse(ctx, 1, "  Thank you for staying with us  ")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(resp.ID).To(BeEquivalentTo(10))
	g.Expect(responseBody).To(HaveKeyWithValue("reviewId", BeNumerically("==", 1)))
	g.Expect(responseBody).To(HaveKeyWithValue("content", "Thank you for staying with us"))

	g.Expect(client.DeleteReview(ctx, 1)).To(Succeed())
}

func TestReviewValidation(t *testing.T) {
	client := NewClient()
	ctx := context.Background()
	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"rating too high", func() error {
			_, err := client.CreateReview(ctx, ReviewRequest{BookingID: 1, Rating: 6, Content: "ok"})
			return err
		}, "rating"},
		{"rating zero", func() error {
			_, err := client.CreateReview(ctx, ReviewRequest{BookingID: 1, Content: "ok"})
			return err
		}, "rating"},
		{"unknown status", func() error {
			_, err := client.UpdateReviewStatus(ctx, 1, "approved")
			return err
		}, "status"},
		{"blank response", func() error {
			_, err := client.CreateReviewResponse(ctx, 1, "   ")
			return err
		}, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if err := tt.call(); !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected %s validation error, got %v", tt.field, err)
			}
		})
	}
}

func TestRoomReviewsFilter(t *testing.T) {
	g := NewWithT(t)
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/reviews", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "roomId": 2}, {"id": 2, "roomId": 3}, {"id": 3, "roomId": 2}})
		})
	})

	reviews, err := client.ListRoomReviews(context.Background(), 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reviews).To(HaveLen(2))
}

func TestCustomerAdministration(t *testing.T) {
	g := NewWithT(t)
	var actions []string
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/admin/users", func(c *gin.Context) {
			g.Expect(c.Query("search")).To(Equal("nguyen"))
			g.Expect(c.Query("isActive")).To(Equal("true"))
			c.JSON(http.StatusOK, gin.H{"content": []gin.H{{"id": 4, "email": "a@b.c", "isActive": true, "roles": []string{"ROLE_USER"}}}, "totalPages": 1})
		})
		r.POST("/api/admin/users/:id/:action", func(c *gin.Context) {
			actions = append(actions, c.Param("action"))
			c.JSON(http.StatusOK, gin.H{"id": 4, "isActive": c.Param("action") != "deactivate"})
		})
		r.DELETE("/api/admin/users/:id", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	page, err := client.ListUsers(ctx, url.Values{"search": {"nguyen"}, "isActive": {"true"}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content[0].Roles).To(ConsistOf("ROLE_USER"))

	user, err := client.DeactivateUser(ctx, 4)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(user.IsActive).To(BeFalse())

	user, err = client.ActivateUser(ctx, 4)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(user.IsActive).To(BeTrue())

	g.Expect(client.DeleteUser(ctx, 4)).To(Succeed())
	g.Expect(actions).To(Equal([]string{"deactivate", "activate"}))
}
