package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prasad22V/coursebundler-server/internal/dto"
	"github.com/Prasad22V/coursebundler-server/internal/middleware"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

// SubscriptionHandler handles billing HTTP requests
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	gatewayKeyID  string
	frontendURL   string
	refundDays    int
}

// NewSubscriptionHandler creates a SubscriptionHandler
func NewSubscriptionHandler(subscriptions service.SubscriptionService, gatewayKeyID, frontendURL string, refundDays int) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		gatewayKeyID:  gatewayKeyID,
		frontendURL:   frontendURL,
		refundDays:    refundDays,
	}
}

// Subscribe handles GET /api/v1/subscribe
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	subscriptionID, err := h.subscriptions.Subscribe(c.Request.Context(), user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, gin.H{"subscriptionId": subscriptionID})
}

// VerifyPayment handles POST /api/v1/paymentverification. This is the
// checkout callback: the browser lands here after paying, so the outcome is
// a redirect back to the frontend rather than a JSON body.
func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	var req dto.PaymentVerificationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s/paymentfailed", h.frontendURL))
		return
	}

	user, _ := middleware.GetUser(c)
	err := h.subscriptions.VerifyPayment(c.Request.Context(), user.ID, req.RazorpaySignature, req.RazorpayPaymentID, req.RazorpaySubscriptionID)
	if err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) {
			c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s/paymentfailed", h.frontendURL))
			return
		}
		response.FromError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("%s/paymentsuccess?reference=%s", h.frontendURL, req.RazorpayPaymentID))
}

// GatewayKey handles GET /api/v1/razorpaykey
func (h *SubscriptionHandler) GatewayKey(c *gin.Context) {
	response.Data(c, gin.H{"key": h.gatewayKeyID})
}

// Cancel handles DELETE /api/v1/subscribe/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	refunded, err := h.subscriptions.Cancel(c.Request.Context(), user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if refunded {
		response.OK(c, fmt.Sprintf("Subscription cancelled, You will receive full refund within %d days.", h.refundDays))
		return
	}
	response.OK(c, fmt.Sprintf("Subscription cancelled, No refund initiated as subscription was cancelled after %d days.", h.refundDays))
}
