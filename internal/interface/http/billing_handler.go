package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/prolexis/analytics/pkg/errors"
)

// ListPlans returns the purchasable plan catalog.
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.billingSvc.Plans()})
}

// Checkout creates a hosted checkout session and redirects to the gateway.
func (h *Handler) Checkout(c *gin.Context) {
	session, err := h.billingSvc.StartCheckout(c.Request.Context(), c.Param("plan"), c.Query("email"))
	if err != nil {
		abortWithError(c, paymentError(err))
		return
	}
	c.Redirect(http.StatusFound, session.URL)
}

// PaymentSuccess verifies a completed checkout and activates the subscription.
func (h *Handler) PaymentSuccess(c *gin.Context) {
	receipt, err := h.billingSvc.ConfirmCheckout(c.Request.Context(), c.Query("session_id"), c.Query("plan"))
	if err != nil {
		abortWithError(c, paymentError(err))
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// SubscriptionStatus reports the caller's plan and remaining quota.
func (h *Handler) SubscriptionStatus(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	sub, err := h.billingSvc.Subscription(c.Request.Context(), claims.Email)
	if err != nil {
		if apperrors.IsCode(err, "no_subscription") {
			c.JSON(http.StatusOK, gin.H{"active": false})
			return
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "subscription_check_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":       sub.Status == "active",
		"subscription": sub,
	})
}

func paymentError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "payment_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "invalid_plan"):
		status = http.StatusBadRequest
		code = "invalid_plan"
	case apperrors.IsCode(err, "payment_incomplete"):
		status = http.StatusPaymentRequired
		code = "payment_incomplete"
	case apperrors.IsCode(err, "payment_error"):
		status = http.StatusBadGateway
		code = "payment_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
