// controllers/payment_controller.go
package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"lesson-backend/services"
	"lesson-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Controller
// ---------------------------

type PaymentController struct {
	PaymentSvc *services.PaymentService
	WebhookSvc *services.WebhookService
}

func NewPaymentController(paymentSvc *services.PaymentService, webhookSvc *services.WebhookService) *PaymentController {
	return &PaymentController{PaymentSvc: paymentSvc, WebhookSvc: webhookSvc}
}

// ---------------------------
// Validation helpers
// ---------------------------

var validDurations = map[int]bool{30: true, 45: true, 60: true}

type bookingRequestMessages struct {
	durationRequired string
	durationInvalid  string
	isPackageInvalid string
}

// parseBookingRequest pulls duration/isPackage out of an already-bound JSON
// body. The body is bound as a map so a wrong-typed isPackage gets its own
// message instead of a generic bind failure.
func parseBookingRequest(body map[string]interface{}, msgs bookingRequestMessages) (int, bool, string) {
	rawDuration, ok := body["duration"]
	if !ok || rawDuration == nil {
		return 0, false, msgs.durationRequired
	}
	durationFloat, ok := rawDuration.(float64)
	if !ok || durationFloat == 0 {
		if !ok {
			return 0, false, msgs.durationInvalid
		}
		return 0, false, msgs.durationRequired
	}

	duration := int(durationFloat)
	if float64(duration) != durationFloat || !validDurations[duration] {
		return 0, false, msgs.durationInvalid
	}

	isPackage, ok := body["isPackage"].(bool)
	if !ok {
		return 0, false, msgs.isPackageInvalid
	}

	return duration, isPackage, ""
}

func mapServiceError(c *gin.Context, err error, fallback string) {
	var paymentErr *services.PaymentError
	if errors.As(err, &paymentErr) {
		utils.JSONError(c, http.StatusBadRequest, paymentErr.Message)
		return
	}
	log.Printf("unexpected payment error: %v", err)
	utils.JSONError(c, http.StatusInternalServerError, fallback)
}

// ---------------------------
// Handlers
// ---------------------------

// CreatePayment handles POST /api/payments/create.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	duration, isPackage, msg := parseBookingRequest(body, bookingRequestMessages{
		durationRequired: "Duration is required",
		durationInvalid:  "Invalid duration. Must be 30, 45, or 60 minutes",
		isPackageInvalid: "isPackage must be a boolean value",
	})
	if msg != "" {
		utils.JSONError(c, http.StatusBadRequest, msg)
		return
	}

	result, err := pc.PaymentSvc.CreatePaymentIntent(duration, isPackage)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDuration) {
			utils.JSONError(c, http.StatusBadRequest, "Invalid duration. Must be 30, 45, or 60 minutes")
			return
		}
		mapServiceError(c, err, "Failed to create payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"clientSecret": result.ClientSecret,
		"amount":       result.Amount,
	})
}

// CreateCheckout handles POST /api/payments/create-checkout.
func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	duration, isPackage, msg := parseBookingRequest(body, bookingRequestMessages{
		durationRequired: "Duration is required for the lesson booking",
		durationInvalid:  "Please select a valid duration: 30, 45, or 60 minutes",
		isPackageInvalid: "Please specify whether this is a package booking",
	})
	if msg != "" {
		utils.JSONError(c, http.StatusBadRequest, msg)
		return
	}

	result, err := pc.PaymentSvc.CreateCheckoutSession(duration, isPackage)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDuration) {
			utils.JSONError(c, http.StatusBadRequest, "Please select a valid duration: 30, 45, or 60 minutes")
			return
		}
		mapServiceError(c, err, "Unable to create checkout session. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": result.SessionID,
		"message":   "Checkout session created successfully",
	})
}

type CancelSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// CancelSession handles POST /api/payments/cancel-session.
func (pc *PaymentController) CancelSession(c *gin.Context) {
	var req CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Session ID is required")
		return
	}

	if err := pc.PaymentSvc.CancelCheckoutSession(req.SessionID); err != nil {
		mapServiceError(c, err, "An unexpected error occurred while cancelling the session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session cancelled successfully",
	})
}

// HandleWebhook handles POST /api/payments/webhook. The raw body is the
// Stripe event; the signature header must be present but its value is
// verified upstream, not here.
func (pc *PaymentController) HandleWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing stripe signature")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to process webhook")
		return
	}

	if err := pc.WebhookSvc.HandleEvent(payload); err != nil {
		log.Printf("webhook error: %v", err)
		utils.JSONError(c, http.StatusBadRequest, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetBooking handles GET /api/payments/bookings/:paymentIntentId.
func (pc *PaymentController) GetBooking(c *gin.Context) {
	intentID := c.Param("paymentIntentId")

	booking, err := pc.PaymentSvc.GetBookingByIntentID(intentID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Booking not found")
			return
		}
		log.Printf("booking lookup failed for %s: %v", intentID, err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": booking,
	})
}
