package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ActivityID      int64   `json:"activity_id" binding:"required"`
	BookingDate     string  `json:"booking_date" binding:"required"`
	GroupSize       int     `json:"group_size" binding:"required,min=1"`
	Currency        string  `json:"currency" binding:"required,currency"`
	CustomerName    string  `json:"customer_name" binding:"required"`
	CustomerEmail   string  `json:"customer_email" binding:"required,email"`
	CustomerPhone   *string `json:"customer_phone"`
	SpecialRequests *string `json:"special_requests"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

type bookingResponse struct {
	Reference       string  `json:"reference"`
	ActivityID      int64   `json:"activity_id"`
	BookingDate     string  `json:"booking_date"`
	GroupSize       int     `json:"group_size"`
	Currency        string  `json:"currency"`
	TotalCents      int64   `json:"total_cents"`
	DepositCents    int64   `json:"deposit_cents"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"payment_status"`
	CustomerName    string  `json:"customer_name"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:reference", h.get)
	router.PATCH("/:reference/status", h.updateStatus)
	router.PATCH("/:reference/payment", h.updatePayment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse(domain.DateFormat, req.BookingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_date must be formatted as YYYY-MM-DD"})
		return
	}

	result, err := h.service.Admit(c.Request.Context(), booking.AdmitInput{
		ActivityID:      req.ActivityID,
		BookingDate:     date,
		GroupSize:       req.GroupSize,
		Currency:        domain.Currency(req.Currency),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(result))
}

func (h *BookingHandler) get(c *gin.Context) {
	result, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), c.Param("reference"), domain.BookingStatus(req.Status))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func (h *BookingHandler) updatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.UpdatePaymentStatus(c.Request.Context(), c.Param("reference"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func writeBookingError(c *gin.Context, err error) {
	var capErr *booking.CapacityError
	switch {
	case errors.As(err, &capErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":           "capacity exceeded",
			"slots_remaining": capErr.SlotsRemaining,
			"requested_size":  capErr.RequestedSize,
		})
	case errors.Is(err, booking.ErrActivityNotFound), errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidInput), errors.Is(err, booking.ErrUnsupportedCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference:       b.Reference,
		ActivityID:      b.ActivityID,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		GroupSize:       b.GroupSize,
		Currency:        string(b.Currency),
		TotalCents:      b.TotalCents,
		DepositCents:    b.DepositCents,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}
