package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/repository"
	"github.com/zvrva/tourbooking/internal/service/activities"
	"github.com/zvrva/tourbooking/internal/service/availability"
)

const defaultCalendarDays = 30

type ActivityHandler struct {
	service      activities.ActivityUseCase
	availability availability.AvailabilityUseCase
}

type activityResponse struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Capacity      int              `json:"capacity"`
	Prices        map[string]int64 `json:"prices"`
	DurationHours int              `json:"duration_hours"`
}

type dayAvailabilityResponse struct {
	Date           string `json:"date"`
	AvailableSeats int    `json:"available_seats"`
	TotalCapacity  int    `json:"total_capacity"`
}

func NewActivityHandler(service activities.ActivityUseCase, availability availability.AvailabilityUseCase) *ActivityHandler {
	return &ActivityHandler{service: service, availability: availability}
}

func (h *ActivityHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.calendar)
}

func (h *ActivityHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]activityResponse, 0, len(result))
	for i := range result {
		out = append(out, toActivityResponse(&result[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ActivityHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toActivityResponse(result))
}

// calendar serves the advisory availability view for booking calendars.
// Defaults to the next 30 days when from/to are omitted.
func (h *ActivityHandler) calendar(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	from := domain.BookingDay(time.Now())
	to := from.AddDate(0, 0, defaultCalendarDays)
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(domain.DateFormat, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be formatted as YYYY-MM-DD"})
			return
		}
		to = from.AddDate(0, 0, defaultCalendarDays)
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(domain.DateFormat, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be formatted as YYYY-MM-DD"})
			return
		}
	}

	calendar, err := h.availability.Calendar(c.Request.Context(), id, from, to)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrActivityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, availability.ErrInvalidRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	out := make([]dayAvailabilityResponse, 0, len(calendar))
	for _, day := range calendar {
		out = append(out, dayAvailabilityResponse{
			Date:           day.Date.Format(domain.DateFormat),
			AvailableSeats: day.AvailableSeats,
			TotalCapacity:  day.TotalCapacity,
		})
	}
	c.JSON(http.StatusOK, out)
}

func toActivityResponse(a *domain.Activity) activityResponse {
	prices := make(map[string]int64, len(a.Prices))
	for currency, cents := range a.Prices {
		prices[string(currency)] = cents
	}
	return activityResponse{
		ID:            a.ID,
		Name:          a.Name,
		Slug:          a.Slug,
		Capacity:      a.Capacity,
		Prices:        prices,
		DurationHours: a.DurationHours,
	}
}
