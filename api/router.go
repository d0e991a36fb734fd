package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/zvrva/tourbooking/internal/domain"
)

// NewRouter assembles the HTTP surface and registers the custom
// binding rules used by the request structs.
func NewRouter(activityHandler *ActivityHandler, bookingHandler *BookingHandler) *gin.Engine {
	RegisterBindingRules()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	activityHandler.Register(router.Group("/activities"))
	bookingHandler.Register(router.Group("/bookings"))
	return router
}

// RegisterBindingRules installs the custom validation rules on gin's
// binding engine. Safe to call more than once.
func RegisterBindingRules() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency", validCurrency)
	}
}

func validCurrency(fl validator.FieldLevel) bool {
	return domain.Currency(fl.Field().String()).Valid()
}
