package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
	mw      *Middleware
}

func NewBookingHandler(service booking.BookingUseCase, mw *Middleware) *BookingHandler {
	return &BookingHandler{service: service, mw: mw}
}

func (h *BookingHandler) Register(properties, bookings *gin.RouterGroup) {
	properties.POST("/:id/bookings", h.mw.RequireAuth(), h.create)
	bookings.GET("/", h.mw.RequireAuth(), h.list)
	bookings.GET("/:id", h.mw.RequireAuth(), h.get)
}

// create accepts the guest-intake submission as multipart form data with the
// identity documents attached under "documents".
func (h *BookingHandler) create(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form data"})
		return
	}

	checkIn, err := parseDate(formValue(form.Value, "check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check-in date"})
		return
	}
	checkOut, err := parseDate(formValue(form.Value, "check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check-out date"})
		return
	}
	guests, _ := strconv.Atoi(formValue(form.Value, "guests"))
	confirmedAccuracy, _ := strconv.ParseBool(formValue(form.Value, "confirmed_accuracy"))
	agreedToTerms, _ := strconv.ParseBool(formValue(form.Value, "agreed_to_terms"))

	input := booking.GuestIntakeInput{
		GuestName:         formValue(form.Value, "guest_name"),
		Email:             formValue(form.Value, "email"),
		Phone:             formValue(form.Value, "phone"),
		Country:           formValue(form.Value, "country"),
		Guests:            guests,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		ArrivalTime:       formValue(form.Value, "arrival_time"),
		SpecialRequests:   formValue(form.Value, "special_requests"),
		ConfirmedAccuracy: confirmedAccuracy,
		AgreedToTerms:     agreedToTerms,
	}

	for _, fh := range form.File["documents"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read attached document"})
			return
		}
		defer f.Close()
		input.Documents = append(input.Documents, booking.Document{Name: fh.Filename, Reader: f})
	}

	result, err := h.service.Submit(c.Request.Context(), CurrentUser(c), propertyID, input)
	if err != nil {
		switch {
		case booking.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, booking.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "booking submission failed, please try again"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) list(c *gin.Context) {
	user := CurrentUser(c)
	bookings, err := h.service.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, booking.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}
