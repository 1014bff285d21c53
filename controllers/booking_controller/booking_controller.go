package booking_controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayvia/booking/badwords"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/models/booking_models"
	"github.com/stayvia/booking/models/promo_models"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/models/user_models"
	"github.com/stayvia/booking/notifications"
	"github.com/stayvia/booking/pricing"
	"github.com/stayvia/booking/utils"
)

type BookingController struct {
	DB     *pgxpool.Pool
	Notify *notifications.Dispatcher
	Fees   pricing.FeePolicy
}

func NewBookingController(db *pgxpool.Pool, notify *notifications.Dispatcher) *BookingController {
	return &BookingController{
		DB:     db,
		Notify: notify,
		Fees:   pricing.LoadFeePolicy(),
	}
}

type createBookingRequest struct {
	RoomID          string    `json:"roomId" binding:"required,uuid"`
	CheckIn         time.Time `json:"checkIn" binding:"required"`
	CheckOut        time.Time `json:"checkOut" binding:"required"`
	Guests          int       `json:"guests"`
	GuestName       string    `json:"guestName"`
	GuestEmail      string    `json:"guestEmail" binding:"omitempty,email"`
	GuestPhone      string    `json:"guestPhone"`
	SpecialRequests string    `json:"specialRequests"`
	PromoCode       string    `json:"promoCode"`
}

// CreateBooking creates a PENDING booking with its price fixed at creation.
// Promo redemption and the insert share one transaction, so a booking can
// never reference a redemption that did not stick.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	userID, ok := auth.SubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": utils.ErrUserIDNotFound.Error()})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Guests < 1 {
		req.Guests = 1
	}
	if badwords.Contains(req.SpecialRequests) || badwords.Contains(req.GuestName) {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_TEXT", "error": "Request contains disallowed language"})
		return
	}

	nights, err := pricing.Nights(req.CheckIn, req.CheckOut)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	roomID := uuid.MustParse(req.RoomID)
	ctx := c.Request.Context()

	user, err := user_models.GetUserByID(ctx, bc.DB, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.GuestName == "" {
		req.GuestName = user.Name
	}
	if req.GuestEmail == "" {
		req.GuestEmail = user.Email
	}
	if req.GuestPhone == "" && user.Phone != nil {
		req.GuestPhone = *user.Phone
	}

	tx, err := bc.DB.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to begin booking transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	defer tx.Rollback(ctx)

	room, property, err := property_models.GetRoomWithProperty(ctx, tx, roomID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !room.Available {
		c.JSON(http.StatusConflict, gin.H{"code": "ROOM_UNAVAILABLE", "error": "Room is not available"})
		return
	}

	var promoID *uuid.UUID
	var discount *pricing.Discount
	if req.PromoCode != "" {
		promo, err := promo_models.GetPromoByCode(ctx, tx, req.PromoCode)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if err := promo.Validate(time.Now()); err != nil {
			utils.RespondError(c, err)
			return
		}
		if err := promo_models.RedeemPromo(ctx, tx, promo.ID); err != nil {
			utils.RespondError(c, err)
			return
		}
		promoID = &promo.ID
		d := promo.Discount()
		discount = &d
	}

	quote := pricing.Compute(nights, room.Price, bc.Fees, discount)

	booking := &booking_models.Booking{
		UserID:     userID,
		PropertyID: property.ID,
		RoomID:     room.ID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Nights:     nights,
		Guests:     req.Guests,
		RoomType:    room.Type,
		Subtotal:    quote.Subtotal,
		ServiceFee:  quote.ServiceFee,
		DeliveryFee: quote.DeliveryFee,
		Total:       quote.Total,
		PriceNote:   room.PriceNote,
		PromoCodeID: promoID,
		Status:      shared_models.BookingStatusPending,
	}
	if req.SpecialRequests != "" {
		booking.SpecialRequests = &req.SpecialRequests
	}

	if err := booking_models.InsertBooking(ctx, tx, booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit booking transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	logger.InfoLogger.Infof("Booking %s created for room %s", booking.ID, room.ID)
	bc.Notify.BookingRequested(booking, room, property)

	c.JSON(http.StatusCreated, gin.H{"booking": booking, "quote": quote})
}

type quoteRequest struct {
	RoomID    string    `json:"roomId" binding:"required,uuid"`
	CheckIn   time.Time `json:"checkIn" binding:"required"`
	CheckOut  time.Time `json:"checkOut" binding:"required"`
	PromoCode string    `json:"promoCode"`
}

// Quote prices a prospective stay without creating anything. Promo codes are
// validated but not redeemed.
func (bc *BookingController) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nights, err := pricing.Nights(req.CheckIn, req.CheckOut)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	room, err := property_models.GetRoomByID(ctx, bc.DB, uuid.MustParse(req.RoomID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var discount *pricing.Discount
	if req.PromoCode != "" {
		promo, err := promo_models.GetPromoByCode(ctx, bc.DB, req.PromoCode)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if err := promo.Validate(time.Now()); err != nil {
			utils.RespondError(c, err)
			return
		}
		d := promo.Discount()
		discount = &d
	}

	quote := pricing.Compute(nights, room.Price, bc.Fees, discount)
	c.JSON(http.StatusOK, gin.H{"nights": nights, "quote": quote})
}

// GetBooking returns one of the caller's bookings.
func (bc *BookingController) GetBooking(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := booking_models.GetUserBooking(c.Request.Context(), bc.DB, userID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListBookings returns the caller's bookings with optional status filter.
func (bc *BookingController) ListBookings(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)

	bookings, total, err := booking_models.ListUserBookings(
		c.Request.Context(), bc.DB, userID, c.Query("status"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// Active returns the caller's in-flight bookings, soonest check-in first.
func (bc *BookingController) Active(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)

	bookings, total, err := booking_models.ListUserActive(
		c.Request.Context(), bc.DB, userID, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// History returns the caller's completed and cancelled bookings.
func (bc *BookingController) History(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)

	bookings, total, err := booking_models.ListUserHistory(
		c.Request.Context(), bc.DB, userID, c.Query("status"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// CancelBooking cancels the caller's own booking where the state machine
// allows it.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	ctx := c.Request.Context()

	if _, err := booking_models.GetUserBooking(ctx, bc.DB, userID, bookingID); err != nil {
		utils.RespondError(c, err)
		return
	}

	booking, err := booking_models.Transition(ctx, bc.DB, bookingID, shared_models.ActionCancelGuest)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	room, property, err := property_models.GetRoomWithProperty(ctx, bc.DB, booking.RoomID)
	if err == nil {
		bc.Notify.BookingCancelled(booking, room, property, false)
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Rebook prices the same room again for new dates. Only completed stays can
// be rebooked, and the room must still be bookable.
func (bc *BookingController) Rebook(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}
	ctx := c.Request.Context()

	previous, err := booking_models.GetUserBooking(ctx, bc.DB, userID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if previous.Status != shared_models.BookingStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"code": utils.CodeInvalidBookingState, "error": "Only completed stays can be rebooked"})
		return
	}

	room, err := property_models.GetRoomByID(ctx, bc.DB, previous.RoomID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !room.Available {
		c.JSON(http.StatusConflict, gin.H{"code": "ROOM_UNAVAILABLE", "error": "Room is no longer available"})
		return
	}

	// Price at today's rate, not the old booking's.
	quote := pricing.Compute(previous.Nights, room.Price, bc.Fees, nil)
	c.JSON(http.StatusOK, gin.H{"room": room, "previousBooking": previous, "quote": quote})
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
