package vendor_booking_controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/models/booking_models"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/notifications"
	"github.com/stayvia/booking/utils"
)

// VendorBookingController is the host-side surface: reviewing requests,
// accepting or declining them, and moving paid stays through check-in to
// completion.
type VendorBookingController struct {
	DB     *pgxpool.Pool
	Notify *notifications.Dispatcher
}

func NewVendorBookingController(db *pgxpool.Pool, notify *notifications.Dispatcher) *VendorBookingController {
	return &VendorBookingController{DB: db, Notify: notify}
}

// ListBookings returns bookings across all of the vendor's properties.
func (vc *VendorBookingController) ListBookings(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)
	ctx := c.Request.Context()

	propertyIDs, err := property_models.VendorPropertyIDs(ctx, vc.DB, vendorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if len(propertyIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"bookings": []booking_models.Booking{}, "total": 0, "page": page, "limit": limit})
		return
	}

	bookings, total, err := booking_models.ListVendorBookings(ctx, vc.DB, propertyIDs, c.Query("status"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// Pending returns booking requests awaiting a decision.
func (vc *VendorBookingController) Pending(c *gin.Context) {
	vc.listWithStatus(c, shared_models.BookingStatusPending)
}

// Active returns in-flight bookings across the vendor's properties.
func (vc *VendorBookingController) Active(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)
	ctx := c.Request.Context()

	propertyIDs, err := property_models.VendorPropertyIDs(ctx, vc.DB, vendorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if len(propertyIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"bookings": []booking_models.Booking{}, "total": 0, "page": page, "limit": limit})
		return
	}

	bookings, total, err := booking_models.ListVendorActive(ctx, vc.DB, propertyIDs, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

func (vc *VendorBookingController) listWithStatus(c *gin.Context, status string) {
	vendorID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)
	ctx := c.Request.Context()

	propertyIDs, err := property_models.VendorPropertyIDs(ctx, vc.DB, vendorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if len(propertyIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"bookings": []booking_models.Booking{}, "total": 0, "page": page, "limit": limit})
		return
	}

	bookings, total, err := booking_models.ListVendorBookings(ctx, vc.DB, propertyIDs, status, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// Today returns confirmed or paid bookings arriving today.
func (vc *VendorBookingController) Today(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)
	ctx := c.Request.Context()

	propertyIDs, err := property_models.VendorPropertyIDs(ctx, vc.DB, vendorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if len(propertyIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"bookings": []booking_models.Booking{}})
		return
	}

	bookings, err := booking_models.ListVendorToday(ctx, vc.DB, propertyIDs)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// History returns terminal bookings across the vendor's properties.
func (vc *VendorBookingController) History(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)
	page, limit := parsePagination(c)
	ctx := c.Request.Context()

	propertyIDs, err := property_models.VendorPropertyIDs(ctx, vc.DB, vendorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if len(propertyIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"bookings": []booking_models.Booking{}, "total": 0, "page": page, "limit": limit})
		return
	}

	bookings, total, err := booking_models.ListVendorHistory(ctx, vc.DB, propertyIDs, c.Query("status"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// GetBooking returns a single booking if it belongs to one of the vendor's
// properties.
func (vc *VendorBookingController) GetBooking(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := booking_models.GetVendorBooking(c.Request.Context(), vc.DB, vendorID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// act applies a state-machine action after the ownership check.
func (vc *VendorBookingController) act(c *gin.Context, action shared_models.BookingAction) (*booking_models.Booking, bool) {
	vendorID, _ := auth.SubjectID(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return nil, false
	}
	ctx := c.Request.Context()

	if _, err := booking_models.GetVendorBooking(ctx, vc.DB, vendorID, bookingID); err != nil {
		utils.RespondError(c, err)
		return nil, false
	}

	booking, err := booking_models.Transition(ctx, vc.DB, bookingID, action)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}

	logger.InfoLogger.Infof("Vendor %s applied %s to booking %s", vendorID, action, bookingID)
	return booking, true
}

func (vc *VendorBookingController) notifyDecision(c *gin.Context, booking *booking_models.Booking, accepted bool) {
	room, property, err := property_models.GetRoomWithProperty(c.Request.Context(), vc.DB, booking.RoomID)
	if err != nil {
		return
	}
	vc.Notify.BookingDecided(booking, room, property, accepted)
}

// Accept confirms a pending booking request.
func (vc *VendorBookingController) Accept(c *gin.Context) {
	booking, ok := vc.act(c, shared_models.ActionAccept)
	if !ok {
		return
	}
	vc.notifyDecision(c, booking, true)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Decline rejects a pending booking request.
func (vc *VendorBookingController) Decline(c *gin.Context) {
	booking, ok := vc.act(c, shared_models.ActionDecline)
	if !ok {
		return
	}
	vc.notifyDecision(c, booking, false)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Cancel cancels a confirmed or paid booking from the host side.
func (vc *VendorBookingController) Cancel(c *gin.Context) {
	booking, ok := vc.act(c, shared_models.ActionCancelVendor)
	if !ok {
		return
	}
	room, property, err := property_models.GetRoomWithProperty(c.Request.Context(), vc.DB, booking.RoomID)
	if err == nil {
		vc.Notify.BookingCancelled(booking, room, property, true)
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CheckIn marks the guest as arrived.
func (vc *VendorBookingController) CheckIn(c *gin.Context) {
	booking, ok := vc.act(c, shared_models.ActionCheckIn)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Complete closes out a checked-in stay.
func (vc *VendorBookingController) Complete(c *gin.Context) {
	booking, ok := vc.act(c, shared_models.ActionComplete)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
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
