package user_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/models/user_models"
	"github.com/stayvia/booking/utils"
)

const accessTokenTTL = 24 * time.Hour

type UserController struct {
	DB *pgxpool.Pool
}

func NewUserController(db *pgxpool.Pool) *UserController {
	return &UserController{DB: db}
}

func generateAccessToken(subjectID uuid.UUID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": subjectID.String(),
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(utils.GetJWTSecret())
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a guest account and returns an access token.
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if _, err := user_models.GetUserByEmail(ctx, uc.DB, req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	user, err := user_models.NewUser(req.Email, req.Name, hash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}
	if err := user_models.CreateUser(ctx, uc.DB, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	token, err := generateAccessToken(user.ID, auth.RoleGuest)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	logger.InfoLogger.Infof("User %s registered", user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user, "accessToken": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a guest by email and password.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := user_models.GetUserByEmail(c.Request.Context(), uc.DB, req.Email)
	if err != nil || !utils.VerifyPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateAccessToken(user.ID, auth.RoleGuest)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "accessToken": token})
}

// VendorLogin authenticates a vendor by email and password.
func (uc *UserController) VendorLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	var vendor *property_models.Vendor
	row := uc.DB.QueryRow(ctx, `
		SELECT id, email, business_name, password_hash, push_token, payout_account_id, payout_onboarded
		FROM vendors WHERE lower(email) = lower($1)`, req.Email)
	vendor = &property_models.Vendor{}
	err := row.Scan(&vendor.ID, &vendor.Email, &vendor.BusinessName, &vendor.PasswordHash,
		&vendor.PushToken, &vendor.PayoutAccountID, &vendor.PayoutOnboarded)
	if err != nil || !utils.VerifyPassword(req.Password, vendor.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := generateAccessToken(vendor.ID, auth.RoleVendor)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "accessToken": token})
}

type pushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SavePushToken stores the caller's device token for push notifications.
func (uc *UserController) SavePushToken(c *gin.Context) {
	userID, _ := auth.SubjectID(c)

	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := user_models.SavePushToken(c.Request.Context(), uc.DB, userID, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token saved"})
}

// SaveVendorPushToken stores a vendor device token.
func (uc *UserController) SaveVendorPushToken(c *gin.Context) {
	vendorID, _ := auth.SubjectID(c)

	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := property_models.SaveVendorPushToken(c.Request.Context(), uc.DB, vendorID, req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token saved"})
}
