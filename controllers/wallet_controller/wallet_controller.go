package wallet_controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/models/wallet_models"
	"github.com/stayvia/booking/utils"
)

type WalletController struct {
	DB *pgxpool.Pool
}

func NewWalletController(db *pgxpool.Pool) *WalletController {
	return &WalletController{DB: db}
}

// GetWallet returns the caller's wallet, creating it lazily.
func (wc *WalletController) GetWallet(c *gin.Context) {
	userID, _ := auth.SubjectID(c)

	wallet, err := wallet_models.GetOrCreateWallet(c.Request.Context(), wc.DB, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

type fundWalletRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// FundWallet credits the caller's wallet and appends the matching ledger
// entry.
func (wc *WalletController) FundWallet(c *gin.Context) {
	userID, _ := auth.SubjectID(c)

	var req fundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := wallet_models.Fund(c.Request.Context(), wc.DB, userID, req.Amount)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("User %s funded wallet with %.2f", userID, req.Amount)
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// ListTransactions returns the caller's ledger entries, newest first.
func (wc *WalletController) ListTransactions(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	wallet, err := wallet_models.GetOrCreateWallet(ctx, wc.DB, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	transactions, total, err := wallet_models.ListTransactions(ctx, wc.DB, wallet.ID, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if transactions == nil {
		transactions = []wallet_models.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      wallet.Balance,
		"transactions": transactions,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}
