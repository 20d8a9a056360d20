package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/qodirovs/finance_tracker_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cardHandler handles HTTP requests related to cards.
type cardHandler struct {
	cardService portssvc.CardSvcFacade
}

// newCardHandler creates a new cardHandler.
func newCardHandler(cs portssvc.CardSvcFacade) *cardHandler {
	return &cardHandler{
		cardService: cs,
	}
}

// registerCardRoutes registers routes related to cards.
func registerCardRoutes(rg *gin.RouterGroup, cardService portssvc.CardSvcFacade) {
	h := newCardHandler(cardService)

	cards := rg.Group("/cards")
	{
		cards.POST("", h.createCard)
		cards.GET("", h.listCards)
		cards.GET("/:id", h.getCard)
		cards.PUT("/:id", h.updateCard)
		cards.DELETE("/:id", h.deleteCard)
		cards.PUT("/:id/default", h.setDefaultCard)
		cards.PUT("/:id/status", h.changeCardStatus)
		cards.PUT("/:id/balance", h.correctBalance)
		cards.GET("/:id/balance", h.getBalanceInCurrency)
	}
}

// cardError maps service errors to HTTP responses shared by the card handlers.
func cardError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Card not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Card belongs to another user")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting card state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createCard godoc
// @Summary Create a new card
// @Description Creates a new card for the logged-in user. The first card automatically becomes the default.
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   card body dto.CreateCardRequest true "Card details"
// @Success 201 {object} dto.CardResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create card"
// @Security BearerAuth
// @Router /cards [post]
func (h *cardHandler) createCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCard", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to create card", slog.String("card_name", req.Name), slog.String("currency_code", req.CurrencyCode))

	newCard, err := h.cardService.CreateCard(c.Request.Context(), userID, req)
	if err != nil {
		cardError(c, logger, err, "create card")
		return
	}

	logger.Info("Card created successfully", slog.String("card_id", newCard.CardID))
	c.JSON(http.StatusCreated, dto.ToCardResponse(newCard))
}

// listCards godoc
// @Summary List the user's cards
// @Description Retrieves all cards belonging to the logged-in user
// @Tags cards
// @Produce  json
// @Success 200 {array} dto.CardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list cards"
// @Security BearerAuth
// @Router /cards [get]
func (h *cardHandler) listCards(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cards, err := h.cardService.ListCards(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list cards from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cards"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCardResponse(cards))
}

// getCard godoc
// @Summary Get a card by ID
// @Description Retrieves one of the logged-in user's cards
// @Tags cards
// @Produce  json
// @Param   id path string true "Card ID"
// @Success 200 {object} dto.CardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (card belongs to another user)"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to retrieve card"
// @Security BearerAuth
// @Router /cards/{id} [get]
func (h *cardHandler) getCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID))

	card, err := h.cardService.GetCardByID(c.Request.Context(), userID, cardID)
	if err != nil {
		cardError(c, logger, err, "retrieve card")
		return
	}

	c.JSON(http.StatusOK, dto.ToCardResponse(card))
}

// updateCard godoc
// @Summary Update a card
// @Description Updates mutable card attributes. Currency and balance are immutable here.
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   id path string true "Card ID"
// @Param   card body dto.UpdateCardRequest true "Card details to update"
// @Success 200 {object} dto.CardResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to update card"
// @Security BearerAuth
// @Router /cards/{id} [put]
func (h *cardHandler) updateCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")
	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCard", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID))

	updated, err := h.cardService.UpdateCard(c.Request.Context(), userID, cardID, req)
	if err != nil {
		cardError(c, logger, err, "update card")
		return
	}

	logger.Info("Card updated successfully")
	c.JSON(http.StatusOK, dto.ToCardResponse(updated))
}

// deleteCard godoc
// @Summary Delete a card
// @Description Deletes a card with no transaction history. Cards with history or the last active card cannot be deleted.
// @Tags cards
// @Produce  json
// @Param   id path string true "Card ID"
// @Success 204 "Card deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 409 {object} map[string]string "Card has history or is the last active card"
// @Failure 500 {object} map[string]string "Failed to delete card"
// @Security BearerAuth
// @Router /cards/{id} [delete]
func (h *cardHandler) deleteCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID))

	if err := h.cardService.DeleteCard(c.Request.Context(), userID, cardID); err != nil {
		cardError(c, logger, err, "delete card")
		return
	}

	logger.Info("Card deleted successfully")
	c.Status(http.StatusNoContent)
}

// setDefaultCard godoc
// @Summary Set the default card
// @Description Makes the card the user's default, demoting all others atomically
// @Tags cards
// @Produce  json
// @Param   id path string true "Card ID"
// @Success 200 {object} dto.CardResponse
// @Failure 400 {object} map[string]string "Card is not active"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to set default card"
// @Security BearerAuth
// @Router /cards/{id}/default [put]
func (h *cardHandler) setDefaultCard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID))

	card, err := h.cardService.SetDefaultCard(c.Request.Context(), userID, cardID)
	if err != nil {
		cardError(c, logger, err, "set default card")
		return
	}

	logger.Info("Default card set")
	c.JSON(http.StatusOK, dto.ToCardResponse(card))
}

// changeCardStatus godoc
// @Summary Change a card's status
// @Description Moves a card between ACTIVE, INACTIVE and BLOCKED. Leaving ACTIVE clears the default flag.
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   id path string true "Card ID"
// @Param   status body dto.ChangeCardStatusRequest true "New status"
// @Success 200 {object} dto.CardResponse
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to change card status"
// @Security BearerAuth
// @Router /cards/{id}/status [put]
func (h *cardHandler) changeCardStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")
	var req dto.ChangeCardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChangeCardStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID), slog.String("status", string(req.Status)))

	card, err := h.cardService.ChangeCardStatus(c.Request.Context(), userID, cardID, req.Status)
	if err != nil {
		cardError(c, logger, err, "change card status")
		return
	}

	logger.Info("Card status changed")
	c.JSON(http.StatusOK, dto.ToCardResponse(card))
}

// correctBalance godoc
// @Summary Correct a card balance
// @Description Overwrites the card balance with an audited manual correction
// @Tags cards
// @Accept  json
// @Produce  json
// @Param   id path string true "Card ID"
// @Param   correction body dto.CorrectBalanceRequest true "New balance and reason"
// @Success 200 {object} dto.CardResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to correct balance"
// @Security BearerAuth
// @Router /cards/{id}/balance [put]
func (h *cardHandler) correctBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")
	var req dto.CorrectBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CorrectBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID))

	card, err := h.cardService.CorrectBalance(c.Request.Context(), userID, cardID, req)
	if err != nil {
		cardError(c, logger, err, "correct balance")
		return
	}

	logger.Info("Card balance corrected")
	c.JSON(http.StatusOK, dto.ToCardResponse(card))
}

// getBalanceInCurrency godoc
// @Summary Get a card balance in another currency
// @Description Converts the card balance to the requested currency using the latest rate
// @Tags cards
// @Produce  json
// @Param   id path string true "Card ID"
// @Param   currency query string true "Target currency code"
// @Success 200 {object} dto.CardBalanceResponse
// @Failure 400 {object} map[string]string "Invalid currency code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Failed to convert balance"
// @Security BearerAuth
// @Router /cards/{id}/balance [get]
func (h *cardHandler) getBalanceInCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cardID := c.Param("id")
	currencyCode := c.Query("currency")
	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'currency' must be a 3-letter currency code"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("card_id", cardID), slog.String("currency_code", currencyCode))

	balance, rateAvailable, err := h.cardService.GetBalanceInCurrency(c.Request.Context(), userID, cardID, currencyCode)
	if err != nil {
		cardError(c, logger, err, "convert balance")
		return
	}

	c.JSON(http.StatusOK, dto.CardBalanceResponse{
		CardID:        cardID,
		CurrencyCode:  currencyCode,
		Balance:       balance,
		RateAvailable: rateAvailable,
	})
}
