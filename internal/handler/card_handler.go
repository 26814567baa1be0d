package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type CardHandler struct {
	cardService service.CardService
}

func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
	}
}

// CreateCard godoc
// @Summary      Create a card
// @Description  Appends the card at the end of the column
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        request body dto.CreateCardRequest true "Card"
// @Success      201 {object} response.SuccessResponse{data=dto.CardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Column busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	card, err := h.cardService.CreateCard(c.Request.Context(), userID, path, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, card)
}

// ListCards godoc
// @Summary      List cards in order
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CardResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	cards, err := h.cardService.ListCards(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, cards)
}

// GetCard godoc
// @Summary      Get a card
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	card, err := h.cardService.GetCard(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// UpdateCard godoc
// @Summary      Update card title or description
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.UpdateCardRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId} [patch]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	card, err := h.cardService.UpdateCard(c.Request.Context(), userID, path, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// DeleteCard godoc
// @Summary      Delete a card
// @Description  Removes the card and closes the gap in its column
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Column busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	if err := h.cardService.DeleteCard(c.Request.Context(), userID, path); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Card deleted"})
}

// MoveCard godoc
// @Summary      Move a card
// @Description  Moves the card within its column or to another column of the same board
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.MoveCardRequest true "Destination"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Failure      400 {object} response.ErrorResponse "INVALID_POSITION"
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Column busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/move [post]
func (h *CardHandler) MoveCard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	var req dto.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	card, err := h.cardService.MoveCard(c.Request.Context(), userID, path, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// CompleteCard godoc
// @Summary      Mark a card as completed
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/complete [patch]
func (h *CardHandler) CompleteCard(c *gin.Context) {
	h.setCompleted(c, true)
}

// UncompleteCard godoc
// @Summary      Clear the completed flag
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/uncomplete [patch]
func (h *CardHandler) UncompleteCard(c *gin.Context) {
	h.setCompleted(c, false)
}

func (h *CardHandler) setCompleted(c *gin.Context, completed bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	card, err := h.cardService.SetCompleted(c.Request.Context(), userID, path, completed)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// SetDeadline godoc
// @Summary      Set or clear the due date
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.DeadlineRequest true "Due date, null clears it"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/deadline [patch]
func (h *CardHandler) SetDeadline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	var req dto.DeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	card, err := h.cardService.SetDeadline(c.Request.Context(), userID, path, req.DueDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// ListMembers godoc
// @Summary      List card members
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CardMemberResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/members [get]
func (h *CardHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	members, err := h.cardService.ListMembers(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, members)
}

// AddMember godoc
// @Summary      Assign a board member to a card
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Not a board member"
// @Failure      403 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/members/{userId} [post]
func (h *CardHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	if err := h.cardService.AddMember(c.Request.Context(), userID, path, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Member added"})
}

// RemoveMember godoc
// @Summary      Unassign a card member
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/members/{userId} [delete]
func (h *CardHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	if err := h.cardService.RemoveMember(c.Request.Context(), userID, path, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Member removed"})
}

// Subscribe godoc
// @Summary      Join a card
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/subscribe [post]
func (h *CardHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	if err := h.cardService.Subscribe(c.Request.Context(), userID, path); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Subscribed"})
}

// Unsubscribe godoc
// @Summary      Leave a card
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/unsubscribe [post]
func (h *CardHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	if err := h.cardService.Unsubscribe(c.Request.Context(), userID, path); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Unsubscribed"})
}

// ListLabels godoc
// @Summary      List labels on a card
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.LabelResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/labels [get]
func (h *CardHandler) ListLabels(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	labels, err := h.cardService.ListLabels(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, labels)
}

// ToggleLabel godoc
// @Summary      Attach or detach a board label
// @Tags         cards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        labelId path string true "Label ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ToggleLabelResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/labels/{labelId} [post]
func (h *CardHandler) ToggleLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	labelID, ok := uuidParam(c, "labelId", "label")
	if !ok {
		return
	}
	result, err := h.cardService.ToggleLabel(c.Request.Context(), userID, path, labelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
