package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type BoardHandler struct {
	boardService service.BoardService
}

func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// CreateBoard godoc
// @Summary      Create a board
// @Description  Accepts JSON, or multipart with a "name" field and an optional "image" file. Requires workspace admin.
// @Tags         boards
// @Accept       json,mpfd
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        request body dto.CreateBoardRequest false "Board (JSON form)"
// @Param        image formData file false "Board image"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards [post]
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}

	var req dto.CreateBoardRequest
	var image *service.FileUpload
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
			return
		}
		file, closeFile, ok := formFile(c, "image", false)
		if !ok {
			return
		}
		defer closeFile()
		image = file
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), userID, wsID, &req, image)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, board)
}

// ListBoards godoc
// @Summary      List the boards of a workspace the caller can see
// @Tags         boards
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards [get]
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	boards, err := h.boardService.ListBoards(c.Request.Context(), userID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, boards)
}

// GetBoard godoc
// @Summary      Get a board
// @Description  Also records the view for the recent boards list
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId} [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	board, err := h.boardService.GetBoard(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, board)
}

// UpdateBoard godoc
// @Summary      Rename a board
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.UpdateBoardRequest true "Board"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId} [patch]
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	var req dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	board, err := h.boardService.UpdateBoard(c.Request.Context(), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, board)
}

// UpdateImage godoc
// @Summary      Replace the board image
// @Tags         boards
// @Accept       multipart/form-data
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        file formData file true "Image"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/image [put]
func (h *BoardHandler) UpdateImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", true)
	if !ok {
		return
	}
	defer closeFile()

	board, err := h.boardService.UpdateImage(c.Request.Context(), userID, boardID, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, board)
}

// DeleteBoard godoc
// @Summary      Delete a board
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId} [delete]
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	if err := h.boardService.DeleteBoard(c.Request.Context(), userID, boardID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Board deleted"})
}

// AddFavorite godoc
// @Summary      Mark a board as favorite
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/favorite [post]
func (h *BoardHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	if err := h.boardService.AddFavorite(c.Request.Context(), userID, boardID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Board added to favorites"})
}

// RemoveFavorite godoc
// @Summary      Unmark a favorite board
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/favorite [delete]
func (h *BoardHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	if err := h.boardService.RemoveFavorite(c.Request.Context(), userID, boardID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Board removed from favorites"})
}

// ListFavorites godoc
// @Summary      List favorite boards
// @Tags         boards
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse}
// @Security     BearerAuth
// @Router       /boards/favorites [get]
func (h *BoardHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boards, err := h.boardService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, boards)
}

// ListRecent godoc
// @Summary      List recently viewed boards
// @Tags         boards
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse}
// @Security     BearerAuth
// @Router       /boards/recent [get]
func (h *BoardHandler) ListRecent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boards, err := h.boardService.ListRecent(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, boards)
}

// GetView godoc
// @Summary      Full board view
// @Description  Columns in order, each with its cards in order, plus the board labels
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardViewResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/view [get]
func (h *BoardHandler) GetView(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	view, err := h.boardService.GetView(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, view)
}

// ListActivity godoc
// @Summary      Board activity log
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        limit query int false "Maximum entries (default 50, max 200)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ActivityResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/activity [get]
func (h *BoardHandler) ListActivity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.boardService.ListActivity(c.Request.Context(), userID, boardID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, entries)
}

// ListMembers godoc
// @Summary      List board members
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.MemberResponse}
// @Security     BearerAuth
// @Router       /boards/{boardId}/members [get]
func (h *BoardHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	members, err := h.boardService.ListMembers(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, members)
}

// AddMember godoc
// @Summary      Add a board member
// @Description  The user must already belong to the workspace
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.AddBoardMemberRequest true "Member"
// @Success      201 {object} response.SuccessResponse{data=dto.MemberResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/members [post]
func (h *BoardHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	var req dto.AddBoardMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	member, err := h.boardService.AddMember(c.Request.Context(), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, member)
}

// UpdateMemberRole godoc
// @Summary      Promote a board member
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Param        request body dto.UpdateMemberRoleRequest true "Role"
// @Success      200 {object} response.SuccessResponse{data=dto.MemberResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/members/{userId}/role [patch]
func (h *BoardHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	member, err := h.boardService.UpdateMemberRole(c.Request.Context(), userID, boardID, targetID, req.Role)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, member)
}

// RemoveMember godoc
// @Summary      Remove a board member
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/members/{userId} [delete]
func (h *BoardHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	if err := h.boardService.RemoveMember(c.Request.Context(), userID, boardID, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Member removed"})
}

// Leave godoc
// @Summary      Leave a board
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.LeaveResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/leave [delete]
func (h *BoardHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	result, err := h.boardService.Leave(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
