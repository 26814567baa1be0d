package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

// CardFileHandler serves card attachments and covers
type CardFileHandler struct {
	fileService service.CardFileService
}

func NewCardFileHandler(fileService service.CardFileService) *CardFileHandler {
	return &CardFileHandler{
		fileService: fileService,
	}
}

// UploadAttachment godoc
// @Summary      Upload an attachment
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        file formData file true "Attachment"
// @Success      201 {object} response.SuccessResponse{data=dto.AttachmentResponse}
// @Failure      400 {object} response.ErrorResponse "Missing file or too large"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/attachments [post]
func (h *CardFileHandler) UploadAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", true)
	if !ok {
		return
	}
	defer closeFile()

	attachment, err := h.fileService.UploadAttachment(c.Request.Context(), userID, path, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, attachment)
}

// ListAttachments godoc
// @Summary      List attachments of a card
// @Tags         attachments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.AttachmentResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/attachments [get]
func (h *CardFileHandler) ListAttachments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	list, err := h.fileService.ListAttachments(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, list)
}

// CountAttachments godoc
// @Summary      Count attachments of a card
// @Tags         attachments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CountResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/attachments/count [get]
func (h *CardFileHandler) CountAttachments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	count, err := h.fileService.CountAttachments(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, count)
}

// DownloadAttachment godoc
// @Summary      Get a download URL for an attachment
// @Description  Returns a presigned URL valid for 15 minutes
// @Tags         attachments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        attachmentId path string true "Attachment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DownloadURLResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/attachments/{attachmentId}/download [get]
func (h *CardFileHandler) DownloadAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	attachmentID, ok := uuidParam(c, "attachmentId", "attachment")
	if !ok {
		return
	}
	url, err := h.fileService.DownloadURL(c.Request.Context(), userID, path, attachmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, url)
}

// DeleteAttachment godoc
// @Summary      Delete an attachment
// @Description  Allowed for the uploader and board admins
// @Tags         attachments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        attachmentId path string true "Attachment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/attachments/{attachmentId} [delete]
func (h *CardFileHandler) DeleteAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	attachmentID, ok := uuidParam(c, "attachmentId", "attachment")
	if !ok {
		return
	}
	if err := h.fileService.DeleteAttachment(c.Request.Context(), userID, path, attachmentID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Attachment deleted"})
}

// UploadCover godoc
// @Summary      Set the card cover image
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        file formData file true "Cover image"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/cover [put]
func (h *CardFileHandler) UploadCover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", true)
	if !ok {
		return
	}
	defer closeFile()

	card, err := h.fileService.UploadCover(c.Request.Context(), userID, path, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, card)
}

// DeleteCover godoc
// @Summary      Remove the card cover image
// @Tags         attachments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      404 {object} response.ErrorResponse "No cover"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/cover [delete]
func (h *CardFileHandler) DeleteCover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	if err := h.fileService.DeleteCover(c.Request.Context(), userID, path); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Cover removed"})
}
