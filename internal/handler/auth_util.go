package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

// Context keys written by middleware.Auth
const (
	ContextUserID = "user_id"
	ContextToken  = "jwtToken"
)

// currentUserID extracts the authenticated user from the Gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok || userUUID == uuid.Nil {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID.
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// boardPath reads workspaceId and boardId
func boardPath(c *gin.Context) (authz.Path, bool) {
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return authz.Path{}, false
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return authz.Path{}, false
	}
	return authz.Path{WorkspaceID: wsID, BoardID: boardID}, true
}

// columnPath extends boardPath with columnId
func columnPath(c *gin.Context) (authz.Path, bool) {
	path, ok := boardPath(c)
	if !ok {
		return path, false
	}
	path.ColumnID, ok = uuidParam(c, "columnId", "column")
	return path, ok
}

// cardPath extends columnPath with cardId
func cardPath(c *gin.Context) (authz.Path, bool) {
	path, ok := columnPath(c)
	if !ok {
		return path, false
	}
	path.CardID, ok = uuidParam(c, "cardId", "card")
	return path, ok
}

// formFile opens the multipart field as an upload. The returned close func
// must be called once the service is done with the reader.
func formFile(c *gin.Context, field string, required bool) (*service.FileUpload, func(), bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if !required && errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, true
		}
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "File field '"+field+"' is required")
		return nil, nil, false
	}
	return openUpload(c, header)
}

func openUpload(c *gin.Context, header *multipart.FileHeader) (*service.FileUpload, func(), bool) {
	f, err := header.Open()
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Unable to read uploaded file")
		return nil, nil, false
	}
	return &service.FileUpload{
		Reader:      f,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, true
}
