package service

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
)

type urlFunc func(key string) string

func toWorkspaceResponse(ws *domain.Workspace, fileURL urlFunc) *dto.WorkspaceResponse {
	return &dto.WorkspaceResponse{
		ID:         ws.ID,
		Name:       ws.Name,
		Visibility: string(ws.Visibility),
		ImageURL:   fileURL(ws.ImageKey),
		CreatedBy:  ws.CreatedBy,
		CreatedAt:  ws.CreatedAt,
		UpdatedAt:  ws.UpdatedAt,
	}
}

func toWorkspaceMemberResponses(members []*domain.WorkspaceMember) []dto.MemberResponse {
	out := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		out[i] = dto.MemberResponse{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
	}
	return out
}

func toBoardMemberResponses(members []*domain.BoardMember) []dto.MemberResponse {
	out := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		out[i] = dto.MemberResponse{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
	}
	return out
}

func toBoardResponse(b *domain.Board, favorite bool, fileURL urlFunc) *dto.BoardResponse {
	return &dto.BoardResponse{
		ID:          b.ID,
		WorkspaceID: b.WorkspaceID,
		Name:        b.Name,
		ImageURL:    fileURL(b.ImageKey),
		IsFavorite:  favorite,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toColumnResponse(c *domain.Column) *dto.ColumnResponse {
	return &dto.ColumnResponse{
		ID:        c.ID,
		BoardID:   c.BoardID,
		Name:      c.Name,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toColumnResponses(cols []*domain.Column) []dto.ColumnResponse {
	out := make([]dto.ColumnResponse, len(cols))
	for i, c := range cols {
		out[i] = *toColumnResponse(c)
	}
	return out
}

// cardDecorations holds the label and member ids of a set of cards
type cardDecorations struct {
	labels  map[uuid.UUID][]uuid.UUID
	members map[uuid.UUID][]uuid.UUID
}

func newCardDecorations(links []*domain.CardLabel, members []*domain.CardMember) cardDecorations {
	d := cardDecorations{
		labels:  make(map[uuid.UUID][]uuid.UUID),
		members: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, l := range links {
		d.labels[l.CardID] = append(d.labels[l.CardID], l.LabelID)
	}
	for _, m := range members {
		d.members[m.CardID] = append(d.members[m.CardID], m.UserID)
	}
	return d
}

func toCardResponse(c *domain.Card, deco cardDecorations, fileURL urlFunc) *dto.CardResponse {
	labels := deco.labels[c.ID]
	if labels == nil {
		labels = []uuid.UUID{}
	}
	members := deco.members[c.ID]
	if members == nil {
		members = []uuid.UUID{}
	}
	return &dto.CardResponse{
		ID:          c.ID,
		ColumnID:    c.ColumnID,
		Title:       c.Title,
		Description: c.Description,
		IsCompleted: c.IsCompleted,
		DueDate:     c.DueDate,
		CoverURL:    fileURL(c.CoverKey),
		Position:    c.Position,
		LabelIDs:    labels,
		MemberIDs:   members,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toLabelResponse(l *domain.Label) *dto.LabelResponse {
	return &dto.LabelResponse{
		ID:        l.ID,
		BoardID:   l.BoardID,
		Name:      l.Name,
		Color:     l.Color,
		CreatedAt: l.CreatedAt,
	}
}

func toLabelResponses(labels []*domain.Label) []dto.LabelResponse {
	out := make([]dto.LabelResponse, len(labels))
	for i, l := range labels {
		out[i] = *toLabelResponse(l)
	}
	return out
}

func toCommentResponse(c *domain.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        c.ID,
		CardID:    c.CardID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toAttachmentResponse(a *domain.Attachment) *dto.AttachmentResponse {
	return &dto.AttachmentResponse{
		ID:          a.ID,
		CardID:      a.CardID,
		FileName:    a.FileName,
		FileSize:    a.FileSize,
		ContentType: a.ContentType,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}

func toActivityResponse(a *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:         a.ID,
		ActorID:    a.ActorID,
		Action:     string(a.Action),
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Payload:    json.RawMessage(a.Payload),
		CreatedAt:  a.CreatedAt,
	}
}
