package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const invitePurpose = "workspace_invite"

var errInvalidInvite = errors.New("invalid invite token")

type inviteClaims struct {
	WorkspaceID string `json:"workspaceId"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// InviteTokens issues and verifies signed workspace invite links
type InviteTokens struct {
	secret      []byte
	ttl         time.Duration
	frontendURL string
	now         func() time.Time
}

// NewInviteTokens creates an InviteTokens signing with secret
func NewInviteTokens(secret string, ttl time.Duration, frontendURL string) *InviteTokens {
	return &InviteTokens{
		secret:      []byte(secret),
		ttl:         ttl,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		now:         time.Now,
	}
}

// Issue signs a token for workspaceID
func (t *InviteTokens) Issue(workspaceID uuid.UUID) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, inviteClaims{
		WorkspaceID: workspaceID.String(),
		Purpose:     invitePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign invite token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns the workspace it grants access to
func (t *InviteTokens) Parse(token string) (uuid.UUID, error) {
	var claims inviteClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errInvalidInvite, err)
	}
	if claims.Purpose != invitePurpose {
		return uuid.Nil, fmt.Errorf("%w: wrong purpose %q", errInvalidInvite, claims.Purpose)
	}
	id, err := uuid.Parse(claims.WorkspaceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errInvalidInvite, err)
	}
	return id, nil
}

// Link builds the frontend URL carrying token
func (t *InviteTokens) Link(token string) string {
	return t.frontendURL + "/invite?token=" + url.QueryEscape(token)
}
