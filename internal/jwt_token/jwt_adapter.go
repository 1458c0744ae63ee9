package jwttoken

import (
	"github.com/google/uuid"
)

// JWTServiceAdapter exposes the JWTService through the coordinator's
// TokenIssuer and TokenVerifier ports.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) Issue(userID uuid.UUID) (string, error) {
	return a.service.GenerateAccessToken(userID)
}

func (a *JWTServiceAdapter) Verify(credential string) (uuid.UUID, error) {
	return a.service.ExtractUserIDFromToken(credential)
}
