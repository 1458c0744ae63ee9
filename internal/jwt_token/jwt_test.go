package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "kycgate/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	service *JWTService
}

func (s *JWTSuite) SetupTest() {
	s.service = NewJWTService("test-signing-key", "kycgate", "kycgate-api", 15*time.Minute)
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) TestIssueAndVerifyRoundTrip() {
	userID := uuid.New()

	token, err := s.service.GenerateAccessToken(userID)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), token)

	claims, err := s.service.ValidateToken(token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), userID.String(), claims.UserID)
	assert.Equal(s.T(), userID.String(), claims.Subject)
	assert.Equal(s.T(), "kycgate", claims.Issuer)

	extracted, err := s.service.ExtractUserIDFromToken(token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), userID, extracted)
}

func (s *JWTSuite) TestGarbageTokenRejected() {
	_, err := s.service.ValidateToken("not-a-jwt")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestWrongKeyRejected() {
	other := NewJWTService("other-key", "kycgate", "kycgate-api", 15*time.Minute)
	token, err := other.GenerateAccessToken(uuid.New())
	require.NoError(s.T(), err)

	_, err = s.service.ValidateToken(token)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestExpiredTokenRejected() {
	expired := NewJWTService("test-signing-key", "kycgate", "kycgate-api", -1*time.Minute)
	token, err := expired.GenerateAccessToken(uuid.New())
	require.NoError(s.T(), err)

	_, err = s.service.ValidateToken(token)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(s.T(), err.Error(), "expired")
}

func (s *JWTSuite) TestAdapterImplementsPorts() {
	adapter := NewJWTServiceAdapter(s.service)
	userID := uuid.New()

	credential, err := adapter.Issue(userID)
	require.NoError(s.T(), err)

	subject, err := adapter.Verify(credential)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), userID, subject)
}
