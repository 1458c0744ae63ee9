package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ValidatorSuite struct {
	suite.Suite
	now time.Time
}

func (s *ValidatorSuite) SetupTest() {
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ValidatorSuite) newClaim(docType DocumentType, number string, issue time.Time, expiry *time.Time) DocumentClaim {
	claim, err := NewDocumentClaim(docType, number, issue, expiry, s.now)
	require.NoError(s.T(), err)
	return claim
}

func (s *ValidatorSuite) daysAgo(days int) time.Time {
	return s.now.Add(-time.Duration(days) * 24 * time.Hour)
}

func (s *ValidatorSuite) daysAhead(days int) time.Time {
	return s.now.Add(time.Duration(days) * 24 * time.Hour)
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) TestCCValidNoWarnings() {
	// Scenario: 7-digit CC issued yesterday.
	claim := s.newClaim(DocumentTypeCC, "1234567", s.daysAgo(1), nil)

	verdict := Validate(claim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Empty(s.T(), verdict.Reason)
	assert.Empty(s.T(), verdict.Warnings)
}

func (s *ValidatorSuite) TestCCLengthBounds() {
	cases := []struct {
		name   string
		number string
		valid  bool
	}{
		{"six digits too short", "123456", false},
		{"seven digits lower bound", "1234567", true},
		{"ten digits upper bound", "1234567890", true},
		{"eleven digits too long", "12345678901", false},
		{"non-digit characters", "12345A7", false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			claim := s.newClaim(DocumentTypeCC, tc.number, s.daysAgo(30), nil)
			verdict := Validate(claim, s.now)
			if tc.valid {
				assert.True(s.T(), verdict.Valid)
			} else {
				assert.False(s.T(), verdict.Valid)
				assert.Equal(s.T(), ReasonCCLength, verdict.Reason)
			}
		})
	}
}

func (s *ValidatorSuite) TestCCLengthCheckedBeforeDates() {
	// An out-of-range number fails with CC_LENGTH even when the issue date
	// would also fail the age rule.
	claim := s.newClaim(DocumentTypeCC, "123456", s.daysAgo(365*12), nil)

	verdict := Validate(claim, s.now)

	assert.False(s.T(), verdict.Valid)
	assert.Equal(s.T(), ReasonCCLength, verdict.Reason)
}

func (s *ValidatorSuite) TestCCExpiredByAge() {
	// Scenario: CC issued 11 years before now.
	claim := s.newClaim(DocumentTypeCC, "1234567", s.daysAgo(365*11), nil)

	verdict := Validate(claim, s.now)

	assert.False(s.T(), verdict.Valid)
	assert.Equal(s.T(), ReasonCCExpiredByAge, verdict.Reason)
}

func (s *ValidatorSuite) TestCCExactlyTenYearsStillValid() {
	// days/365 arithmetic: exactly 3650 days is not strictly greater than 10 years.
	claim := s.newClaim(DocumentTypeCC, "1234567", s.daysAgo(365*10), nil)

	verdict := Validate(claim, s.now)

	assert.True(s.T(), verdict.Valid)
}

func (s *ValidatorSuite) TestFutureIssueDateAnyType() {
	for _, docType := range []DocumentType{DocumentTypeCC, DocumentTypeTI, DocumentTypeCE} {
		s.Run(string(docType), func() {
			expiry := s.daysAhead(365 * 5)
			claim := s.newClaim(docType, "12345678", s.daysAhead(1), &expiry)
			verdict := Validate(claim, s.now)
			assert.False(s.T(), verdict.Valid)
			assert.Equal(s.T(), ReasonFutureIssueDate, verdict.Reason)
		})
	}
}

func (s *ValidatorSuite) TestTILikelyAdultWarning() {
	// Scenario: 8-digit TI issued 19 years before now.
	claim := s.newClaim(DocumentTypeTI, "12345678", s.daysAgo(365*19), nil)

	verdict := Validate(claim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Contains(s.T(), verdict.Warnings, WarningTIHolderLikelyAdult)
}

func (s *ValidatorSuite) TestTILengthBounds() {
	cases := []struct {
		number string
		reason Reason
	}{
		{"1234567", ReasonTILength},      // 7 digits, too short
		{"123456789012", ReasonTILength}, // 12 digits, too long
		{"1234567a", ReasonTILength},     // non-digit
	}
	for _, tc := range cases {
		claim := s.newClaim(DocumentTypeTI, tc.number, s.daysAgo(30), nil)
		verdict := Validate(claim, s.now)
		assert.False(s.T(), verdict.Valid)
		assert.Equal(s.T(), tc.reason, verdict.Reason)
	}
}

func (s *ValidatorSuite) TestCEMissingExpiry() {
	// Scenario: CE with no expiry date.
	claim := s.newClaim(DocumentTypeCE, "AB123456", s.daysAgo(100), nil)

	verdict := Validate(claim, s.now)

	assert.False(s.T(), verdict.Valid)
	assert.Equal(s.T(), ReasonCEMissingExpiry, verdict.Reason)
}

func (s *ValidatorSuite) TestCENearExpiryWarning() {
	// Scenario: CE expiring 10 days after now.
	expiry := s.daysAhead(10)
	claim := s.newClaim(DocumentTypeCE, "AB123456", s.daysAgo(100), &expiry)

	verdict := Validate(claim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Contains(s.T(), verdict.Warnings, WarningCENearExpiry)
}

func (s *ValidatorSuite) TestCEFarFromExpiryNoWarning() {
	expiry := s.daysAhead(90)
	claim := s.newClaim(DocumentTypeCE, "AB123456", s.daysAgo(100), &expiry)

	verdict := Validate(claim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Empty(s.T(), verdict.Warnings)
}

func (s *ValidatorSuite) TestCEExpired() {
	// Expiry dates in the past are rejected at claim construction, so an
	// expired CE can only reach the validator when "now" moves past the
	// expiry between submission and validation.
	expiry := s.daysAhead(1)
	claim := s.newClaim(DocumentTypeCE, "AB123456", s.daysAgo(100), &expiry)

	verdict := Validate(claim, s.now.Add(48*time.Hour))

	assert.False(s.T(), verdict.Valid)
	assert.Equal(s.T(), ReasonCEExpired, verdict.Reason)
}

func (s *ValidatorSuite) TestVeryOldDocumentWarning() {
	claim := s.newClaim(DocumentTypeCC, "1234567", s.daysAgo(365*9), nil)

	// Re-validate the same claim 12 years later: CC age rule fires first, so
	// use a TI to observe the cross-type warning.
	tiClaim := s.newClaim(DocumentTypeTI, "12345678", s.daysAgo(365*21), nil)
	verdict := Validate(tiClaim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Contains(s.T(), verdict.Warnings, WarningTIHolderLikelyAdult)
	assert.Contains(s.T(), verdict.Warnings, WarningDocumentVeryOld)
	// Warning order is stable: type rule first, generic age rule last.
	assert.Equal(s.T(), []Warning{WarningTIHolderLikelyAdult, WarningDocumentVeryOld}, verdict.Warnings)

	// The nine-year-old CC stays below the cutoff.
	ccVerdict := Validate(claim, s.now)
	assert.True(s.T(), ccVerdict.Valid)
	assert.Empty(s.T(), ccVerdict.Warnings)
}

func (s *ValidatorSuite) TestWarningsNeverInvalidate() {
	// A claim accumulating every possible warning is still valid.
	tiClaim := s.newClaim(DocumentTypeTI, "12345678", s.daysAgo(365*21), nil)

	verdict := Validate(tiClaim, s.now)

	assert.True(s.T(), verdict.Valid)
	assert.Empty(s.T(), verdict.Reason)
	assert.Len(s.T(), verdict.Warnings, 2)
}

func (s *ValidatorSuite) TestValidateIsDeterministic() {
	expiry := s.daysAhead(10)
	claim := s.newClaim(DocumentTypeCE, "AB123456", s.daysAgo(100), &expiry)

	first := Validate(claim, s.now)
	second := Validate(claim, s.now)

	assert.Equal(s.T(), first, second)
}
