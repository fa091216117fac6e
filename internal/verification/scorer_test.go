package verification

import (
	"fmt"
	"testing"

	"agencydesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestScore_AllTriples(t *testing.T) {
	tests := []struct {
		email, phone, position bool
		wantPassed             int
		wantPct                int
		wantStatus             Status
	}{
		{false, false, false, 0, 0, StatusNeedsReview},
		{true, false, false, 1, 33, StatusNeedsReview},
		{false, true, false, 1, 33, StatusNeedsReview},
		{false, false, true, 1, 33, StatusNeedsReview},
		{true, true, false, 2, 67, StatusPartiallyVerified},
		{true, false, true, 2, 67, StatusPartiallyVerified},
		{false, true, true, 2, 67, StatusPartiallyVerified},
		{true, true, true, 3, 100, StatusFullyVerified},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%v_%v_%v", tt.email, tt.phone, tt.position)
		t.Run(name, func(t *testing.T) {
			passed, pct, status := Score(tt.email, tt.phone, tt.position)
			assert.Equal(t, tt.wantPassed, passed)
			assert.Equal(t, tt.wantPct, pct)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestSummarize_Labels(t *testing.T) {
	claim := &models.ClaimRequest{
		BusinessEmail:       "jane@elitestaffing.com",
		PhoneNumber:         strptr("+1 555 0100"),
		PositionTitle:       nil,
		EmailDomainVerified: true,
		VerificationMethod:  models.VerificationMethodEmail,
	}

	s := Summarize(claim)
	assert.Equal(t, 2, s.PassedChecks)
	assert.Equal(t, 3, s.TotalChecks)
	assert.Equal(t, 67, s.ScorePercentage)
	assert.Equal(t, "2/3 (67%)", s.ScoreLabel)
	assert.Equal(t, StatusPartiallyVerified, s.Status)
	assert.Equal(t, models.VerificationMethodEmail, s.Method)
	assert.Len(t, s.Checks, 3)
	assert.Equal(t, CheckPass, s.Checks[0].Result)
	assert.Equal(t, CheckPass, s.Checks[1].Result)
	assert.Equal(t, CheckFail, s.Checks[2].Result)
}

func TestSummarize_WhitespaceOnlyFieldsNotProvided(t *testing.T) {
	claim := &models.ClaimRequest{
		BusinessEmail: "jane@elitestaffing.com",
		PhoneNumber:   strptr("   "),
		PositionTitle: strptr(""),
	}

	s := Summarize(claim)
	assert.Equal(t, 0, s.PassedChecks)
	assert.Equal(t, StatusNeedsReview, s.Status)
}

func TestSummarizeWithAgency_DomainMatch(t *testing.T) {
	claim := &models.ClaimRequest{
		BusinessEmail:       "jane@elitestaffing.com",
		EmailDomainVerified: true,
	}
	agency := &models.Agency{Website: "https://www.elitestaffing.com/about"}

	s := SummarizeWithAgency(claim, agency)
	assert.Equal(t, CheckPass, s.Checks[0].Result)
	assert.Contains(t, s.Checks[0].Description, "elitestaffing.com")
}

func TestSummarizeWithAgency_DomainMismatch(t *testing.T) {
	claim := &models.ClaimRequest{BusinessEmail: "jane@gmail.com"}
	agency := &models.Agency{Website: "elitestaffing.com"}

	s := SummarizeWithAgency(claim, agency)
	assert.Equal(t, CheckFail, s.Checks[0].Result)
}

func TestSummarizeWithAgency_UnparseableDomainsRenderInvalid(t *testing.T) {
	claim := &models.ClaimRequest{BusinessEmail: "not-an-email"}
	agency := &models.Agency{Website: ""}

	s := SummarizeWithAgency(claim, agency)
	assert.Equal(t, CheckReview, s.Checks[0].Result)
	assert.Contains(t, s.Checks[0].Description, "invalid")
}

func TestExtractEmailDomain(t *testing.T) {
	assert.Equal(t, "elitestaffing.com", extractEmailDomain("Jane <jane@ElitesTaffing.com>"))
	assert.Equal(t, "invalid", extractEmailDomain("nope"))
	assert.Equal(t, "invalid", extractEmailDomain(""))
}

func TestExtractWebsiteDomain(t *testing.T) {
	assert.Equal(t, "elitestaffing.com", extractWebsiteDomain("https://www.elitestaffing.com"))
	assert.Equal(t, "elitestaffing.com", extractWebsiteDomain("elitestaffing.com/jobs"))
	assert.Equal(t, "invalid", extractWebsiteDomain(""))
	assert.Equal(t, "invalid", extractWebsiteDomain("://bad"))
}
