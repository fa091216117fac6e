// Package verification computes reviewer-facing confidence summaries for
// agency claim requests from independent verification signals.
package verification

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strings"

	"agencydesk/internal/models"
)

// CheckResult labels a single verification check for a reviewer.
type CheckResult string

const (
	CheckPass   CheckResult = "PASS"
	CheckReview CheckResult = "REVIEW"
	CheckFail   CheckResult = "FAIL"
)

// Status classifies a claim's aggregate verification score.
type Status string

const (
	StatusFullyVerified     Status = "Fully Verified"
	StatusPartiallyVerified Status = "Partially Verified"
	StatusNeedsReview       Status = "Needs Review"
)

const totalChecks = 3

// Check is one verification signal with a human-readable description.
type Check struct {
	Name        string      `json:"name"`
	Result      CheckResult `json:"result"`
	Description string      `json:"description"`
}

// Summary is the full verification breakdown shown on the claim detail view.
type Summary struct {
	Checks          []Check                   `json:"checks"`
	PassedChecks    int                       `json:"passed_checks"`
	TotalChecks     int                       `json:"total_checks"`
	ScorePercentage int                       `json:"score_percentage"`
	ScoreLabel      string                    `json:"score_label"`
	Status          Status                    `json:"status"`
	Method          models.VerificationMethod `json:"verification_method"`
}

// Score computes the percentage and status for the three boolean signals.
// The denominator is always three; there is no partial applicability.
func Score(emailDomainVerified, phoneProvided, positionProvided bool) (passed, pct int, status Status) {
	for _, ok := range []bool{emailDomainVerified, phoneProvided, positionProvided} {
		if ok {
			passed++
		}
	}
	pct = int(math.Round(float64(passed) / totalChecks * 100))
	switch {
	case pct == 100:
		status = StatusFullyVerified
	case pct >= 66:
		status = StatusPartiallyVerified
	default:
		status = StatusNeedsReview
	}
	return passed, pct, status
}

// Summarize builds the reviewer-facing breakdown for a claim.
func Summarize(claim *models.ClaimRequest) Summary {
	phoneProvided := claim.PhoneNumber != nil && strings.TrimSpace(*claim.PhoneNumber) != ""
	positionProvided := claim.PositionTitle != nil && strings.TrimSpace(*claim.PositionTitle) != ""

	checks := []Check{
		emailCheck(claim.EmailDomainVerified),
		phoneCheck(phoneProvided),
		positionCheck(positionProvided),
	}

	passed, pct, status := Score(claim.EmailDomainVerified, phoneProvided, positionProvided)
	return Summary{
		Checks:          checks,
		PassedChecks:    passed,
		TotalChecks:     totalChecks,
		ScorePercentage: pct,
		ScoreLabel:      fmt.Sprintf("%d/%d (%d%%)", passed, totalChecks, pct),
		Status:          status,
		Method:          claim.VerificationMethod,
	}
}

// SummarizeWithAgency is the domain-aware variant: the email check is
// tri-state, comparing the claim's business email domain against the agency
// website's domain. Domains that cannot be parsed are rendered as the literal
// "invalid" rather than surfaced as errors.
func SummarizeWithAgency(claim *models.ClaimRequest, agency *models.Agency) Summary {
	summary := Summarize(claim)

	emailDomain := extractEmailDomain(claim.BusinessEmail)
	siteDomain := extractWebsiteDomain(agency.Website)

	var result CheckResult
	var desc string
	switch {
	case emailDomain != "invalid" && siteDomain != "invalid" && emailDomain == siteDomain:
		result = CheckPass
		desc = fmt.Sprintf("Business email domain %q matches agency website", emailDomain)
	case emailDomain == "invalid" || siteDomain == "invalid":
		result = CheckReview
		desc = fmt.Sprintf("Could not compare domains (email: %s, website: %s)", emailDomain, siteDomain)
	default:
		result = CheckFail
		desc = fmt.Sprintf("Business email domain %q does not match agency website %q", emailDomain, siteDomain)
	}

	summary.Checks[0] = Check{
		Name:        "email_domain",
		Result:      result,
		Description: desc,
	}
	return summary
}

// EmailDomainMatches reports whether the email address's domain equals the
// website's registrable host. Unparseable values never match.
func EmailDomainMatches(email, website string) bool {
	emailDomain := extractEmailDomain(email)
	siteDomain := extractWebsiteDomain(website)
	return emailDomain != "invalid" && siteDomain != "invalid" && emailDomain == siteDomain
}

func emailCheck(verified bool) Check {
	if verified {
		return Check{
			Name:        "email_domain",
			Result:      CheckPass,
			Description: "Business email domain matches the agency's website",
		}
	}
	return Check{
		Name:        "email_domain",
		Result:      CheckFail,
		Description: "Business email domain could not be verified",
	}
}

func phoneCheck(provided bool) Check {
	if provided {
		return Check{
			Name:        "phone",
			Result:      CheckPass,
			Description: "A contact phone number was provided",
		}
	}
	return Check{
		Name:        "phone",
		Result:      CheckFail,
		Description: "No contact phone number was provided",
	}
}

func positionCheck(provided bool) Check {
	if provided {
		return Check{
			Name:        "position",
			Result:      CheckPass,
			Description: "A position title at the agency was provided",
		}
	}
	return Check{
		Name:        "position",
		Result:      CheckFail,
		Description: "No position title was provided",
	}
}

// extractEmailDomain returns the lowercased domain of an email address,
// or "invalid" when the address cannot be parsed.
func extractEmailDomain(email string) string {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "invalid"
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return "invalid"
	}
	return strings.ToLower(addr.Address[at+1:])
}

// extractWebsiteDomain returns the lowercased registrable host of a website
// URL, stripping a leading "www.", or "invalid" when it cannot be parsed.
func extractWebsiteDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return "invalid"
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return "invalid"
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
