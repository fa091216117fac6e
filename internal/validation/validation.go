// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(`!@#$%^&*()_+-=[]{};':"\|,.<>/?`, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}

	// RFC 5322 allows domains without a dot; public addresses need one.
	at := strings.LastIndex(email, "@")
	if at < 0 || !strings.Contains(email[at+1:], ".") || strings.HasSuffix(email, ".") {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateWebsite checks that a website URL is http(s) with a hostname.
// A bare domain like "example.com" is accepted and treated as https.
func ValidateWebsite(website string) error {
	if len(website) > 2048 {
		return fmt.Errorf("website must not exceed 2048 characters")
	}

	raw := website
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid website URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("website must use http or https")
	}
	if u.Hostname() == "" || !strings.Contains(u.Hostname(), ".") {
		return fmt.Errorf("website must include a domain name")
	}

	return nil
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,18}[0-9]$`)

// ValidatePhone checks a loosely formatted international phone number.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}
