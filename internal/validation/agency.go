package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var agencySlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,48}$`)

var reservedAgencySlugs = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"agencies": {},
	"agency":   {},
	"claims":   {},
	"users":    {},
	"messages": {},
	"import":   {},
	"events":   {},
	"health":   {},
	"metrics":  {},
	"ws":       {},
	"login":    {},
	"signup":   {},
	"settings": {},
	"new":      {},
}

// ValidateAgencySlug validates agency slug format and reserved names.
func ValidateAgencySlug(slug string) error {
	if !agencySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-48 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedAgencySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}

// ValidateAgencyName checks display name length after trimming.
func ValidateAgencyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return fmt.Errorf("name must be at least 2 characters long")
	}
	if len(trimmed) > 120 {
		return fmt.Errorf("name must not exceed 120 characters")
	}
	return nil
}
