package model

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ValidationError reports the first constraint a lead submission violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fixed enumerations for the categorical fields.
var (
	AgeGroups         = []string{"18-25", "26-35", "36-50", "51+"}
	FamilyBackgrounds = []string{"Single", "Married", "Married with Kids", "Divorced", "Widowed"}
	PropertyTypes     = []string{"Apartment", "House", "Villa", "Penthouse", "Studio"}
	Locations         = []string{"Urban", "Suburban", "Rural"}
)

var phonePattern = regexp.MustCompile(`^\+91-[0-9]{10}$`)

// Validate checks every field constraint and returns a typed error naming the
// first offending field, or nil if the lead is acceptable for scoring.
func (l *LeadInput) Validate() *ValidationError {
	if !phonePattern.MatchString(l.PhoneNumber) {
		return &ValidationError{Field: "phone_number", Message: "must be in format +91-XXXXXXXXXX"}
	}
	if err := validateEmail(l.Email); err != nil {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if l.CreditScore < 300 || l.CreditScore > 850 {
		return &ValidationError{Field: "credit_score", Message: "must be between 300 and 850"}
	}
	if !contains(AgeGroups, l.AgeGroup) {
		return &ValidationError{Field: "age_group", Message: "must be one of " + strings.Join(AgeGroups, ", ")}
	}
	if !contains(FamilyBackgrounds, l.FamilyBackground) {
		return &ValidationError{Field: "family_background", Message: "must be one of " + strings.Join(FamilyBackgrounds, ", ")}
	}
	if l.Income < 100000 || l.Income > 1000000 {
		return &ValidationError{Field: "income", Message: "must be between 100000 and 1000000"}
	}
	if !contains(PropertyTypes, l.PropertyType) {
		return &ValidationError{Field: "property_type", Message: "must be one of " + strings.Join(PropertyTypes, ", ")}
	}
	if l.Budget < 0 {
		return &ValidationError{Field: "budget", Message: "must not be negative"}
	}
	if !contains(Locations, l.Location) {
		return &ValidationError{Field: "location", Message: "must be one of " + strings.Join(Locations, ", ")}
	}
	if l.PreviousInquiries < 0 {
		return &ValidationError{Field: "previous_inquiries", Message: "must not be negative"}
	}
	if l.TimeOnMarket < 1 {
		return &ValidationError{Field: "time_on_market", Message: "must be at least 1"}
	}
	if l.ResponseTimeMinutes < 1 {
		return &ValidationError{Field: "response_time_minutes", Message: "must be at least 1"}
	}
	if !l.Consent {
		return &ValidationError{Field: "consent", Message: "consent to data processing is required"}
	}
	return nil
}

func validateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return err
	}
	// Reject display-name forms like "Name <a@b.com>"; the field is a bare address.
	if parsed.Address != addr {
		return fmt.Errorf("not a bare address")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
