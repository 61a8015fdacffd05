package model

import (
	"time"
)

// LeadInput is a lead submission as received on the wire.
type LeadInput struct {
	PhoneNumber         string `json:"phone_number"`
	Email               string `json:"email"`
	CreditScore         int    `json:"credit_score"`
	AgeGroup            string `json:"age_group"`
	FamilyBackground    string `json:"family_background"`
	Income              int    `json:"income"`
	PropertyType        string `json:"property_type"`
	Budget              int    `json:"budget"`
	Location            string `json:"location"`
	PreviousInquiries   int    `json:"previous_inquiries"`
	TimeOnMarket        int    `json:"time_on_market"`
	ResponseTimeMinutes int    `json:"response_time_minutes"`
	Comments            string `json:"comments"`
	Consent             bool   `json:"consent"`
}

// FeatureRecord is the subset of LeadInput the classifier sees. Contact
// identifiers, comments and consent never reach the model.
type FeatureRecord struct {
	CreditScore         int
	Income              int
	Budget              int
	PreviousInquiries   int
	TimeOnMarket        int
	ResponseTimeMinutes int
	AgeGroup            string
	FamilyBackground    string
	PropertyType        string
	Location            string
}

// Features derives the classifier input from a lead submission.
func (l *LeadInput) Features() FeatureRecord {
	return FeatureRecord{
		CreditScore:         l.CreditScore,
		Income:              l.Income,
		Budget:              l.Budget,
		PreviousInquiries:   l.PreviousInquiries,
		TimeOnMarket:        l.TimeOnMarket,
		ResponseTimeMinutes: l.ResponseTimeMinutes,
		AgeGroup:            l.AgeGroup,
		FamilyBackground:    l.FamilyBackground,
		PropertyType:        l.PropertyType,
		Location:            l.Location,
	}
}

// Numeric returns the named numeric feature value.
func (f FeatureRecord) Numeric(name string) (float64, bool) {
	switch name {
	case "credit_score":
		return float64(f.CreditScore), true
	case "income":
		return float64(f.Income), true
	case "budget":
		return float64(f.Budget), true
	case "previous_inquiries":
		return float64(f.PreviousInquiries), true
	case "time_on_market":
		return float64(f.TimeOnMarket), true
	case "response_time_minutes":
		return float64(f.ResponseTimeMinutes), true
	}
	return 0, false
}

// Categorical returns the named categorical feature value.
func (f FeatureRecord) Categorical(name string) (string, bool) {
	switch name {
	case "age_group":
		return f.AgeGroup, true
	case "family_background":
		return f.FamilyBackground, true
	case "property_type":
		return f.PropertyType, true
	case "location":
		return f.Location, true
	}
	return "", false
}

// ScoredLead is a lead after scoring. Immutable once appended to the ledger.
type ScoredLead struct {
	LeadID        int       `json:"lead_id"`
	Lead          LeadInput `json:"lead"`
	InitialScore  float64   `json:"initial_score"`
	RerankedScore float64   `json:"reranked_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stats holds aggregate figures derived from the ledger.
type Stats struct {
	TotalLeads       int     `json:"total_leads"`
	HighIntentLeads  int     `json:"high_intent_leads"`
	AvgInitialScore  float64 `json:"avg_initial_score"`
	AvgRerankedScore float64 `json:"avg_reranked_score"`
}

// HighIntentThreshold is the reranked score at or above which a lead counts
// as high-intent in aggregate statistics.
const HighIntentThreshold = 70.0
