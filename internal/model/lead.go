package model

import "time"

// RevenueBand is an estimated deal-size range in USD.
type RevenueBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SeniorityCount is the number of contacts at one seniority level.
type SeniorityCount struct {
	Seniority Seniority `json:"seniority"`
	Count     int       `json:"count"`
}

// ContactStats summarizes a contact list.
type ContactStats struct {
	Total         int              `json:"total"`
	Verified      int              `json:"verified"`
	CLevel        int              `json:"c_level"`
	AvgConfidence int              `json:"avg_confidence"`
	BySeniority   []SeniorityCount `json:"by_seniority"`
}

// ROIEstimate projects the return on pursuing a lead.
type ROIEstimate struct {
	// ConversionRate is a fraction in [0, 1].
	ConversionRate float64 `json:"conversion_rate"`
	ExpectedValue  int     `json:"expected_value"`
	CostPerLead    int     `json:"cost_per_lead"`
	// Percent is ExpectedValue / CostPerLead * 100, rounded.
	Percent int `json:"roi_percent"`
}

// IndustryScore is one bar of the industry comparison.
type IndustryScore struct {
	Industry string `json:"industry"`
	Score    int    `json:"score"`
	Current  bool   `json:"current,omitempty"`
}

// LeadScore is the sales-priority summary of a resolved lead.
type LeadScore struct {
	Label            string          `json:"label"`
	Priority         string          `json:"priority"`
	Score            int             `json:"score"`
	RevenuePotential RevenueBand     `json:"revenue_potential"`
	ROI              ROIEstimate     `json:"roi"`
	Industries       []IndustryScore `json:"industries"`
	Stats            ContactStats    `json:"stats"`
}

// LeadResult is the output of resolving one (organization, ip) pair.
type LeadResult struct {
	Organization string            `json:"organization"`
	IP           string            `json:"ip"`
	Matched      bool              `json:"matched"`
	Key          string            `json:"key,omitempty"`
	Category     string            `json:"category"`
	Company      CompanyProfile    `json:"company"`
	Contacts     []EnrichedContact `json:"contacts"`
	Score        LeadScore         `json:"score"`
}

// Visitor is the geolocation record for a website visitor IP.
type Visitor struct {
	IP           string  `json:"ip"`
	Organization string  `json:"organization"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	Country      string  `json:"country"`
	ISP          string  `json:"isp"`
	Timezone     string  `json:"timezone,omitempty"`
	Latitude     float64 `json:"lat,omitempty"`
	Longitude    float64 `json:"lon,omitempty"`
}

// HasLocation reports whether the visitor carries coordinates.
func (v Visitor) HasLocation() bool {
	return v.Latitude != 0 || v.Longitude != 0
}

// Location formats the visitor's city and country for display.
func (v Visitor) Location() string {
	switch {
	case v.City != "" && v.Country != "":
		return v.City + ", " + v.Country
	case v.City != "":
		return v.City
	default:
		return v.Country
	}
}

// Lead is a processed visitor kept in the history store.
type Lead struct {
	ID        string     `json:"id"`
	IP        string     `json:"ip"`
	Visitor   Visitor    `json:"visitor"`
	Result    LeadResult `json:"result"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
