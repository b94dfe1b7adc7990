package model

import "strings"

// CompanyProfile describes the organization behind a visitor. It is either
// copied from the roster (matched) or synthesized by the fallback generator.
type CompanyProfile struct {
	Name          string `json:"name" yaml:"name"`
	EmployeeRange string `json:"employee_range" yaml:"employees"`
	RevenueRange  string `json:"revenue_range" yaml:"revenue"`
	Industry      string `json:"industry" yaml:"industry"`
	Headquarters  string `json:"headquarters" yaml:"headquarters"`
	Website       string `json:"website" yaml:"website"`
	Description   string `json:"description,omitempty" yaml:"description"`
}

// Domain returns the website host without a scheme, a leading "www.", or
// a path.
func (p CompanyProfile) Domain() string {
	d := strings.TrimPrefix(p.Website, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	host, _, _ := strings.Cut(d, "/")
	return host
}
