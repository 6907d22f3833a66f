package entities

// LeadFilter narrows a lead search. Zero values mean "no constraint".
type LeadFilter struct {
	Query     string // free text over name, email, title and company name
	Stage     string
	Industry  string
	MinScore  *int
	MaxScore  *int
	CompanyID *int
	Limit     int
	Offset    int
}

// LeadSearchHit is a lead joined with its company name for list views.
type LeadSearchHit struct {
	Lead
	CompanyName string `json:"company_name"`
}

// CompanyFilter narrows a company search.
type CompanyFilter struct {
	Query    string
	Industry string
	Size     string
	Limit    int
	Offset   int
}
