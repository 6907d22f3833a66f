package entities

// DashboardStats is the payload behind the dashboard overview widget.
type DashboardStats struct {
	TotalLeads      int            `json:"total_leads"`
	TotalCompanies  int            `json:"total_companies"`
	AvgLeadScore    float64        `json:"avg_lead_score"`
	LeadsByStage    map[string]int `json:"leads_by_stage"`
	MessagesSent7d  int            `json:"messages_sent_7d"`
	Replies7d       int            `json:"replies_7d"`
	PendingDrafts   int            `json:"pending_drafts"`
	QualifiedLeads  int            `json:"qualified_leads"`
}

// AdminStats is the platform-wide view for the admin panel.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	ActiveUsers    int `json:"active_users"`
	AdminCount     int `json:"admin_count"`
	TotalLeads     int `json:"total_leads"`
	TotalCompanies int `json:"total_companies"`
	TotalMessages  int `json:"total_messages"`
	EvalRuns       int `json:"eval_runs"`
}
