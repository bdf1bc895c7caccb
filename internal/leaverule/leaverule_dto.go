package leaverule

type UpdateRulesRequest struct {
	Rules LeaveDays `json:"rules" binding:"required"`
}

type RulesResponse struct {
	Type      string    `json:"type"`
	Rules     LeaveDays `json:"rules"`
	Version   int       `json:"version"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt string    `json:"updated_at,omitempty"`
}

type LeaveTypeResponse struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	Days          int    `json:"days"`
	BalanceExempt bool   `json:"balance_exempt"`
}

type PublicRulesResponse struct {
	Rules      LeaveDays           `json:"rules"`
	Version    int                 `json:"version"`
	LeaveTypes []LeaveTypeResponse `json:"leave_types"`
}
