package leave

// Actor is the authenticated caller as seen by the engine.
type Actor struct {
	ID       string
	Role     string
	Elevated bool
}

type CreateLeaveRequest struct {
	LeaveType       string `json:"leave_type" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	Reason          string `json:"reason"`
	EmployeeID      string `json:"employee_id" binding:"omitempty,uuid"`
	ForAllEmployees bool   `json:"for_all_employees"`
}

type UpdateStatusRequest struct {
	Status       *string `json:"status"`
	AdminComment *string `json:"admin_comment"`
}

type ListFilter struct {
	Status     string
	LeaveType  string
	EmployeeID string
	Page       int
	PageSize   int
}

type LeaveResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Department   string   `json:"department,omitempty"`
	LeaveType    string   `json:"leave_type"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	ReturnDate   string   `json:"return_date"`
	WorkingDays  int      `json:"working_days"`
	Reason       string   `json:"reason"`
	Status       string   `json:"status"`
	AdminComment *string  `json:"admin_comment,omitempty"`
	ApprovedBy   *string  `json:"approved_by,omitempty"`
	ApprovedAt   *string  `json:"approved_at,omitempty"`
	CreatedBy    string   `json:"created_by"`
	CreatedAt    string   `json:"created_at"`
	IsCollective bool     `json:"is_collective"`
	CollectiveID *string  `json:"collective_id,omitempty"`
	Warnings     []string `json:"warnings"`
}

type CollectiveResponse struct {
	CollectiveID string `json:"collective_id"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	WorkingDays  int    `json:"working_days"`
	Employees    int    `json:"employees"`
}

// CreateResult holds either a single request or a collective grant.
type CreateResult struct {
	Leave      *LeaveResponse      `json:"leave,omitempty"`
	Collective *CollectiveResponse `json:"collective,omitempty"`
}

type BalanceItem struct {
	LeaveType string `json:"leave_type"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Taken     int    `json:"taken"`
	Remaining int    `json:"remaining"`
}

type BalanceResponse struct {
	EmployeeID   string        `json:"employee_id"`
	RulesVersion int           `json:"rules_version"`
	Balances     []BalanceItem `json:"balances"`
}

type StatsResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type CalendarEntryResponse struct {
	ID           string  `json:"id"`
	LeaveID      string  `json:"leave_id,omitempty"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	LeaveType    string  `json:"leave_type"`
	Title        string  `json:"title"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	IsCollective bool    `json:"is_collective"`
	CollectiveID *string `json:"collective_id,omitempty"`
	Employees    int     `json:"employees,omitempty"`
}

type CalendarResponse struct {
	Month   int                     `json:"month"`
	Year    int                     `json:"year"`
	Entries []CalendarEntryResponse `json:"entries"`
}
