package events

import "time"

const (
	LeaveRequestedTopic = "hr.leave.requested.v1"
	LeaveRequestedType  = "leave_requested"
)

// LeaveRequestedEvent is emitted once a leave request is committed. It drives
// the overlap advisory.
type LeaveRequestedEvent struct {
	EventType    string    `json:"event_type"`
	LeaveID      string    `json:"leave_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Department   string    `json:"department,omitempty"`
	LeaveType    string    `json:"leave_type"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
