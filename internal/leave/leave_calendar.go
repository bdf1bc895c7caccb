package leave

import (
	"context"

	"go.uber.org/zap"
)

// MonthView lists approved leave intersecting the given month. Entries of one
// collective grant collapse into a single row carrying the headcount.
func (s *service) MonthView(ctx context.Context, month, year int) (CalendarResponse, error) {
	start, end, err := MonthWindow(month, year)
	if err != nil {
		return CalendarResponse{}, err
	}

	entries, err := s.repo.CalendarEntriesBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("calendar month view failed",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
		return CalendarResponse{}, err
	}

	return CalendarResponse{
		Month:   month,
		Year:    year,
		Entries: collapseEntries(entries),
	}, nil
}

func collapseEntries(entries []CalendarEntry) []CalendarEntryResponse {
	out := make([]CalendarEntryResponse, 0, len(entries))
	collective := make(map[string]int)

	for _, e := range entries {
		if e.IsCollective && e.CollectiveID != nil {
			cid := e.CollectiveID.String()
			if idx, ok := collective[cid]; ok {
				out[idx].Employees++
				continue
			}
			collective[cid] = len(out)
			out = append(out, CalendarEntryResponse{
				ID:           cid,
				LeaveType:    e.LeaveType,
				Title:        e.Title,
				StartDate:    e.StartDate.Format(dateLayout),
				EndDate:      e.EndDate.Format(dateLayout),
				IsCollective: true,
				CollectiveID: &cid,
				Employees:    1,
			})
			continue
		}

		out = append(out, CalendarEntryResponse{
			ID:           e.ID.String(),
			LeaveID:      e.LeaveID.String(),
			EmployeeID:   e.EmployeeID.String(),
			EmployeeName: e.EmployeeName,
			LeaveType:    e.LeaveType,
			Title:        e.Title,
			StartDate:    e.StartDate.Format(dateLayout),
			EndDate:      e.EndDate.Format(dateLayout),
		})
	}
	return out
}
