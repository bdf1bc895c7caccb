package overlap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/events"
	"github.com/premidisfinal/premidis-fin/internal/leave"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/mailer"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// LeaveFinder is the read side of the leave store the advisor needs.
type LeaveFinder interface {
	FindApprovedOverlapping(ctx context.Context, excludeEmployeeID string, start, end time.Time) ([]leave.Leave, error)
}

type AdminDirectory interface {
	FindActiveByRoles(ctx context.Context, roles []string) ([]employee.Employee, error)
}

// Advisor tells administrators when a new request collides with leave that
// is already approved for colleagues. It never fails: every error is logged
// and dropped.
type Advisor struct {
	leaves     LeaveFinder
	admins     AdminDirectory
	notifier   leave.Notifier
	mailer     mailer.Mailer
	adminEmail string
	logger     *zap.Logger
}

func NewAdvisor(
	leaves LeaveFinder,
	admins AdminDirectory,
	notifier leave.Notifier,
	m mailer.Mailer,
	adminEmail string,
	logger ...*zap.Logger,
) *Advisor {
	l := zap.L().Named("overlap.advisor")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overlap.advisor")
	}
	return &Advisor{
		leaves:     leaves,
		admins:     admins,
		notifier:   notifier,
		mailer:     m,
		adminEmail: strings.TrimSpace(adminEmail),
		logger:     l,
	}
}

// Check returns the number of overlapping approved leaves it found.
func (a *Advisor) Check(ctx context.Context, evt events.LeaveRequestedEvent) int {
	log := a.logger.With(
		zap.String("leave_id", evt.LeaveID),
		zap.String("employee_id", evt.EmployeeID),
		zap.String("request_id", evt.RequestID),
	)

	start, err := time.Parse(dateLayout, evt.StartDate)
	if err != nil {
		log.Warn("overlap check skipped, bad start date", zap.String("start_date", evt.StartDate))
		return 0
	}
	end, err := time.Parse(dateLayout, evt.EndDate)
	if err != nil {
		log.Warn("overlap check skipped, bad end date", zap.String("end_date", evt.EndDate))
		return 0
	}

	overlapping, err := a.leaves.FindApprovedOverlapping(ctx, evt.EmployeeID, start, end)
	if err != nil {
		log.Error("overlap lookup failed", zap.Error(err))
		return 0
	}
	if len(overlapping) == 0 {
		log.Debug("no overlapping approved leave")
		return 0
	}

	title := "Overlapping leave request"
	message := describe(evt, overlapping)

	admins, err := a.admins.FindActiveByRoles(ctx, []string{
		domain.RoleAdmin.String(),
		domain.RoleSuperAdmin.String(),
	})
	if err != nil {
		log.Error("admin lookup failed", zap.Error(err))
	}
	if a.notifier != nil {
		for _, admin := range admins {
			if err := a.notifier.Notify(ctx, admin.ID.String(), title, message); err != nil {
				log.Warn("overlap notification failed", zap.String("admin_id", admin.ID.String()), zap.Error(err))
			}
		}
	}

	if a.mailer != nil && a.adminEmail != "" {
		subject := fmt.Sprintf("[HR] %s overlaps %d approved leave(s)", evt.EmployeeName, len(overlapping))
		if err := a.mailer.Send(ctx, a.adminEmail, subject, message); err != nil {
			log.Warn("overlap email failed", zap.Error(err))
		}
	}

	log.Info("overlap advisory sent",
		zap.Int("overlapping", len(overlapping)),
		zap.Int("admins_notified", len(admins)),
	)
	return len(overlapping)
}

func describe(evt events.LeaveRequestedEvent, overlapping []leave.Leave) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s requested %s from %s to %s. Already approved in that period:\n",
		evt.EmployeeName, leaverule.Label(evt.LeaveType), evt.StartDate, evt.EndDate)
	for _, l := range overlapping {
		fmt.Fprintf(&b, "- %s (%s), %s to %s\n",
			l.EmployeeName,
			leaverule.Label(l.LeaveType),
			l.StartDate.Format(dateLayout),
			l.EndDate.Format(dateLayout),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
