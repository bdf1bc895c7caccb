package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/bootstrap"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/events"
	leaveerrors "github.com/premidisfinal/premidis-fin/internal/leave/errors"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/messaging/kafka"
	"github.com/premidisfinal/premidis-fin/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

// AdvisoryDispatcher runs the overlap advisory off the request path. It is
// used when no outbox is configured.
type AdvisoryDispatcher interface {
	Dispatch(ctx context.Context, evt events.LeaveRequestedEvent)
}

type Dependencies struct {
	Employees employee.Repository
	Notifier  Notifier
	// Outbox, when set, carries leave_requested events to Kafka inside the
	// create transaction. Advisory is used otherwise.
	Outbox   kafka.OutboxRepository
	Advisory AdvisoryDispatcher
	Audit    bootstrap.AuditLogger
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, rules leaverule.Rules, req CreateLeaveRequest) (CreateResult, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateStatusRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	GetBalance(ctx context.Context, rules leaverule.Rules, employeeID string) (BalanceResponse, error)
	GetStats(ctx context.Context, actor Actor) (StatsResponse, error)
	MonthView(ctx context.Context, month, year int) (CalendarResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	notifier  Notifier
	outbox    kafka.OutboxRepository
	advisory  AdvisoryDispatcher
	audit     bootstrap.AuditLogger
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: deps.Employees,
		notifier:  deps.Notifier,
		outbox:    deps.Outbox,
		advisory:  deps.Advisory,
		audit:     deps.Audit,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, rules leaverule.Rules, req CreateLeaveRequest) (CreateResult, error) {
	md := contextutil.ExtractMetadata(ctx)
	s.logger.Debug("create leave requested", append(md.Fields(),
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("for_all_employees", req.ForAllEmployees),
	)...)

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return CreateResult{}, err
	}
	if !rules.Accepts(req.LeaveType) {
		return CreateResult{}, leaveerrors.ErrInvalidLeaveType
	}
	actorID, err := uuid.Parse(actor.ID)
	if err != nil {
		return CreateResult{}, leaveerrors.ErrInvalidEmployeeID
	}

	if req.ForAllEmployees && actor.Elevated {
		return s.createCollective(ctx, actorID, req, start, end)
	}

	targetID := actor.ID
	if actor.Elevated && req.EmployeeID != "" {
		targetID = req.EmployeeID
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return CreateResult{}, leaveerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return CreateResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	empl, err := etx.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreateResult{}, leaveerrors.ErrEmployeeNotFound
		}
		return CreateResult{}, err
	}
	if !empl.IsActive {
		s.logger.Warn("create leave for inactive employee rejected", zap.String("employee_id", targetID))
		return CreateResult{}, leaveerrors.ErrEmployeeNotFound
	}

	workingDays := WorkingDays(start, end)
	warnings := make([]string, 0, 2)

	key := leaverule.BalanceKey(req.LeaveType)
	remaining := empl.Balance()[key] - empl.Taken()[key]
	if !leaverule.BalanceExempt(req.LeaveType) && workingDays > remaining {
		warnings = append(warnings, WarningInsufficientBalance)
	}

	overlap, err := qtx.HasOverlap(ctx, targetID, start, end)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return CreateResult{}, err
	}
	if overlap {
		warnings = append(warnings, WarningOverlappingRequest)
	}

	l := &Leave{
		ID:           uuid.New(),
		EmployeeID:   empl.ID,
		EmployeeName: empl.FullName(),
		Department:   empl.Department,
		LeaveType:    req.LeaveType,
		StartDate:    start,
		EndDate:      end,
		WorkingDays:  workingDays,
		Reason:       req.Reason,
		Status:       StatusPending,
		CreatedBy:    actorID,
		Warnings:     warnings,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return CreateResult{}, err
	}

	evt := requestedEvent(*l, md.RequestID, s.now())
	if s.outbox != nil {
		outboxEvent, err := kafka.NewOutboxEvent(md.RequestID, "leave", l.ID.String(), events.LeaveRequestedType, events.LeaveRequestedTopic, evt)
		if err != nil {
			return CreateResult{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			s.logger.Error("create leave outbox failed", zap.Error(err))
			return CreateResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return CreateResult{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", targetID),
		zap.Int("working_days", workingDays),
		zap.Strings("warnings", warnings),
	)

	if s.outbox == nil && s.advisory != nil {
		s.advisory.Dispatch(ctx, evt)
	}

	resp := mapToResponse(*l)
	return CreateResult{Leave: &resp}, nil
}

// createCollective grants the same approved leave to every active employee.
// Either all records are written or none.
func (s *service) createCollective(ctx context.Context, actorID uuid.UUID, req CreateLeaveRequest, start, end time.Time) (CreateResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("collective leave begin tx failed", zap.Error(err))
		return CreateResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	active, err := etx.FindActive(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	if len(active) == 0 {
		return CreateResult{}, leaveerrors.ErrNoActiveEmployees
	}

	collectiveID := uuid.New()
	now := s.now().UTC()
	workingDays := WorkingDays(start, end)
	key := leaverule.BalanceKey(req.LeaveType)

	leaves := make([]Leave, 0, len(active))
	entries := make([]CalendarEntry, 0, len(active))
	for _, e := range active {
		l := Leave{
			ID:           uuid.New(),
			EmployeeID:   e.ID,
			EmployeeName: e.FullName(),
			Department:   e.Department,
			LeaveType:    req.LeaveType,
			StartDate:    start,
			EndDate:      end,
			WorkingDays:  workingDays,
			Reason:       req.Reason,
			Status:       StatusApproved,
			ApprovedBy:   &actorID,
			ApprovedAt:   &now,
			CreatedBy:    actorID,
			IsCollective: true,
			CollectiveID: &collectiveID,
			Warnings:     []string{},
		}
		leaves = append(leaves, l)
		entries = append(entries, newCalendarEntry(l))
	}

	if err := qtx.CreateBatch(ctx, leaves); err != nil {
		s.logger.Error("collective leave persist failed", zap.Error(err))
		return CreateResult{}, err
	}
	for _, l := range leaves {
		if err := etx.AdjustLeaveTaken(ctx, l.EmployeeID.String(), key, workingDays); err != nil {
			s.logger.Error("collective leave balance update failed",
				zap.String("employee_id", l.EmployeeID.String()),
				zap.Error(err),
			)
			return CreateResult{}, err
		}
	}
	if err := qtx.CreateCalendarEntries(ctx, entries); err != nil {
		return CreateResult{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("collective leave commit failed", zap.Error(err))
		return CreateResult{}, err
	}

	s.logger.Info("collective leave granted",
		zap.String("collective_id", collectiveID.String()),
		zap.Int("employees", len(leaves)),
		zap.Int("working_days", workingDays),
	)
	s.auditLog(ctx, "LEAVE_COLLECTIVE_GRANTED", "collective leave granted", map[string]any{
		"collective_id": collectiveID.String(),
		"leave_type":    req.LeaveType,
		"employees":     len(leaves),
		"actor_id":      actorID.String(),
	})

	return CreateResult{Collective: &CollectiveResponse{
		CollectiveID: collectiveID.String(),
		LeaveType:    req.LeaveType,
		StartDate:    start.Format(dateLayout),
		EndDate:      end.Format(dateLayout),
		WorkingDays:  workingDays,
		Employees:    len(leaves),
	}}, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]LeaveResponse, int64, error) {
	if !actor.Elevated {
		filter.EmployeeID = actor.ID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	leaves, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !actor.Elevated && l.EmployeeID.String() != actor.ID {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	return mapToResponse(*l), nil
}

// UpdateStatus moves a request between statuses. Entering approved charges
// the working days to the employee and places the leave on the calendar;
// leaving approved undoes both. Re-applying the current status changes
// nothing.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateStatusRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave status requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	if req.Status == nil {
		if req.AdminComment == nil {
			return LeaveResponse{}, leaveerrors.ErrNothingToUpdate
		}
		return s.comment(ctx, id, *req.AdminComment)
	}
	status := *req.Status
	if !ValidStatus(status) {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}
	actorID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	etx := s.employees.WithTx(tx)

	tr, err := qtx.TransitionStatus(ctx, id, status, req.AdminComment, actorID, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("update leave status transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	l := tr.Leave
	switch {
	case tr.PreviousStatus != StatusApproved && status == StatusApproved:
		if err := etx.AdjustLeaveTaken(ctx, l.EmployeeID.String(), leaverule.BalanceKey(l.LeaveType), l.WorkingDays); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
			}
			s.logger.Error("approve leave balance update failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if err := qtx.CreateCalendarEntries(ctx, []CalendarEntry{newCalendarEntry(l)}); err != nil {
			return LeaveResponse{}, err
		}
	case tr.PreviousStatus == StatusApproved && status != StatusApproved:
		if err := s.restoreDays(ctx, etx, l); err != nil {
			s.logger.Error("revoke leave balance update failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if err := qtx.DeleteCalendarEntries(ctx, id); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave status commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("update leave status success",
		zap.String("leave_id", id),
		zap.String("from_status", tr.PreviousStatus),
		zap.String("to_status", status),
	)
	s.auditLog(ctx, "LEAVE_STATUS_CHANGED", "leave status changed", map[string]any{
		"leave_id":    id,
		"employee_id": l.EmployeeID.String(),
		"from":        tr.PreviousStatus,
		"to":          status,
		"actor_id":    actor.ID,
	})
	if tr.PreviousStatus != status {
		s.notifyDecision(ctx, l)
	}

	return mapToResponse(l), nil
}

func (s *service) comment(ctx context.Context, id, comment string) (LeaveResponse, error) {
	l, err := s.repo.UpdateComment(ctx, id, comment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Delete removes a request. Non-elevated callers may only withdraw their own
// pending requests. An approved request gives its days back.
func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}

	if !actor.Elevated && (l.EmployeeID.String() != actor.ID || l.Status != StatusPending) {
		s.logger.Warn("delete leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID),
			zap.String("status", l.Status),
		)
		return leaveerrors.ErrForbidden
	}

	if l.Status == StatusApproved {
		if err := s.restoreDays(ctx, s.employees.WithTx(tx), *l); err != nil {
			s.logger.Error("delete leave balance restore failed", zap.String("leave_id", id), zap.Error(err))
			return err
		}
	}
	if err := qtx.DeleteCalendarEntries(ctx, id); err != nil {
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("delete leave success", zap.String("leave_id", id), zap.String("status", l.Status))
	s.auditLog(ctx, "LEAVE_DELETED", "leave deleted", map[string]any{
		"leave_id":    id,
		"employee_id": l.EmployeeID.String(),
		"status":      l.Status,
		"actor_id":    actor.ID,
	})
	return nil
}

// restoreDays gives an approved leave's working days back. An employee who
// has since been removed has nothing left to restore.
func (s *service) restoreDays(ctx context.Context, etx employee.Repository, l Leave) error {
	err := etx.AdjustLeaveTaken(ctx, l.EmployeeID.String(), leaverule.BalanceKey(l.LeaveType), -l.WorkingDays)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("leave owner no longer exists, nothing to restore",
			zap.String("leave_id", l.ID.String()),
			zap.String("employee_id", l.EmployeeID.String()),
		)
		return nil
	}
	return err
}

// GetBalance reports total, taken and remaining days for every configured
// leave type. Totals are the employee's snapshot; a type added to the rules
// after the snapshot reports a total of zero.
func (s *service) GetBalance(ctx context.Context, rules leaverule.Rules, employeeID string) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	empl, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		return BalanceResponse{}, err
	}

	return balanceOf(*empl, rules), nil
}

func balanceOf(e employee.Employee, rules leaverule.Rules) BalanceResponse {
	balance, taken := e.Balance(), e.Taken()

	seen := make(map[string]struct{}, len(rules.Days)+len(balance))
	types := make([]string, 0, len(rules.Days)+len(balance))
	for _, set := range []leaverule.LeaveDays{rules.Days, balance, taken} {
		for k := range set {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				types = append(types, k)
			}
		}
	}
	sort.Strings(types)

	items := make([]BalanceItem, 0, len(types))
	for _, t := range types {
		items = append(items, BalanceItem{
			LeaveType: t,
			Label:     leaverule.Label(t),
			Total:     balance[t],
			Taken:     taken[t],
			Remaining: balance[t] - taken[t],
		})
	}

	return BalanceResponse{
		EmployeeID:   e.ID.String(),
		RulesVersion: e.RulesVersion,
		Balances:     items,
	}
}

func (s *service) GetStats(ctx context.Context, actor Actor) (StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx, actor.ID)
	if err != nil {
		return StatsResponse{}, err
	}
	return StatsResponse{
		Pending:  counts[StatusPending],
		Approved: counts[StatusApproved],
		Rejected: counts[StatusRejected],
	}, nil
}

func (s *service) notifyDecision(ctx context.Context, l Leave) {
	if s.notifier == nil {
		return
	}

	title := "Leave request " + l.Status
	message := fmt.Sprintf("Your %s request from %s to %s is now %s.",
		leaverule.Label(l.LeaveType),
		l.StartDate.Format(dateLayout),
		l.EndDate.Format(dateLayout),
		l.Status,
	)
	if l.AdminComment != nil && *l.AdminComment != "" {
		message += " Comment: " + *l.AdminComment
	}

	if err := s.notifier.Notify(ctx, l.EmployeeID.String(), title, message); err != nil {
		s.logger.Warn("leave decision notification failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) auditLog(ctx context.Context, action, message string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Log(ctx, bootstrap.AuditLog{Action: action, Message: message, Meta: meta})
}

func requestedEvent(l Leave, requestID string, at time.Time) events.LeaveRequestedEvent {
	return events.LeaveRequestedEvent{
		EventType:    events.LeaveRequestedType,
		LeaveID:      l.ID.String(),
		EmployeeID:   l.EmployeeID.String(),
		EmployeeName: l.EmployeeName,
		Department:   l.Department,
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate.Format(dateLayout),
		EndDate:      l.EndDate.Format(dateLayout),
		RequestID:    requestID,
		OccurredAt:   at.UTC(),
	}
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:           l.ID.String(),
		EmployeeID:   l.EmployeeID.String(),
		EmployeeName: l.EmployeeName,
		Department:   l.Department,
		LeaveType:    l.LeaveType,
		StartDate:    l.StartDate.Format(dateLayout),
		EndDate:      l.EndDate.Format(dateLayout),
		ReturnDate:   ReturnDate(l.EndDate).Format(dateLayout),
		WorkingDays:  l.WorkingDays,
		Reason:       l.Reason,
		Status:       l.Status,
		AdminComment: l.AdminComment,
		CreatedBy:    l.CreatedBy.String(),
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		IsCollective: l.IsCollective,
		Warnings:     []string(l.Warnings),
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if l.CollectiveID != nil {
		v := l.CollectiveID.String()
		resp.CollectiveID = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
