package leaverule

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	leaveruleerrors "github.com/premidisfinal/premidis-fin/internal/leaverule/errors"
	"github.com/premidisfinal/premidis-fin/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	RulesCacheKey = "leave_rules:" + DefaultType
	rulesCacheTTL = 10 * time.Minute
)

var ruleKeyPattern = regexp.MustCompile(`^[a-z][a-z_]*$`)

// Source is the read side of the rule table, consumed by the packages that
// snapshot rules into a write.
type Source interface {
	GetRules(ctx context.Context) (Rules, error)
}

type Service interface {
	GetRules(ctx context.Context) (Rules, error)
	GetConfig(ctx context.Context) (RulesResponse, error)
	UpdateRules(ctx context.Context, actorID string, req UpdateRulesRequest) (RulesResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leaverule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverule.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// GetRules returns the current rule table, creating it with the built-in
// defaults on first access.
func (s *service) GetRules(ctx context.Context) (Rules, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return Rules{}, err
	}
	return Rules{Version: cfg.Version, Days: cfg.Rules.Data().Clone()}, nil
}

func (s *service) GetConfig(ctx context.Context) (RulesResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return RulesResponse{}, err
	}
	return mapToResponse(cfg), nil
}

func (s *service) load(ctx context.Context) (*Config, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, RulesCacheKey).Result(); err == nil {
			var cfg Config
			if json.Unmarshal([]byte(cached), &cfg) == nil {
				return &cfg, nil
			}
		}
	}

	v, err, _ := s.sf.Do(RulesCacheKey, func() (interface{}, error) {
		cfg, err := s.repo.Get(ctx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("leave rules missing, inserting defaults")
			if err := s.repo.EnsureDefaults(ctx, DefaultDays()); err != nil {
				return nil, err
			}
			cfg, err = s.repo.Get(ctx)
		}
		if err != nil {
			s.logger.Error("load leave rules failed", zap.Error(err))
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(cfg); err == nil {
				if err := s.rdb.Set(ctx, RulesCacheKey, payload, rulesCacheTTL).Err(); err != nil {
					s.logger.Warn("cache leave rules failed", zap.Error(err))
				}
			}
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

// UpdateRules replaces the table wholesale and bumps its version. Existing
// employee balances are snapshots and are left untouched.
func (s *service) UpdateRules(ctx context.Context, actorID string, req UpdateRulesRequest) (RulesResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := validateDays(req.Rules); err != nil {
		return RulesResponse{}, err
	}

	// make sure the singleton exists before updating it
	if _, err := s.load(ctx); err != nil {
		return RulesResponse{}, err
	}

	var updatedBy *uuid.UUID
	if id, err := uuid.Parse(actorID); err == nil {
		updatedBy = &id
	}

	cfg, err := s.repo.Replace(ctx, req.Rules, updatedBy)
	if err != nil {
		log.Error("update leave rules failed", zap.Error(err))
		return RulesResponse{}, err
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, RulesCacheKey).Err(); err != nil {
			log.Error("failed to invalidate leave rules cache", zap.Error(err))
		}
	}

	log.Info("leave rules updated",
		zap.Int("version", cfg.Version),
		zap.String("updated_by", actorID),
	)
	return mapToResponse(cfg), nil
}

func validateDays(days LeaveDays) error {
	if len(days) == 0 {
		return leaveruleerrors.ErrEmptyRules
	}
	for k, v := range days {
		if !ruleKeyPattern.MatchString(k) || k == TypePublic {
			return leaveruleerrors.ErrInvalidRuleKey
		}
		if v < 0 {
			return leaveruleerrors.ErrNegativeDays
		}
	}
	return nil
}

func mapToResponse(cfg *Config) RulesResponse {
	resp := RulesResponse{
		Type:    cfg.Type,
		Rules:   cfg.Rules.Data(),
		Version: cfg.Version,
	}
	if cfg.UpdatedBy != nil {
		resp.UpdatedBy = cfg.UpdatedBy.String()
	}
	if !cfg.UpdatedAt.IsZero() {
		resp.UpdatedAt = cfg.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// PublicView lists every leave type a user can file, including public holidays.
func PublicView(r Rules) PublicRulesResponse {
	types := make([]LeaveTypeResponse, 0, len(r.Days)+1)
	for _, k := range r.Types() {
		if k == TypePublicHolidays {
			continue
		}
		types = append(types, LeaveTypeResponse{Key: k, Label: Label(k), Days: r.Days[k]})
	}
	types = append(types, LeaveTypeResponse{
		Key:           TypePublic,
		Label:         Label(TypePublic),
		Days:          r.Entitlement(TypePublic),
		BalanceExempt: true,
	})
	return PublicRulesResponse{Rules: r.Days, Version: r.Version, LeaveTypes: types}
}
