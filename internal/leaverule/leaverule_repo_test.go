package leaverule_test

import (
	"context"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/leaverule"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gdb, mock
}

func TestLeaveRuleRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ensure defaults is an upsert that never overwrites", func(t *testing.T) {
		gdb, mock := setupGormMock(t)
		mock.ExpectExec(`INSERT INTO leave_rule_configs .* ON CONFLICT \(type\) DO NOTHING`).
			WithArgs(leaverule.DefaultType, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := leaverule.NewRepository(gdb).EnsureDefaults(ctx, leaverule.DefaultDays())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get decodes jsonb rules", func(t *testing.T) {
		gdb, mock := setupGormMock(t)
		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "leave_rule_configs" WHERE type = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"type", "rules", "version", "updated_by", "created_at", "updated_at"}).
				AddRow("default", []byte(`{"annual":26,"sick":2}`), 3, nil, now, now))

		cfg, err := leaverule.NewRepository(gdb).Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 3, cfg.Version)
		assert.Equal(t, 26, cfg.Rules.Data()["annual"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
