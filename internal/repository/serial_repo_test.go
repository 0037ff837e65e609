package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormtests "gorm.io/gorm/utils/tests"
)

// ── 测试辅助 ──

// sqlRecorder 捕获 DryRun 模式下生成的 SQL，用于断言语句形态
type sqlRecorder struct {
	sqls []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.sqls = append(r.sqls, sql)
}

func (r *sqlRecorder) last() string {
	if len(r.sqls) == 0 {
		return ""
	}
	return r.sqls[len(r.sqls)-1]
}

func setupDryRunRepo(t *testing.T) (SerialRepository, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(gormtests.DummyDialector{}, &gorm.Config{
		DryRun: true,
		Logger: rec,
	})
	if err != nil {
		t.Fatalf("初始化 DryRun 连接失败: %v", err)
	}
	return NewSerialRepo(db), rec
}

// ── SQL 形态测试 ──

func TestSerialRepo_GetByCodeForUpdate_AcquiresRowLock(t *testing.T) {
	repo, rec := setupDryRunRepo(t)

	// 并发核销依赖行锁串行化，查询语句必须带 FOR UPDATE
	_, _ = repo.GetByCodeForUpdate(context.Background(), "ABCD1234EFGH")

	sql := rec.last()
	if sql == "" {
		t.Fatal("未捕获到生成的 SQL")
	}
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("查询语句缺少 FOR UPDATE 行锁: %s", sql)
	}
}

func TestSerialRepo_MarkRedeemed_GuardsTerminalState(t *testing.T) {
	repo, rec := setupDryRunRepo(t)

	// 终态保护：已核销的码不得被再次核销覆盖
	_, _ = repo.MarkRedeemed(context.Background(), "serial-001", "user-001")

	sql := rec.last()
	if sql == "" {
		t.Fatal("未捕获到生成的 SQL")
	}
	if !strings.Contains(sql, "status") || !strings.Contains(sql, "<>") {
		t.Errorf("更新语句缺少状态守卫条件: %s", sql)
	}
}
