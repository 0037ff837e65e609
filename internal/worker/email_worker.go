package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"activity-hours/backend/config"
	"activity-hours/backend/internal/mailer"
	"activity-hours/backend/internal/model"
	"activity-hours/backend/internal/repository"
)

// lockKey 多实例部署时的领导锁键名
const lockKey = "activity_hours:email_worker:lock"

// Locker 领导锁接口
// 多实例部署时由 Redis 实现；为 nil 时视为单实例直接消费
type Locker interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

// EmailWorker 邮件队列后台消费者
// 周期性扫描队列并按 FIFO 投递；投递结果按至少一次语义推进条目状态：
// 成功 → sent；失败且尝试次数未耗尽 → 留在队列等下一轮；耗尽 → failed 终态
type EmailWorker struct {
	cfg    *config.WorkerConfig
	repo   *repository.Repository
	mailer mailer.Mailer
	locker Locker
	logger *zap.Logger

	owner string      // 本实例的锁持有者标识
	busy  atomic.Bool // 上一轮未结束时跳过本轮，避免重叠消费
}

// NewEmailWorker 创建邮件 Worker
func NewEmailWorker(
	cfg *config.WorkerConfig,
	repo *repository.Repository,
	m mailer.Mailer,
	locker Locker,
	logger *zap.Logger,
) *EmailWorker {
	return &EmailWorker{
		cfg:    cfg,
		repo:   repo,
		mailer: m,
		locker: locker,
		logger: logger,
		owner:  uuid.NewString(),
	}
}

// Start 启动消费循环，ctx 取消后退出
// 调用方负责在独立 goroutine 中运行
func (w *EmailWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.logger.Info("邮件 Worker 已启动",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("batch_size", w.cfg.BatchSize))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("邮件 Worker 已停止")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick 执行一轮消费
// 单独导出便于测试直接驱动，不依赖真实时钟
func (w *EmailWorker) Tick(ctx context.Context) {
	if !w.busy.CompareAndSwap(false, true) {
		w.logger.Warn("上一轮投递尚未结束，跳过本轮")
		return
	}
	defer w.busy.Store(false)

	if w.locker != nil {
		acquired, err := w.locker.AcquireLock(ctx, lockKey, w.owner, w.cfg.LockTTL)
		if err != nil {
			w.logger.Error("获取领导锁失败", zap.Error(err))
			return
		}
		if !acquired {
			// 其他实例正在消费
			return
		}
		defer func() {
			if err := w.locker.ReleaseLock(ctx, lockKey, w.owner); err != nil {
				w.logger.Warn("释放领导锁失败", zap.Error(err))
			}
		}()
	}

	items, err := w.repo.EmailQueue.NextBatch(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("拉取邮件队列失败", zap.Error(err))
		return
	}

	for i := range items {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, &items[i])
	}
}

// deliver 投递单条邮件并推进状态
// attempts 在投递前先自增落库：即使进程在 SMTP 调用期间崩溃，
// 该次尝试也已被记账，不会因重启而超出 max_attempts
func (w *EmailWorker) deliver(ctx context.Context, item *model.EmailQueueItem) {
	item.Attempts++
	if err := w.repo.EmailQueue.Update(ctx, item); err != nil {
		w.logger.Error("记账投递尝试失败", zap.String("email_id", item.EmailID), zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	err := w.mailer.Send(sendCtx, item.Recipient, item.Subject, item.Body)
	cancel()

	if err != nil {
		msg := err.Error()
		item.LastError = &msg
		if item.Attempts >= item.MaxAttempts {
			item.Status = model.EmailStatusFailed
			w.logger.Error("邮件投递尝试耗尽，进入终态",
				zap.String("email_id", item.EmailID),
				zap.Int("attempts", item.Attempts),
				zap.Error(err))
		} else {
			// 保持 queued，下一轮重试
			w.logger.Warn("邮件投递失败，等待重试",
				zap.String("email_id", item.EmailID),
				zap.Int("attempts", item.Attempts),
				zap.Error(err))
		}
		if err := w.repo.EmailQueue.Update(ctx, item); err != nil {
			w.logger.Error("更新邮件状态失败", zap.String("email_id", item.EmailID), zap.Error(err))
		}
		return
	}

	// 承载兑换码的邮件：先推进兑换码再落条目终态。
	// 推进失败时条目保持 queued，下一轮连同投递一起重试（重复投递由至少一次语义承担），
	// 避免条目进入 sent 终态后兑换码永久滞留 pending
	if item.SerialID != nil {
		if err := w.repo.Serial.MarkSent(ctx, *item.SerialID); err != nil {
			w.logger.Error("更新兑换码发送状态失败，条目保持排队等待重试",
				zap.String("email_id", item.EmailID),
				zap.String("serial_id", *item.SerialID),
				zap.Error(err))
			return
		}
	}

	now := time.Now()
	item.Status = model.EmailStatusSent
	item.SentAt = &now
	item.LastError = nil
	if err := w.repo.EmailQueue.Update(ctx, item); err != nil {
		w.logger.Error("更新邮件状态失败", zap.String("email_id", item.EmailID), zap.Error(err))
		return
	}

	w.logger.Info("邮件投递成功",
		zap.String("email_id", item.EmailID),
		zap.String("recipient", item.Recipient))
}
