package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"acadstore_v1_202608/internal/repository"
	"acadstore_v1_202608/pkg/utils"
)

// 数据保留策略
const (
	idleCartRetention  = 30 * 24 * time.Hour // 无人动过的购物车行保留 30 天
	accessLogRetention = 90 * 24 * time.Hour // 审计日志保留 90 天
)

type CleanupTask struct {
	CartRepo repository.CartRepository
	LogRepo  repository.AccessLogRepository
	Cron     *cron.Cron
}

func NewCleanupTask(cartRepo repository.CartRepository, logRepo repository.AccessLogRepository) *CleanupTask {
	return &CleanupTask{
		CartRepo: cartRepo,
		LogRepo:  logRepo,
		Cron:     cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 启动定时清理任务
func (t *CleanupTask) Start() {
	// 每小时：过期匿名会话的购物车行 + 内存限流计数器
	_, err := t.Cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.hourlyJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动小时级清理任务: %v", err)
	}

	// 每天凌晨 3 点：闲置购物车行 + 过期审计日志
	_, err = t.Cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.dailyJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动天级清理任务: %v", err)
	}

	t.Cron.Start()
	log.Println("[Task] 数据清理任务已启动 (每小时清会话，每天 3 点清闲置数据)")
}

// Stop 停止定时任务
func (t *CleanupTask) Stop() {
	t.Cron.Stop()
}

func (t *CleanupTask) hourlyJob(ctx context.Context) {
	n, err := t.CartRepo.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		log.Printf("[Cron] 过期会话购物车清理失败: %v", err)
	} else if n > 0 {
		log.Printf("[Cron] 已清理 %d 条过期会话购物车行", n)
	}

	if purged := utils.PurgeExpiredCounters(); purged > 0 {
		log.Printf("[Cron] 已回收 %d 个过期限流计数器", purged)
	}
}

func (t *CleanupTask) dailyJob(ctx context.Context) {
	n, err := t.CartRepo.DeleteIdleBefore(ctx, time.Now().Add(-idleCartRetention))
	if err != nil {
		log.Printf("[Cron] 闲置购物车清理失败: %v", err)
	} else if n > 0 {
		log.Printf("[Cron] 已清理 %d 条闲置购物车行", n)
	}

	m, err := t.LogRepo.DeleteBefore(ctx, time.Now().Add(-accessLogRetention))
	if err != nil {
		log.Printf("[Cron] 审计日志清理失败: %v", err)
	} else if m > 0 {
		log.Printf("[Cron] 已清理 %d 条过期审计日志", m)
	}
}
