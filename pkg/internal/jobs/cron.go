// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/storage"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 索引对账：扫描配置桶内的文档类对象，补建缺失的搜索索引条目（默认关闭）
//   - 去重缓存清理：删除指向已删除索引文档的悬挂去重键
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig().Jobs

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if cfg.ReconcileEnabled {
		if err := sched.AddCron(JobIndexReconcile, cfg.ReconcileCron, func(ctx context.Context) {
			runIndexReconcile(ctx, mgr, cfg)
		}, baseCtx); err != nil {
			return fmt.Errorf("register %s: %w", JobIndexReconcile, err)
		}
	}

	if err := sched.AddCron(JobDedupPrune, cfg.DedupPruneCron, func(ctx context.Context) {
		runDedupPrune(ctx)
	}, baseCtx); err != nil {
		return fmt.Errorf("register %s: %w", JobDedupPrune, err)
	}

	return nil
}

// runIndexReconcile 逐桶对账文档索引，单轮处理量受 ReconcileBatch 限制。
func runIndexReconcile(ctx context.Context, mgr *storage.Manager, cfg configs.JobsConfig) {
	l := log.Logger().With().Str("job", JobIndexReconcile).Logger()

	buckets := cfg.ReconcileBuckets
	if len(buckets) == 0 {
		store := mgr.GetObjectStorage()
		if store == nil {
			l.Error().Msg("object storage not initialized")
			return
		}

		infos, err := store.ListBuckets(ctx)
		if err != nil {
			l.Error().Err(err).Msg("list buckets failed")
			return
		}

		for _, info := range infos {
			buckets = append(buckets, info.Name)
		}
	}

	remaining := cfg.ReconcileBatch

	for _, bucket := range buckets {
		if remaining <= 0 {
			l.Info().Msg("reconcile batch budget exhausted, remaining buckets deferred to next run")
			break
		}

		svc := service.NewPipelineService(ctx)

		stats, err := svc.ReconcileBucket(ctx, bucket, remaining)
		if err != nil {
			l.Error().Err(err).Str("bucket", bucket).Msg("reconcile bucket failed")
			continue
		}

		remaining -= stats.Scanned

		if stats.Missing > 0 || stats.Failed > 0 {
			l.Info().Str("bucket", bucket).
				Int("scanned", stats.Scanned).
				Int("missing", stats.Missing).
				Int("reindexed", stats.Reindexed).
				Int("duplicate", stats.Duplicate).
				Int("failed", stats.Failed).
				Msg("reconcile bucket done")
		}
	}
}

// runDedupPrune 清理去重缓存中的悬挂条目。
func runDedupPrune(ctx context.Context) {
	l := log.Logger().With().Str("job", JobDedupPrune).Logger()

	svc := service.NewPipelineService(ctx)

	pruned, err := svc.PruneDedupCache(ctx)
	if err != nil {
		l.Error().Err(err).Msg("prune dedup cache failed")
		return
	}

	if pruned > 0 {
		l.Info().Int("pruned", pruned).Msg("dedup cache pruned")
	}
}
