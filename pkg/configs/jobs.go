package configs

import "github.com/spf13/viper"

const (
	DefaultReconcileEnabled = false         // 默认关闭索引对账任务
	DefaultReconcileCron    = "0 */6 * * *" // 默认每6小时执行一次
	DefaultReconcileBatch   = 200           // 单次最多处理对象数
	DefaultDedupPruneCron   = "30 3 * * *"  // 默认每天凌晨清理去重缓存
)

// JobsConfig 后台任务配置.
type JobsConfig struct {
	ReconcileEnabled bool     `mapstructure:"reconcile_enabled"`
	ReconcileCron    string   `mapstructure:"reconcile_cron"`
	ReconcileBuckets []string `mapstructure:"reconcile_buckets"` // 为空表示扫描全部桶
	ReconcileBatch   int      `mapstructure:"reconcile_batch"    rule:"min=1,max=10000"`
	DedupPruneCron   string   `mapstructure:"dedup_prune_cron"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.reconcile_enabled", DefaultReconcileEnabled)
	v.SetDefault("jobs.reconcile_cron", DefaultReconcileCron)
	v.SetDefault("jobs.reconcile_buckets", []string{})
	v.SetDefault("jobs.reconcile_batch", DefaultReconcileBatch)
	v.SetDefault("jobs.dedup_prune_cron", DefaultDedupPruneCron)
}
