package jobs

// 任务名称常量，便于统一管理与引用.
// Cron 表达式不在这里固化，统一走 jobs 配置段，便于按环境调整.
const (
	JobIndexReconcile = "index.reconcile"
	JobDedupPrune     = "index.dedup_prune"
)
