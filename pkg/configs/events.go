package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Bucket   BucketEventsConfig   `mapstructure:"bucket"`
	Object   ObjectEventsConfig   `mapstructure:"object"`
	Pipeline PipelineEventsConfig `mapstructure:"pipeline"`
	Behavior BehaviorEventsConfig `mapstructure:"behavior"`
}

// BucketEventsConfig 针对存储桶生命周期的事件开关。
type BucketEventsConfig struct {
	Created bool `mapstructure:"created"`
	Deleted bool `mapstructure:"deleted"`
}

// ObjectEventsConfig 针对对象存储领域的事件开关。
type ObjectEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Copied   bool `mapstructure:"copied"`
	Accessed bool `mapstructure:"accessed"`
}

// PipelineEventsConfig 针对文档摄取管道的事件开关。
type PipelineEventsConfig struct {
	Indexed     bool `mapstructure:"indexed"`
	IndexFailed bool `mapstructure:"index_failed"`
	Removed     bool `mapstructure:"removed"`
}

// BehaviorEventsConfig 针对用户行为记录的事件开关。
type BehaviorEventsConfig struct {
	Recorded bool `mapstructure:"recorded"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 桶生命周期事件：默认开启
	v.SetDefault("events.bucket.created", true)
	v.SetDefault("events.bucket.deleted", true)

	// 对象领域的事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.object.stored", true)
	v.SetDefault("events.object.deleted", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.object.copied", false)
	v.SetDefault("events.object.accessed", false) // 访问事件量可能很大，默认关闭

	// 管道事件：索引失败默认开启，便于对账任务补偿
	v.SetDefault("events.pipeline.indexed", true)
	v.SetDefault("events.pipeline.index_failed", true)
	v.SetDefault("events.pipeline.removed", true)

	// 行为事件：量大，默认关闭
	v.SetDefault("events.behavior.recorded", false)
}
