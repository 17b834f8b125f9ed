// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：ov.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：bucket(存储桶)、object(对象存储)、document(文档索引流水线)、behavior(用户行为)
// 动作：存储相关(stored/deleted/copied/accessed)、索引相关(indexed/removed)
// 状态：失败(failed)等后缀

const (
	// 存储桶领域.
	TopicBucketCreated = "ov.bucket.created" // 存储桶创建完成
	TopicBucketDeleted = "ov.bucket.deleted" // 存储桶删除完成

	// 对象存储领域.
	TopicObjectStored   = "ov.object.stored"   // 对象已写入对象存储（含 ETag、大小等基础元数据）
	TopicObjectDeleted  = "ov.object.deleted"  // 对象从存储中删除
	TopicObjectCopied   = "ov.object.copied"   // 对象在存储内复制完成
	TopicObjectAccessed = "ov.object.accessed" // 对象被访问（下载/预签名），用于热点统计

	// 文档索引流水线领域.
	TopicDocumentIndexed     = "ov.document.indexed"      // 文档已写入搜索索引
	TopicDocumentIndexFailed = "ov.document.index.failed" // 文档索引写入失败（含降级路径也失败的情况）
	TopicDocumentRemoved     = "ov.document.removed"      // 索引条目随对象删除被移除

	// 用户行为领域.
	TopicBehaviorRecorded = "ov.behavior.recorded" // 用户行为流水已落库
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 存储桶相关主题集合.
	BucketTopics = []string{
		TopicBucketCreated, TopicBucketDeleted,
	}

	// 对象存储相关主题集合.
	ObjectTopics = []string{
		TopicObjectStored, TopicObjectDeleted,
		TopicObjectCopied, TopicObjectAccessed,
	}

	// 文档索引相关主题集合.
	DocumentTopics = []string{
		TopicDocumentIndexed, TopicDocumentIndexFailed, TopicDocumentRemoved,
	}

	// 用户行为相关主题集合.
	BehaviorTopics = []string{
		TopicBehaviorRecorded,
	}
)
