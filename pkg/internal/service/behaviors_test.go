package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/storage"
	"github.com/yeisme/objectvault/pkg/internal/storage/db"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// newServiceContext 构造内存 SQLite 存储上下文供服务层测试使用.
func newServiceContext(t *testing.T) (context.Context, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate models: %v", err)
	}

	mgr := &storage.Manager{DB: &db.Client{DB: gdb}}

	return ctxPkg.WithStorageManager(context.Background(), mgr), gdb
}

func strPtr(s string) *string { return &s }

// TestRecordBehaviorRejectsUnknownType 测试未知行为类型被拒绝.
func TestRecordBehaviorRejectsUnknownType(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	_, err := bs.RecordBehavior(ctx, &types.RecordBehaviorRequest{
		BehaviorType: "definitely_not_a_behavior",
	}, types.ClientInfo{})
	if err == nil {
		t.Fatal("expected error for unknown behavior type, got nil")
	}
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

// TestRecordAndQueryBehaviors 测试行为写入与按条件查询，含 metadata 信封回读.
func TestRecordAndQueryBehaviors(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	result, err := bs.RecordBehavior(ctx, &types.RecordBehaviorRequest{
		BehaviorType:  string(model.BehaviorDocumentView),
		UserID:        "alice",
		SessionID:     "sess-a",
		TargetType:    "document",
		TargetID:      "articles/guide.md",
		ActionDetails: map[string]any{"source": "search"},
		Metadata:      map[string]any{"page": "detail"},
	}, types.ClientInfo{IPAddress: "127.0.0.1", UserAgent: "go-test"})
	if err != nil {
		t.Fatalf("record behavior: %v", err)
	}
	if !result.Success || result.BehaviorID == "" {
		t.Errorf("result = %+v", result)
	}

	for _, req := range []types.RecordBehaviorRequest{
		{BehaviorType: string(model.BehaviorSearchQuery), UserID: "alice", SessionID: "sess-a"},
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "bob", SessionID: "sess-b"},
	} {
		if _, err := bs.RecordBehavior(ctx, &req, types.ClientInfo{}); err != nil {
			t.Fatalf("record behavior: %v", err)
		}
	}

	resp, err := bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{UserID: "alice", Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("query behaviors: %v", err)
	}
	if len(resp.Behaviors) != 2 {
		t.Fatalf("len(behaviors) = %d, want 2 for alice", len(resp.Behaviors))
	}

	resp, err = bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{
		UserID: "alice", BehaviorType: string(model.BehaviorDocumentView), Page: 1, Size: 20,
	})
	if err != nil {
		t.Fatalf("query behaviors: %v", err)
	}
	if len(resp.Behaviors) != 1 {
		t.Fatalf("len(behaviors) = %d, want 1 after type filter", len(resp.Behaviors))
	}

	record := resp.Behaviors[0]
	if record.TargetID != "articles/guide.md" || record.UserID == nil || *record.UserID != "alice" {
		t.Errorf("record = %+v", record)
	}
	if record.Metadata["session_id"] != "sess-a" || record.Metadata["ip_address"] != "127.0.0.1" {
		t.Errorf("metadata envelope = %v", record.Metadata)
	}
	if record.Metadata["page"] != "detail" {
		t.Errorf("metadata envelope lost caller keys: %v", record.Metadata)
	}
	if record.ActionDetails["source"] != "search" {
		t.Errorf("action details = %v", record.ActionDetails)
	}

	resp, err = bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{SessionID: "sess-b", Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("query by session: %v", err)
	}
	if len(resp.Behaviors) != 1 {
		t.Errorf("len(behaviors) = %d, want 1 for session filter", len(resp.Behaviors))
	}
}

// TestQueryBehaviorsOrder 测试查询按时间倒序返回.
func TestQueryBehaviorsOrder(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	now := time.Now().UTC()
	rows := []model.UserBehavior{
		{ID: "old", UserID: strPtr("alice"), Action: string(model.BehaviorPageView), MetadataJSON: "{}", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", UserID: strPtr("alice"), Action: string(model.BehaviorPageView), MetadataJSON: "{}", CreatedAt: now},
	}
	for i := range rows {
		if err := gdb.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed behavior: %v", err)
		}
	}

	resp, err := bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{UserID: "alice", Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("query behaviors: %v", err)
	}
	if len(resp.Behaviors) != 2 || resp.Behaviors[0].ID != "new" {
		t.Errorf("behaviors = %+v, want newest first", resp.Behaviors)
	}
}

// TestQueryBehaviorsRejectsBadDate 测试非法日期参数返回校验错误.
func TestQueryBehaviorsRejectsBadDate(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	_, err := bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{StartDate: "not-a-date", Page: 1, Size: 20})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for bad start date, got %v", err)
	}

	_, err = bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{EndDate: "2026/01/01", Page: 1, Size: 20})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for bad end date, got %v", err)
	}
}

// TestBatchRecordPartialFailure 测试批量上报单条失败不影响其余.
func TestBatchRecordPartialFailure(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	resp := bs.BatchRecord(ctx, []types.RecordBehaviorRequest{
		{BehaviorType: string(model.BehaviorPageView), UserID: "alice"},
		{BehaviorType: "bogus_type", UserID: "alice"},
		{BehaviorType: string(model.BehaviorSearchQuery), UserID: "alice"},
	}, types.ClientInfo{})

	if resp.Total != 3 || resp.Success != 2 || resp.Failed != 1 {
		t.Fatalf("batch result = %+v", resp)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("len(results) = %d", len(resp.Results))
	}
	if resp.Results[1].Error == "" || resp.Results[1].Success {
		t.Errorf("results[1] = %+v, want failure for bad type", resp.Results[1])
	}
	if resp.Results[0].BehaviorID == "" || resp.Results[2].BehaviorID == "" {
		t.Error("successful entries should carry behavior IDs")
	}
}

// TestBehaviorStatistics 测试行为统计的总量、去重与分类计数.
func TestBehaviorStatistics(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	for _, req := range []types.RecordBehaviorRequest{
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "alice", SessionID: "sess-a"},
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "alice", SessionID: "sess-a"},
		{BehaviorType: string(model.BehaviorNewsletterLike), UserID: "bob", SessionID: "sess-b"},
	} {
		if _, err := bs.RecordBehavior(ctx, &req, types.ClientInfo{}); err != nil {
			t.Fatalf("record behavior: %v", err)
		}
	}

	resp, err := bs.Statistics(ctx, "", "", 7)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	stats := resp.BehaviorStatistics
	if stats.TotalBehaviors != 3 {
		t.Errorf("TotalBehaviors = %d, want 3", stats.TotalBehaviors)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("UniqueUsers = %d, want 2", stats.UniqueUsers)
	}
	if stats.UniqueSessions != 2 {
		t.Errorf("UniqueSessions = %d, want 2", stats.UniqueSessions)
	}
	if stats.BehaviorCounts[string(model.BehaviorDocumentView)] != 2 {
		t.Errorf("BehaviorCounts = %v", stats.BehaviorCounts)
	}
	if resp.Period.Days != 7 {
		t.Errorf("Period = %+v", resp.Period)
	}

	// 按用户过滤
	resp, err = bs.Statistics(ctx, "bob", "", 7)
	if err != nil {
		t.Fatalf("statistics for bob: %v", err)
	}
	if resp.BehaviorStatistics.TotalBehaviors != 1 {
		t.Errorf("TotalBehaviors = %d, want 1 for bob", resp.BehaviorStatistics.TotalBehaviors)
	}
}

// TestPopularTargets 测试目标热度聚合按访问次数倒序.
func TestPopularTargets(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	for _, req := range []types.RecordBehaviorRequest{
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "alice", TargetType: "document", TargetID: "doc-1"},
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "bob", TargetType: "document", TargetID: "doc-1"},
		{BehaviorType: string(model.BehaviorDocumentView), UserID: "alice", TargetType: "document", TargetID: "doc-2"},
	} {
		if _, err := bs.RecordBehavior(ctx, &req, types.ClientInfo{}); err != nil {
			t.Fatalf("record behavior: %v", err)
		}
	}

	resp, err := bs.PopularTargets(ctx, "document", string(model.BehaviorDocumentView), 10, 7)
	if err != nil {
		t.Fatalf("popular targets: %v", err)
	}
	if len(resp.Targets) != 2 {
		t.Fatalf("len(targets) = %d, want 2", len(resp.Targets))
	}

	top := resp.Targets[0]
	if top.TargetID != "doc-1" || top.AccessCount != 2 || top.UniqueUsers != 2 {
		t.Errorf("top target = %+v", top)
	}
	if _, err := time.Parse(time.RFC3339, top.LastAccessed); err != nil {
		t.Errorf("LastAccessed = %q, want RFC3339", top.LastAccessed)
	}
}

// TestUserTimeline 测试用户时间线分页与伴随统计.
func TestUserTimeline(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	for range 3 {
		req := types.RecordBehaviorRequest{BehaviorType: string(model.BehaviorPageView), UserID: "alice", SessionID: "sess-a"}
		if _, err := bs.RecordBehavior(ctx, &req, types.ClientInfo{}); err != nil {
			t.Fatalf("record behavior: %v", err)
		}
	}

	resp, err := bs.UserTimeline(ctx, "alice", 7, 1, 2)
	if err != nil {
		t.Fatalf("user timeline: %v", err)
	}
	if len(resp.Timeline) != 2 {
		t.Errorf("len(timeline) = %d, want page size 2", len(resp.Timeline))
	}
	if resp.Statistics.TotalBehaviors != 3 {
		t.Errorf("TotalBehaviors = %d, want 3", resp.Statistics.TotalBehaviors)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Size != 2 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}

	resp, err = bs.UserTimeline(ctx, "alice", 7, 2, 2)
	if err != nil {
		t.Fatalf("user timeline page 2: %v", err)
	}
	if len(resp.Timeline) != 1 {
		t.Errorf("len(timeline) = %d, want 1 on second page", len(resp.Timeline))
	}
}

// TestCleanupBehaviors 测试过期清理：dry run 只统计，实际执行删除.
func TestCleanupBehaviors(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	old := model.UserBehavior{
		ID:           "stale",
		UserID:       strPtr("alice"),
		Action:       string(model.BehaviorPageView),
		MetadataJSON: "{}",
		CreatedAt:    time.Now().UTC().Add(-100 * 24 * time.Hour),
	}
	if err := gdb.Create(&old).Error; err != nil {
		t.Fatalf("seed stale behavior: %v", err)
	}

	req := types.RecordBehaviorRequest{BehaviorType: string(model.BehaviorPageView), UserID: "alice"}
	if _, err := bs.RecordBehavior(ctx, &req, types.ClientInfo{}); err != nil {
		t.Fatalf("record fresh behavior: %v", err)
	}

	resp, err := bs.CleanupBehaviors(ctx, 30, true)
	if err != nil {
		t.Fatalf("cleanup dry run: %v", err)
	}
	if resp.Matched != 1 || resp.Deleted != 0 || !resp.DryRun {
		t.Errorf("dry run result = %+v", resp)
	}

	var count int64
	if err := gdb.Model(&model.UserBehavior{}).Count(&count).Error; err != nil {
		t.Fatalf("count behaviors: %v", err)
	}
	if count != 2 {
		t.Errorf("dry run deleted rows, count = %d", count)
	}

	resp, err = bs.CleanupBehaviors(ctx, 30, false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if resp.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", resp.Deleted)
	}

	if err := gdb.Model(&model.UserBehavior{}).Count(&count).Error; err != nil {
		t.Fatalf("count behaviors: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d after cleanup, want 1", count)
	}
}

// TestNewSessionID 测试会话 ID 生成唯一且非空.
func TestNewSessionID(t *testing.T) {
	a := service.NewSessionID()
	b := service.NewSessionID()

	if a == "" || b == "" {
		t.Fatal("session ID should not be empty")
	}
	if a == b {
		t.Error("consecutive session IDs should differ")
	}
}
