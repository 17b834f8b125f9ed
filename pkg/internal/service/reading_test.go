package service_test

import (
	"testing"
	"time"

	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// TestSaveAndLoadReadingProgress 测试完整进度保存与聚合回读.
func TestSaveAndLoadReadingProgress(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	resp := bs.SaveCompleteProgress(ctx, &types.SaveProgressRequest{
		UserID:     "alice",
		DocumentID: "articles/guide.md",
		SessionID:  "sess-1",
		OverallProgress: map[string]any{
			"scrollProgress":     42.5,
			"readingProgress":    40,
			"totalReadingTime":   300,
			"lastScrollPosition": 1200.5,
			"isCompleted":        false,
		},
		SectionProgress: []map[string]any{
			{"id": "sec-1", "title": "Intro", "isRead": true, "readPercentage": 100},
			{"id": "sec-2", "title": "Details", "isRead": false, "readPercentage": 30},
		},
		ScrollBehavior: map[string]any{"scrollTop": 800, "scrollDirection": "down"},
		Insights:       map[string]any{"dominantReadingMode": "deep"},
		SaveType:       "manual",
	})

	if !resp.Success {
		t.Fatalf("save failed: %+v", resp.Errors)
	}
	if len(resp.SavedComponents) != 4 {
		t.Fatalf("SavedComponents = %d, want 4", len(resp.SavedComponents))
	}
	if resp.SavedComponents[1].Type != "section_progress" || resp.SavedComponents[1].Count != 2 {
		t.Errorf("section component = %+v", resp.SavedComponents[1])
	}

	data, err := bs.LoadReadingProgress(ctx, "alice", "articles/guide.md")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}

	if data.OverallProgress == nil {
		t.Fatal("OverallProgress missing")
	}
	if data.OverallProgress["scrollProgress"] != 42.5 {
		t.Errorf("OverallProgress = %v", data.OverallProgress)
	}
	if !data.ShouldResume {
		t.Error("ShouldResume = false, want true for unfinished document")
	}
	if data.ResumePosition != 1200.5 {
		t.Errorf("ResumePosition = %v, want 1200.5", data.ResumePosition)
	}

	if len(data.SectionProgress) != 2 {
		t.Fatalf("SectionProgress = %d entries, want 2", len(data.SectionProgress))
	}
	if data.Insights == nil || data.Insights["dominantReadingMode"] != "deep" {
		t.Errorf("Insights = %v", data.Insights)
	}

	if data.ReadingHistory.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", data.ReadingHistory.TotalSessions)
	}
	if data.ReadingHistory.TotalReadingTime != 300 {
		t.Errorf("TotalReadingTime = %v, want 300", data.ReadingHistory.TotalReadingTime)
	}
	if data.ReadingHistory.LastReadTime == "" {
		t.Error("LastReadTime missing")
	}
}

// TestSaveCompleteProgressCompleted 测试读完的文档不再提示续读.
func TestSaveCompleteProgressCompleted(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	resp := bs.SaveCompleteProgress(ctx, &types.SaveProgressRequest{
		UserID:          "alice",
		DocumentID:      "articles/done.md",
		SessionID:       "sess-2",
		OverallProgress: map[string]any{"isCompleted": true, "readingProgress": 100},
	})
	if !resp.Success {
		t.Fatalf("save failed: %+v", resp.Errors)
	}

	data, err := bs.LoadReadingProgress(ctx, "alice", "articles/done.md")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if data.ShouldResume {
		t.Error("ShouldResume = true, want false for completed document")
	}
}

// TestReadingSessionLifecycle 测试会话开始计入活跃列表、结束后移除.
func TestReadingSessionLifecycle(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	_, err := bs.SaveReadingSession(ctx, "alice", "articles/guide.md", map[string]any{
		"id":           "sess-live",
		"sessionStart": "2026-08-22T10:00:00Z",
		"device":       map[string]any{"isMobile": false},
	}, "start")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	active, err := bs.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if active.Count != 1 {
		t.Fatalf("Count = %d, want 1 active session", active.Count)
	}
	session := active.ActiveSessions[0]
	if session["id"] != "sess-live" || session["behavior_id"] == "" {
		t.Errorf("session = %v", session)
	}
	if _, err := time.Parse(time.RFC3339, session["started_at"].(string)); err != nil {
		t.Errorf("started_at = %v, want RFC3339", session["started_at"])
	}

	_, err = bs.SaveReadingSession(ctx, "alice", "articles/guide.md", map[string]any{
		"id":          "sess-live",
		"totalTime":   900,
		"isCompleted": true,
		"exitReason":  "finished",
	}, "end")
	if err != nil {
		t.Fatalf("end session: %v", err)
	}

	active, err = bs.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if active.Count != 0 {
		t.Errorf("Count = %d, want 0 after session end", active.Count)
	}
}

// TestCleanupStaleSessions 测试超时活跃会话被补记结束.
func TestCleanupStaleSessions(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	stale := model.UserBehavior{
		ID:           "stale-start",
		UserID:       strPtr("alice"),
		Action:       string(model.BehaviorReadingSessionStart),
		TargetType:   "document",
		TargetID:     "articles/guide.md",
		MetadataJSON: `{"session_id":"sess-old","action_details":{"id":"sess-old","documentId":"articles/guide.md"}}`,
		CreatedAt:    time.Now().UTC().Add(-30 * time.Hour),
	}
	if err := gdb.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale session: %v", err)
	}

	resp, err := bs.CleanupStaleSessions(ctx, "alice", 24)
	if err != nil {
		t.Fatalf("cleanup stale sessions: %v", err)
	}
	if resp.CleanedSessions != 1 || resp.RemainingActive != 0 {
		t.Errorf("cleanup = %+v", resp)
	}

	active, err := bs.ActiveSessions(ctx, "alice")
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if active.Count != 0 {
		t.Errorf("Count = %d, want 0 after cleanup", active.Count)
	}

	ends, err := bs.QueryBehaviors(ctx, &types.BehaviorQueryRequest{
		UserID: "alice", BehaviorType: string(model.BehaviorReadingSessionEnd), Page: 1, Size: 20,
	})
	if err != nil {
		t.Fatalf("query session ends: %v", err)
	}
	if len(ends.Behaviors) != 1 {
		t.Fatalf("len(ends) = %d, want 1 synthesized end", len(ends.Behaviors))
	}
	if ends.Behaviors[0].Metadata["exit_reason"] != "timeout_cleanup" {
		t.Errorf("end metadata = %v", ends.Behaviors[0].Metadata)
	}
}

// TestCleanupStaleSessionsKeepsFresh 测试未超时会话不被清理.
func TestCleanupStaleSessionsKeepsFresh(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	_, err := bs.SaveReadingSession(ctx, "alice", "articles/guide.md", map[string]any{"id": "sess-fresh"}, "start")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	resp, err := bs.CleanupStaleSessions(ctx, "alice", 24)
	if err != nil {
		t.Fatalf("cleanup stale sessions: %v", err)
	}
	if resp.CleanedSessions != 0 || resp.RemainingActive != 1 {
		t.Errorf("cleanup = %+v", resp)
	}
}

// TestReadingAnalytics 测试阅读习惯统计的会话数与分布.
func TestReadingAnalytics(t *testing.T) {
	ctx, _ := newServiceContext(t)
	bs := service.NewBehaviorService(ctx)

	_, err := bs.SaveReadingSession(ctx, "alice", "doc-1", map[string]any{
		"id":     "sess-1",
		"device": map[string]any{"isMobile": true},
	}, "start")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	_, err = bs.SaveReadingSession(ctx, "alice", "doc-2", map[string]any{"id": "sess-2"}, "start")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	_, err = bs.SaveReadingProgress(ctx, "alice", "doc-1", "sess-1", map[string]any{"readingProgress": 50})
	if err != nil {
		t.Fatalf("save progress: %v", err)
	}

	resp, err := bs.ReadingAnalytics(ctx, "alice", 7)
	if err != nil {
		t.Fatalf("reading analytics: %v", err)
	}

	stats := resp.Statistics
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalDocumentsRead != 2 {
		t.Errorf("TotalDocumentsRead = %d, want 2", stats.TotalDocumentsRead)
	}
	if stats.DeviceDistribution["mobile"] != 1 || stats.DeviceDistribution["desktop"] != 2 {
		t.Errorf("DeviceDistribution = %v", stats.DeviceDistribution)
	}
	if stats.ReadingModeDistribution["normal"] != 3 {
		t.Errorf("ReadingModeDistribution = %v", stats.ReadingModeDistribution)
	}
	if resp.RawDataCount != 3 {
		t.Errorf("RawDataCount = %d, want 3", resp.RawDataCount)
	}
}
