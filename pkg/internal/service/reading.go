package service

import (
	"context"
	"math"
	"time"

	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// progressSaveMarker 完整进度保存后的汇总标记，不在行为枚举内，仅内部写入.
const progressSaveMarker = model.BehaviorType("reading_progress_save")

// SaveReadingSession 保存阅读会话. start 记为会话开始，end 与 update 都记为
// 会话结束类型，信封里的 action_type 区分两者.
func (bs *BehaviorService) SaveReadingSession(ctx context.Context, userID, documentID string, sessionData map[string]any, actionType string) (*types.RecordBehaviorResponse, error) {
	behaviorType := model.BehaviorReadingSessionEnd
	if actionType == "start" {
		behaviorType = model.BehaviorReadingSessionStart
	}

	metadata := map[string]any{
		"session_start": sessionData["sessionStart"],
		"session_end":   sessionData["sessionEnd"],
		"is_active":     anyOr(sessionData, "isActive", actionType == "start"),
		"device":        anyOr(sessionData, "device", map[string]any{}),
		"action_type":   actionType,
	}
	if actionType == "end" {
		metadata["total_session_time"] = anyOr(sessionData, "totalTime", 0)
		metadata["is_completed"] = anyOr(sessionData, "isCompleted", false)
		metadata["exit_reason"] = anyOr(sessionData, "exitReason", "normal")
	}

	return bs.record(ctx, recordInput{
		behaviorType:  behaviorType,
		userID:        userID,
		sessionID:     strField(sessionData, "id"),
		targetType:    "document",
		targetID:      documentID,
		actionDetails: sessionData,
		metadata:      metadata,
	})
}

// SaveReadingProgress 保存整体阅读进度快照.
func (bs *BehaviorService) SaveReadingProgress(ctx context.Context, userID, documentID, sessionID string, progress map[string]any) (*types.RecordBehaviorResponse, error) {
	return bs.record(ctx, recordInput{
		behaviorType:  model.BehaviorReadingProgressUpdate,
		userID:        userID,
		sessionID:     sessionID,
		targetType:    "document",
		targetID:      documentID,
		actionDetails: progress,
		metadata: map[string]any{
			"scroll_progress":          anyOr(progress, "scrollProgress", 0),
			"reading_progress":         anyOr(progress, "readingProgress", 0),
			"total_reading_time":       anyOr(progress, "totalReadingTime", 0),
			"active_reading_time":      anyOr(progress, "activeReadingTime", 0),
			"estimated_time_remaining": anyOr(progress, "estimatedTimeRemaining", 0),
			"total_sections":           anyOr(progress, "totalSections", 0),
			"read_sections":            anyOr(progress, "readSections", 0),
			"completion_rate":          anyOr(progress, "completionRate", 0),
			"current_behavior":         anyOr(progress, "currentBehavior", map[string]any{}),
			"last_scroll_position":     anyOr(progress, "lastScrollPosition", 0),
			"last_update_time":         progress["lastUpdateTime"],
			"is_completed":             anyOr(progress, "isCompleted", false),
		},
	})
}

// SaveSectionProgress 逐章节保存阅读进度，目标类型为 section.
func (bs *BehaviorService) SaveSectionProgress(ctx context.Context, userID, documentID, sessionID string, sections []map[string]any) ([]types.RecordBehaviorResponse, error) {
	results := make([]types.RecordBehaviorResponse, 0, len(sections))
	for _, section := range sections {
		result, err := bs.record(ctx, recordInput{
			behaviorType:  model.BehaviorSectionProgressUpdate,
			userID:        userID,
			sessionID:     sessionID,
			targetType:    "section",
			targetID:      strField(section, "id"),
			actionDetails: section,
			metadata: map[string]any{
				"title":             section["title"],
				"level":             anyOr(section, "level", 1),
				"position":          anyOr(section, "position", map[string]any{}),
				"is_read":           anyOr(section, "isRead", false),
				"read_percentage":   anyOr(section, "readPercentage", 0),
				"first_read_time":   section["firstReadTime"],
				"last_read_time":    section["lastReadTime"],
				"total_read_time":   anyOr(section, "totalReadTime", 0),
				"engagement_score":  anyOr(section, "engagementScore", 0),
				"scroll_pauses":     anyOr(section, "scrollPauses", 0),
				"time_spent":        anyOr(section, "timeSpent", 0),
				"interaction_count": anyOr(section, "interactionCount", 0),
			},
		})
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// SaveScrollBehavior 保存滚动行为采样.
func (bs *BehaviorService) SaveScrollBehavior(ctx context.Context, userID, documentID, sessionID string, scroll map[string]any) (*types.RecordBehaviorResponse, error) {
	return bs.record(ctx, recordInput{
		behaviorType:  model.BehaviorScrollBehaviorTrack,
		userID:        userID,
		sessionID:     sessionID,
		targetType:    "document",
		targetID:      documentID,
		actionDetails: scroll,
		metadata: map[string]any{
			"scroll_top":       anyOr(scroll, "scrollTop", 0),
			"scroll_height":    anyOr(scroll, "scrollHeight", 0),
			"client_height":    anyOr(scroll, "clientHeight", 0),
			"scroll_progress":  anyOr(scroll, "scrollProgress", 0),
			"scroll_direction": anyOr(scroll, "scrollDirection", "none"),
			"scroll_speed":     anyOr(scroll, "scrollSpeed", 0),
			"is_paused":        anyOr(scroll, "isPaused", false),
			"pause_duration":   anyOr(scroll, "pauseDuration", 0),
			"visible_sections": anyOr(scroll, "visibleSections", []any{}),
			"focused_section":  scroll["focusedSection"],
		},
	})
}

// SaveReadingInsights 保存阅读洞察，不关联会话.
func (bs *BehaviorService) SaveReadingInsights(ctx context.Context, userID, documentID string, insights map[string]any) (*types.RecordBehaviorResponse, error) {
	return bs.record(ctx, recordInput{
		behaviorType:  model.BehaviorReadingInsightsGenerated,
		userID:        userID,
		targetType:    "document",
		targetID:      documentID,
		actionDetails: insights,
		metadata: map[string]any{
			"dominant_reading_mode":     insights["dominantReadingMode"],
			"reading_mode_distribution": anyOr(insights, "readingModeDistribution", map[string]any{}),
			"personalized_tips":         anyOr(insights, "personalizedTips", []any{}),
			"recommended_reading_time":  anyOr(insights, "recommendedReadingTime", 0),
			"difficulty_assessment":     insights["difficultyAssessment"],
			"avg_completion_time":       insights["avgCompletionTime"],
			"user_rank":                 insights["userRank"],
			"generated_at":              insights["generatedAt"],
		},
	})
}

// SaveCompleteProgress 按组件保存完整阅读进度，最后写一条汇总标记.
// 任一组件失败即停止，已保存的组件照常返回.
func (bs *BehaviorService) SaveCompleteProgress(ctx context.Context, req *types.SaveProgressRequest) *types.SaveProgressResponse {
	resp := &types.SaveProgressResponse{
		Success:         true,
		SavedComponents: []types.SavedComponent{},
	}
	fail := func(err error) *types.SaveProgressResponse {
		resp.Success = false
		resp.Message = "阅读进度保存失败"
		resp.Errors = append(resp.Errors, err.Error())
		return resp
	}

	if req.OverallProgress != nil {
		result, err := bs.SaveReadingProgress(ctx, req.UserID, req.DocumentID, req.SessionID, req.OverallProgress)
		if err != nil {
			return fail(err)
		}
		resp.SavedComponents = append(resp.SavedComponents, types.SavedComponent{Type: "overall_progress", Result: result})
	}

	if len(req.SectionProgress) > 0 {
		results, err := bs.SaveSectionProgress(ctx, req.UserID, req.DocumentID, req.SessionID, req.SectionProgress)
		if err != nil {
			return fail(err)
		}
		resp.SavedComponents = append(resp.SavedComponents, types.SavedComponent{Type: "section_progress", Count: len(results), Results: results})
	}

	if len(req.ScrollBehavior) > 0 {
		result, err := bs.SaveScrollBehavior(ctx, req.UserID, req.DocumentID, req.SessionID, req.ScrollBehavior)
		if err != nil {
			return fail(err)
		}
		resp.SavedComponents = append(resp.SavedComponents, types.SavedComponent{Type: "scroll_behavior", Result: result})
	}

	if len(req.Insights) > 0 {
		result, err := bs.SaveReadingInsights(ctx, req.UserID, req.DocumentID, req.Insights)
		if err != nil {
			return fail(err)
		}
		resp.SavedComponents = append(resp.SavedComponents, types.SavedComponent{Type: "insights", Result: result})
	}

	saveType := req.SaveType
	if saveType == "" {
		saveType = "auto"
	}
	_, err := bs.record(ctx, recordInput{
		behaviorType: progressSaveMarker,
		userID:       req.UserID,
		sessionID:    req.SessionID,
		targetType:   "document",
		targetID:     req.DocumentID,
		metadata: map[string]any{
			"save_type":        saveType,
			"timestamp":        nullableStr(req.Timestamp),
			"client_version":   nullableStr(req.ClientVersion),
			"components_saved": len(resp.SavedComponents),
		},
	})
	if err != nil {
		return fail(err)
	}

	resp.Message = "阅读进度保存成功"
	return resp
}

// LoadReadingProgress 聚合某文档的阅读进度视图：最新整体进度、章节进度、
// 最后会话、洞察与近期阅读历史汇总.
func (bs *BehaviorService) LoadReadingProgress(ctx context.Context, userID, documentID string) (*types.ReadingProgressData, error) {
	overall, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorReadingProgressUpdate),
		targetType:   "document",
		targetID:     documentID,
	}, 1, 0)
	if err != nil {
		return nil, err
	}

	// 章节进度不按文档过滤，取最近 50 条
	sections, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorSectionProgressUpdate),
		targetType:   "section",
	}, 50, 0)
	if err != nil {
		return nil, err
	}

	lastSession, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorReadingSessionStart),
		targetType:   "document",
		targetID:     documentID,
	}, 1, 0)
	if err != nil {
		return nil, err
	}

	insights, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorReadingInsightsGenerated),
		targetType:   "document",
		targetID:     documentID,
	}, 1, 0)
	if err != nil {
		return nil, err
	}

	history, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorReadingProgressUpdate),
	}, 100, 0)
	if err != nil {
		return nil, err
	}

	data := &types.ReadingProgressData{
		SectionProgress: make([]map[string]any, 0, len(sections)),
	}
	for _, s := range sections {
		data.SectionProgress = append(data.SectionProgress, s.ActionDetails)
	}

	sessionIDs := make(map[string]struct{})
	var totalReadingTime float64
	for _, h := range history {
		if sid := strField(h.Metadata, "session_id"); sid != "" {
			sessionIDs[sid] = struct{}{}
		}
		totalReadingTime += numField(h.Metadata, "total_reading_time")
	}
	data.ReadingHistory = types.ReadingHistory{
		TotalSessions:    len(sessionIDs),
		TotalReadingTime: totalReadingTime,
	}

	if len(overall) > 0 {
		first := overall[0]
		data.OverallProgress = first.ActionDetails
		data.ReadingHistory.LastReadTime = first.CreatedAt
		completed, _ := first.Metadata["is_completed"].(bool)
		data.ShouldResume = !completed
		data.ResumePosition = numField(first.Metadata, "last_scroll_position")
	}
	if len(lastSession) > 0 {
		data.LastSession = lastSession[0].ActionDetails
	}
	if len(insights) > 0 {
		data.Insights = insights[0].ActionDetails
	}

	return data, nil
}

// ActiveSessions 列出仍未结束的阅读会话：最近的会话开始记录中，
// 没有同会话结束记录的即视为活跃.
func (bs *BehaviorService) ActiveSessions(ctx context.Context, userID string) (*types.ActiveSessionsResponse, error) {
	recent, err := bs.listBehaviors(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: string(model.BehaviorReadingSessionStart),
	}, 10, 0)
	if err != nil {
		return nil, err
	}

	active := make([]map[string]any, 0, len(recent))
	for _, b := range recent {
		sessionID := strField(b.Metadata, "session_id")
		if sessionID == "" {
			continue
		}

		ends, err := bs.listBehaviors(ctx, behaviorFilter{
			userID:       userID,
			sessionID:    sessionID,
			behaviorType: string(model.BehaviorReadingSessionEnd),
		}, 1, 0)
		if err != nil {
			return nil, err
		}
		if len(ends) > 0 {
			continue
		}

		session := make(map[string]any, len(b.ActionDetails)+2)
		for k, v := range b.ActionDetails {
			session[k] = v
		}
		session["behavior_id"] = b.ID
		session["started_at"] = b.CreatedAt
		active = append(active, session)
	}

	return &types.ActiveSessionsResponse{
		UserID:         userID,
		ActiveSessions: active,
		Count:          len(active),
	}, nil
}

// CleanupStaleSessions 把超过时长上限的活跃会话补记结束，退出原因为
// timeout_cleanup. 起始时间认不出的会话跳过.
func (bs *BehaviorService) CleanupStaleSessions(ctx context.Context, userID string, maxDurationHours int) (*types.CleanupSessionsResponse, error) {
	activeResp, err := bs.ActiveSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxDuration := time.Duration(maxDurationHours) * time.Hour
	now := time.Now().UTC()
	cleaned := 0

	for _, session := range activeResp.ActiveSessions {
		startedAt, err := time.Parse(time.RFC3339, strField(session, "started_at"))
		if err != nil {
			continue
		}
		if now.Sub(startedAt) <= maxDuration {
			continue
		}

		cleanupData := map[string]any{
			"id":          session["id"],
			"sessionEnd":  now.Format(time.RFC3339),
			"isActive":    false,
			"totalTime":   now.Sub(startedAt).Milliseconds(),
			"isCompleted": false,
			"exitReason":  "timeout_cleanup",
		}
		if _, err := bs.SaveReadingSession(ctx, userID, strField(session, "documentId"), cleanupData, "end"); err != nil {
			return nil, err
		}
		cleaned++
	}

	return &types.CleanupSessionsResponse{
		UserID:           userID,
		CleanedSessions:  cleaned,
		RemainingActive:  len(activeResp.ActiveSessions) - cleaned,
		MaxDurationHours: maxDurationHours,
	}, nil
}

// ReadingAnalytics 统计时间窗口内的阅读习惯：会话数、文档数、
// 设备与阅读模式分布.
func (bs *BehaviorService) ReadingAnalytics(ctx context.Context, userID string, days int) (*types.ReadingAnalyticsResponse, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	behaviors, err := bs.listBehaviors(ctx, behaviorFilter{
		userID: userID,
		start:  &start,
		end:    &end,
	}, 1000, 0)
	if err != nil {
		return nil, err
	}

	readingTypes := map[string]struct{}{
		string(model.BehaviorReadingSessionStart):   {},
		string(model.BehaviorReadingSessionEnd):     {},
		string(model.BehaviorReadingProgressUpdate): {},
	}

	stats := types.ReadingAnalyticsStats{
		DeviceDistribution:      map[string]int64{},
		ReadingModeDistribution: map[string]int64{},
	}
	documents := make(map[string]struct{})

	for _, b := range behaviors {
		if _, ok := readingTypes[b.BehaviorType]; !ok {
			continue
		}

		if b.BehaviorType == string(model.BehaviorReadingSessionStart) {
			stats.TotalSessions++
		}
		if b.TargetID != "" {
			documents[b.TargetID] = struct{}{}
		}

		device := mapOr(b.Metadata, "device")
		isMobile, ok := device["isMobile"].(bool)
		if !ok {
			isMobile, _ = device["is_mobile"].(bool)
		}
		deviceType := "desktop"
		if isMobile {
			deviceType = "mobile"
		}
		stats.DeviceDistribution[deviceType]++

		mode := strOr(mapOr(b.Metadata, "current_behavior"), "reading_mode", "normal")
		stats.ReadingModeDistribution[mode]++
	}

	stats.TotalDocumentsRead = len(documents)
	stats.AvgSessionsPerDay = math.Round(float64(stats.TotalSessions)/float64(days)*100) / 100

	return &types.ReadingAnalyticsResponse{
		UserID:       userID,
		Period:       statPeriod(start, end, days),
		Statistics:   stats,
		RawDataCount: len(behaviors),
	}, nil
}

// anyOr 取任意类型字段，键缺失时用默认值. 与前端约定对齐：
// 键存在但值为 null 时保留 null.
func anyOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
