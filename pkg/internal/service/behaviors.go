package service

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/oklog/ulid"
	"gorm.io/gorm"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/storage/db"
	"github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/types"
	nlog "github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/queue"
)

// BehaviorService 用户行为流水服务. 行为只追加不更新，session_id、IP、UA
// 等请求上下文统一合并进 metadata JSON 信封后入库.
type BehaviorService struct {
	dbClient *db.Client
	mqClient *mq.Client
}

func NewBehaviorService(c context.Context) *BehaviorService {
	return &BehaviorService{
		dbClient: ctxPkg.GetDBClient(c),
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// NewSessionID 生成可按时间排序的会话标识.
func NewSessionID() string {
	return ulid.MustNew(ulid.Now(), crand.Reader).String()
}

// recordInput 单条行为写入参数，内部各阅读方法直接构造，跳过枚举校验.
type recordInput struct {
	behaviorType  model.BehaviorType
	userID        string
	sessionID     string
	targetType    string
	targetID      string
	actionDetails map[string]any
	metadata      map[string]any
	client        types.ClientInfo
}

// behaviorFilter 行为查询过滤条件，零值字段不参与过滤.
type behaviorFilter struct {
	userID       string
	sessionID    string
	behaviorType string
	targetType   string
	targetID     string
	start        *time.Time
	end          *time.Time
}

// RecordBehavior 记录一条用户行为. 行为类型必须在枚举内，调用方负责补齐
// session_id（请求体、X-Session-ID 头或随机生成）.
func (bs *BehaviorService) RecordBehavior(ctx context.Context, req *types.RecordBehaviorRequest, client types.ClientInfo) (*types.RecordBehaviorResponse, error) {
	if !model.BehaviorType(req.BehaviorType).Valid() {
		return nil, validationErr("无效的行为类型: %s", req.BehaviorType)
	}

	return bs.record(ctx, recordInput{
		behaviorType:  model.BehaviorType(req.BehaviorType),
		userID:        req.UserID,
		sessionID:     req.SessionID,
		targetType:    req.TargetType,
		targetID:      req.TargetID,
		actionDetails: req.ActionDetails,
		metadata:      req.Metadata,
		client:        client,
	})
}

// BatchRecord 批量记录行为，逐条处理，单条失败不影响其余.
func (bs *BehaviorService) BatchRecord(ctx context.Context, reqs []types.RecordBehaviorRequest, client types.ClientInfo) *types.BatchRecordResponse {
	resp := &types.BatchRecordResponse{
		Total:   len(reqs),
		Results: make([]types.RecordBehaviorResponse, 0, len(reqs)),
	}

	for i := range reqs {
		req := reqs[i]
		if req.SessionID == "" {
			req.SessionID = NewSessionID()
		}

		result, err := bs.RecordBehavior(ctx, &req, client)
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, types.RecordBehaviorResponse{Error: err.Error()})
			continue
		}
		resp.Success++
		resp.Results = append(resp.Results, *result)
	}

	return resp
}

// record 组装 metadata 信封并入库. 请求上下文键始终写入信封，
// 与调用方 metadata 冲突时覆盖之.
func (bs *BehaviorService) record(ctx context.Context, in recordInput) (*types.RecordBehaviorResponse, error) {
	envelope := make(map[string]any, len(in.metadata)+5)
	for k, v := range in.metadata {
		envelope[k] = v
	}
	envelope["session_id"] = nullableStr(in.sessionID)
	envelope["ip_address"] = nullableStr(in.client.IPAddress)
	envelope["user_agent"] = nullableStr(in.client.UserAgent)
	envelope["referer"] = nullableStr(in.client.Referer)
	if in.actionDetails != nil {
		envelope["action_details"] = in.actionDetails
	} else {
		envelope["action_details"] = nil
	}

	envelopeJSON, err := sonic.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal behavior metadata: %w", err)
	}

	var userID *string
	if in.userID != "" {
		userID = &in.userID
	}

	behavior := model.UserBehavior{
		ID:           uuid.NewString(),
		UserID:       userID,
		Action:       string(in.behaviorType),
		TargetType:   in.targetType,
		TargetID:     in.targetID,
		MetadataJSON: string(envelopeJSON),
		CreatedAt:    time.Now().UTC(),
	}

	if err := bs.dbClient.GetDB().WithContext(ctx).Create(&behavior).Error; err != nil {
		return nil, fmt.Errorf("record behavior: %w", err)
	}

	nlog.Logger().Info().
		Str("type", behavior.Action).
		Str("user", in.userID).
		Str("target", in.targetType+":"+in.targetID).
		Msg("behavior recorded")

	bs.publishRecorded(behavior)

	return &types.RecordBehaviorResponse{
		Success:    true,
		BehaviorID: behavior.ID,
		CreatedAt:  behavior.CreatedAt.Format(time.RFC3339),
	}, nil
}

// publishRecorded 发布行为落库事件，默认关闭.
func (bs *BehaviorService) publishRecorded(behavior model.UserBehavior) {
	cfg := configs.GetConfig()

	pub := bs.mqClient.Publisher()
	if pub == nil || !cfg.Events.Enabled || !cfg.Events.Behavior.Recorded {
		return
	}

	payload := queue.BehaviorRecordedPayload{
		BehaviorID: behavior.ID,
		Action:     behavior.Action,
		TargetType: behavior.TargetType,
		TargetID:   behavior.TargetID,
	}
	if behavior.UserID != nil {
		payload.UserID = *behavior.UserID
	}
	if err := queue.PublishBehaviorRecorded(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
		nlog.Logger().Warn().Err(err).Str("behavior", behavior.ID).Msg("publish behavior recorded event failed")
	}
}

// QueryBehaviors 按条件分页查询行为记录，时间倒序.
// 日期参数为 YYYY-MM-DD，结束日期含当日.
func (bs *BehaviorService) QueryBehaviors(ctx context.Context, req *types.BehaviorQueryRequest) (*types.BehaviorQueryResponse, error) {
	filter := behaviorFilter{
		userID:       req.UserID,
		sessionID:    req.SessionID,
		behaviorType: req.BehaviorType,
		targetType:   req.TargetType,
		targetID:     req.TargetID,
	}

	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, validationErr("无效的开始日期: %s", req.StartDate)
		}
		filter.start = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, validationErr("无效的结束日期: %s", req.EndDate)
		}
		// 含当日
		end = end.Add(24 * time.Hour)
		filter.end = &end
	}

	behaviors, err := bs.listBehaviors(ctx, filter, req.Size, (req.Page-1)*req.Size)
	if err != nil {
		return nil, err
	}

	return &types.BehaviorQueryResponse{
		Behaviors: behaviors,
		Total:     len(behaviors),
		Page:      req.Page,
		Size:      req.Size,
	}, nil
}

// Statistics 统计时间窗口内的行为分布.
func (bs *BehaviorService) Statistics(ctx context.Context, userID, behaviorType string, days int) (*types.BehaviorStatisticsResponse, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	stats, err := bs.behaviorStatistics(ctx, behaviorFilter{
		userID:       userID,
		behaviorType: behaviorType,
		start:        &start,
		end:          &end,
	})
	if err != nil {
		return nil, err
	}

	return &types.BehaviorStatisticsResponse{
		BehaviorStatistics: stats,
		Period:             statPeriod(start, end, days),
	}, nil
}

// PopularTargets 按目标类型聚合访问热度，按访问次数倒序.
func (bs *BehaviorService) PopularTargets(ctx context.Context, targetType, behaviorType string, limit, days int) (*types.PopularTargetsResponse, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	q := bs.applyFilter(ctx, behaviorFilter{
		targetType:   targetType,
		behaviorType: behaviorType,
		start:        &start,
		end:          &end,
	})

	var rows []popularTargetRow
	err := q.Select(`"targetId", COUNT(*) AS "accessCount", COUNT(DISTINCT "userId") AS "uniqueUsers", MAX("createdAt") AS "lastAccessed"`).
		Group(`targetId`).
		Order(`"accessCount" DESC`).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate popular targets: %w", err)
	}

	targets := make([]types.PopularTarget, 0, len(rows))
	for _, r := range rows {
		targets = append(targets, types.PopularTarget{
			TargetID:     r.TargetID,
			AccessCount:  r.AccessCount,
			UniqueUsers:  r.UniqueUsers,
			LastAccessed: normalizeTimestamp(r.LastAccessed),
		})
	}

	return &types.PopularTargetsResponse{
		TargetType: targetType,
		Targets:    targets,
		Period:     statPeriod(start, end, days),
	}, nil
}

// UserTimeline 用户行为时间线，行为列表带同窗口的用户统计.
func (bs *BehaviorService) UserTimeline(ctx context.Context, userID string, days, page, size int) (*types.UserTimelineResponse, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	filter := behaviorFilter{userID: userID, start: &start, end: &end}

	behaviors, err := bs.listBehaviors(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	stats, err := bs.behaviorStatistics(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &types.UserTimelineResponse{
		UserID:     userID,
		Timeline:   behaviors,
		Statistics: stats,
		Period:     statPeriod(start, end, days),
		Pagination: types.PageMeta{Page: page, Size: size, Total: len(behaviors)},
	}, nil
}

// CleanupBehaviors 清理过期行为记录. dry_run 只统计不删除.
func (bs *BehaviorService) CleanupBehaviors(ctx context.Context, days int, dryRun bool) (*types.CleanupBehaviorsResponse, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	gdb := bs.dbClient.GetDB().WithContext(ctx)

	var matched int64
	if err := gdb.Model(&model.UserBehavior{}).Where(`"createdAt" < ?`, cutoff).Count(&matched).Error; err != nil {
		return nil, fmt.Errorf("count expired behaviors: %w", err)
	}

	resp := &types.CleanupBehaviorsResponse{
		Message: fmt.Sprintf("将要删除%d天前的行为记录", days),
		DryRun:  dryRun,
		Days:    days,
		Matched: matched,
	}
	if dryRun {
		return resp, nil
	}

	result := gdb.Where(`"createdAt" < ?`, cutoff).Delete(&model.UserBehavior{})
	if result.Error != nil {
		return nil, fmt.Errorf("delete expired behaviors: %w", result.Error)
	}

	resp.Message = fmt.Sprintf("已删除%d天前的行为记录", days)
	resp.Deleted = result.RowsAffected
	nlog.Logger().Info().Int("days", days).Int64("deleted", result.RowsAffected).Msg("expired behaviors cleaned")
	return resp, nil
}

// applyFilter 把过滤条件拼到查询上. session_id 按 metadata 信封过滤.
func (bs *BehaviorService) applyFilter(ctx context.Context, f behaviorFilter) *gorm.DB {
	q := bs.dbClient.GetDB().WithContext(ctx).Model(&model.UserBehavior{})

	if f.userID != "" {
		q = q.Where(`"userId" = ?`, f.userID)
	}
	if f.sessionID != "" {
		q = q.Where(`metadata->>'session_id' = ?`, f.sessionID)
	}
	if f.behaviorType != "" {
		q = q.Where("action = ?", f.behaviorType)
	}
	if f.targetType != "" {
		q = q.Where(`"targetType" = ?`, f.targetType)
	}
	if f.targetID != "" {
		q = q.Where(`"targetId" = ?`, f.targetID)
	}
	if f.start != nil {
		q = q.Where(`"createdAt" >= ?`, *f.start)
	}
	if f.end != nil {
		q = q.Where(`"createdAt" <= ?`, *f.end)
	}
	return q
}

// listBehaviors 过滤分页查询，时间倒序返回.
func (bs *BehaviorService) listBehaviors(ctx context.Context, f behaviorFilter, limit, offset int) ([]types.BehaviorRecord, error) {
	var rows []model.UserBehavior
	err := bs.applyFilter(ctx, f).
		Order(`"createdAt" DESC`).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query behaviors: %w", err)
	}

	records := make([]types.BehaviorRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, behaviorToRecord(row))
	}
	return records, nil
}

// behaviorStatistics 同一组过滤条件下的总量、去重用户数、去重会话数
// 与按行为类型的计数.
func (bs *BehaviorService) behaviorStatistics(ctx context.Context, f behaviorFilter) (types.BehaviorStatistics, error) {
	stats := types.BehaviorStatistics{BehaviorCounts: map[string]int64{}}
	base := bs.applyFilter(ctx, f)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalBehaviors).Error; err != nil {
		return stats, fmt.Errorf("count behaviors: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Distinct(`userId`).Count(&stats.UniqueUsers).Error; err != nil {
		return stats, fmt.Errorf("count unique users: %w", err)
	}
	if err := base.Session(&gorm.Session{}).Select(`count(DISTINCT metadata->>'session_id')`).Count(&stats.UniqueSessions).Error; err != nil {
		return stats, fmt.Errorf("count unique sessions: %w", err)
	}

	var rows []actionCountRow
	err := base.Session(&gorm.Session{}).
		Select(`action, COUNT(*) AS count`).
		Group("action").
		Order("count DESC").
		Find(&rows).Error
	if err != nil {
		return stats, fmt.Errorf("count behaviors by action: %w", err)
	}
	for _, r := range rows {
		stats.BehaviorCounts[r.Action] = r.Count
	}

	return stats, nil
}

type actionCountRow struct {
	Action string `gorm:"column:action"`
	Count  int64  `gorm:"column:count"`
}

type popularTargetRow struct {
	TargetID     string `gorm:"column:targetId"`
	AccessCount  int64  `gorm:"column:accessCount"`
	UniqueUsers  int64  `gorm:"column:uniqueUsers"`
	LastAccessed string `gorm:"column:lastAccessed"`
}

// behaviorToRecord 把行号映射成对外记录，action_details 从信封提出，
// 信封解析失败时降级为空对象.
func behaviorToRecord(b model.UserBehavior) types.BehaviorRecord {
	envelope := decodeEnvelope(b.MetadataJSON)

	return types.BehaviorRecord{
		ID:            b.ID,
		UserID:        b.UserID,
		BehaviorType:  b.Action,
		TargetType:    b.TargetType,
		TargetID:      b.TargetID,
		Metadata:      envelope,
		ActionDetails: mapOr(envelope, "action_details"),
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// decodeEnvelope 解析 metadata JSON 信封，空串或坏数据一律给空对象.
func decodeEnvelope(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var envelope map[string]any
	if err := sonic.Unmarshal([]byte(raw), &envelope); err != nil || envelope == nil {
		return map[string]any{}
	}
	return envelope
}

func statPeriod(start, end time.Time, days int) types.StatPeriod {
	return types.StatPeriod{
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
		Days:  days,
	}
}

// nullableStr 空串以 null 形式写入 JSON 信封.
func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeTimestamp 聚合查询扫出的时间戳统一成 RFC3339，认不出的原样返回.
func normalizeTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05.999999999Z07:00"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}
