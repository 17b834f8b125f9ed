package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/storage/db"
	"github.com/yeisme/objectvault/pkg/internal/types"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// mockUserID 未带用户身份的请求落到的占位用户.
const mockUserID = "cmdu8uetk007dvjcsfjnqg2wd"

// replyPreviewCount 评论列表中每条主评论预载的回复条数.
const replyPreviewCount = 3

// maxCommentRunes 评论内容长度上限（按字符计）.
const maxCommentRunes = 1000

// InteractionService 点赞与评论服务. 点赞切换与计数更新在单个事务内完成，
// 避免并发切换丢失更新.
type InteractionService struct {
	dbClient *db.Client
}

func NewInteractionService(c context.Context) *InteractionService {
	return &InteractionService{
		dbClient: ctxPkg.GetDBClient(c),
	}
}

// likeCountRow 点赞目标的当前计数投影.
type likeCountRow struct {
	ID        string `gorm:"column:id"`
	LikeCount int    `gorm:"column:likeCount"`
}

// ToggleNewsletterLike 切换文章点赞状态，已点赞则取消，未点赞则添加.
func (is *InteractionService) ToggleNewsletterLike(ctx context.Context, newsletterID, userID string) (*types.LikeResponse, error) {
	isLiked, count, userID, err := is.toggleLike(ctx, model.TargetTypeNewsletter, newsletterID, userID)
	if err != nil {
		return nil, err
	}

	return &types.LikeResponse{
		Success:      true,
		NewsletterID: newsletterID,
		IsLiked:      isLiked,
		LikeCount:    count,
		UserID:       userID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ToggleCommentLike 切换评论点赞状态.
func (is *InteractionService) ToggleCommentLike(ctx context.Context, commentID, userID string) (*types.LikeResponse, error) {
	isLiked, count, userID, err := is.toggleLike(ctx, model.TargetTypeComment, commentID, userID)
	if err != nil {
		return nil, err
	}

	return &types.LikeResponse{
		Success:   true,
		CommentID: commentID,
		IsLiked:   isLiked,
		LikeCount: count,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// toggleLike 点赞切换核心逻辑：检查目标存在，按现有点赞记录决定插入或删除，
// 并同步目标表计数（减到 0 为止）.
func (is *InteractionService) toggleLike(ctx context.Context, targetType, targetID, userID string) (isLiked bool, newCount int, uid string, err error) {
	if userID == "" {
		userID = mockUserID
	}

	var tableName string
	switch targetType {
	case model.TargetTypeNewsletter:
		tableName = model.Newsletter{}.TableName()
	case model.TargetTypeComment:
		tableName = model.Comment{}.TableName()
	default:
		return false, 0, userID, validationErr("unsupported like target type: %s", targetType)
	}

	err = is.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target likeCountRow
		ferr := tx.Table(tableName).Select(`id, "likeCount"`).Where("id = ?", targetID).Take(&target).Error
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return notFoundErr("%s not found: %s", strings.ToLower(targetType), targetID)
		}
		if ferr != nil {
			return fmt.Errorf("load like target: %w", ferr)
		}

		var existing model.Like
		ferr = tx.Where(`"userId" = ? AND "targetId" = ? AND "targetType" = ?`, userID, targetID, targetType).
			Take(&existing).Error

		switch {
		case ferr == nil:
			if derr := tx.Delete(&model.Like{}, "id = ?", existing.ID).Error; derr != nil {
				return fmt.Errorf("delete like: %w", derr)
			}

			clamp := gorm.Expr(`CASE WHEN "likeCount" > 0 THEN "likeCount" - 1 ELSE 0 END`)
			if uerr := tx.Table(tableName).Where("id = ?", targetID).UpdateColumn("likeCount", clamp).Error; uerr != nil {
				return fmt.Errorf("decrement like count: %w", uerr)
			}

			isLiked = false
			newCount = max(target.LikeCount-1, 0)
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			like := model.Like{
				ID:         uuid.NewString(),
				UserID:     userID,
				TargetID:   targetID,
				TargetType: targetType,
				CreatedAt:  time.Now().UTC(),
			}
			if cerr := tx.Create(&like).Error; cerr != nil {
				return fmt.Errorf("create like: %w", cerr)
			}

			if uerr := tx.Table(tableName).Where("id = ?", targetID).
				UpdateColumn("likeCount", gorm.Expr(`"likeCount" + 1`)).Error; uerr != nil {
				return fmt.Errorf("increment like count: %w", uerr)
			}

			isLiked = true
			newCount = target.LikeCount + 1
		default:
			return fmt.Errorf("load like record: %w", ferr)
		}

		return nil
	})
	if err != nil {
		return false, 0, userID, err
	}

	nlog.Logger().Info().
		Str("user_id", userID).
		Str("target_type", targetType).
		Str("target_id", targetID).
		Bool("liked", isLiked).
		Msg("like toggled")

	return isLiked, newCount, userID, nil
}

// ListComments 获取文章的主评论列表，按时间或热度排序，每条预载前 3 条回复.
func (is *InteractionService) ListComments(ctx context.Context, newsletterID string, req *types.CommentListRequest) (*types.CommentListResponse, error) {
	gdb := is.dbClient.GetDB().WithContext(ctx)
	offset := (req.Page - 1) * req.PageSize

	orderBy := `"createdAt" DESC`
	if req.SortBy == "popular" {
		orderBy = `"likeCount" DESC, "createdAt" DESC`
	}

	base := gdb.Model(&model.Comment{}).
		Where(`"targetId" = ? AND "targetType" = ? AND "parentId" IS NULL AND status = ?`,
			newsletterID, model.TargetTypeNewsletter, model.CommentStatusPublished)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	var comments []model.Comment
	if err := base.Session(&gorm.Session{}).
		Order(orderBy).Limit(req.PageSize).Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	replyMap := make(map[string][]model.Comment, len(comments))
	replyCounts := make(map[string]int, len(comments))
	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)

		var replyCount int64
		if err := gdb.Model(&model.Comment{}).Where(`"parentId" = ?`, c.ID).Count(&replyCount).Error; err != nil {
			return nil, fmt.Errorf("count replies: %w", err)
		}

		if replyCount > 0 {
			var replies []model.Comment
			if err := gdb.Where(`"parentId" = ? AND status = ?`, c.ID, model.CommentStatusPublished).
				Order(`"createdAt" ASC`).Limit(replyPreviewCount).
				Find(&replies).Error; err != nil {
				return nil, fmt.Errorf("load replies: %w", err)
			}

			replyMap[c.ID] = replies
			for _, r := range replies {
				userIDs = append(userIDs, r.UserID)
			}
		}

		replyCounts[c.ID] = int(replyCount)
	}

	authors, err := is.loadAuthors(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	items := make([]types.CommentItem, 0, len(comments))
	for _, c := range comments {
		item := types.CommentItem{
			ID:         c.ID,
			Content:    c.Content,
			UserID:     c.UserID,
			ParentID:   c.ParentID,
			LikeCount:  c.LikeCount,
			ReplyCount: replyCounts[c.ID],
			Status:     c.Status,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
			Author:     authorFor(authors, c.UserID),
			Replies:    []types.CommentReply{},
		}

		for _, r := range replyMap[c.ID] {
			item.Replies = append(item.Replies, types.CommentReply{
				ID:        r.ID,
				Content:   r.Content,
				UserID:    r.UserID,
				ParentID:  r.ParentID,
				LikeCount: r.LikeCount,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
				Author:    authorFor(authors, r.UserID),
			})
		}

		items = append(items, item)
	}

	return &types.CommentListResponse{
		Success:  true,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasNext:  int64(offset+req.PageSize) < total,
		Comments: items,
	}, nil
}

// loadAuthors 批量查询评论作者，返回以用户 ID 为键的映射.
func (is *InteractionService) loadAuthors(ctx context.Context, userIDs []string) (map[string]model.User, error) {
	users := make(map[string]model.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	var rows []model.User
	if err := is.dbClient.GetDB().WithContext(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}

	for _, u := range rows {
		users[u.ID] = u
	}

	return users, nil
}

// authorFor 构造作者视图，用户不存在时返回匿名占位.
func authorFor(users map[string]model.User, userID string) types.CommentAuthor {
	author := types.CommentAuthor{ID: userID, Name: "Anonymous"}

	user, ok := users[userID]
	if !ok {
		return author
	}

	if user.Name != "" {
		author.Name = user.Name
	}
	if user.Email != "" {
		author.Email = &user.Email
	}
	if user.Avatar != "" {
		author.Avatar = &user.Avatar
	}

	return author
}

// CreateComment 发表评论或回复. 仅主评论会累加文章的评论计数.
func (is *InteractionService) CreateComment(ctx context.Context, newsletterID string, req *types.CommentCreateRequest) (*types.CommentCreateResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = mockUserID
	}

	content := req.Content
	if strings.TrimSpace(content) == "" {
		return nil, validationErr("评论内容不能为空")
	}
	if utf8.RuneCountInString(content) > maxCommentRunes {
		return nil, validationErr("评论内容不能超过%d字", maxCommentRunes)
	}

	now := time.Now().UTC()
	comment := model.Comment{
		ID:         uuid.NewString(),
		Content:    content,
		UserID:     userID,
		TargetID:   newsletterID,
		TargetType: model.TargetTypeNewsletter,
		ParentID:   req.ParentID,
		LikeCount:  0,
		Status:     model.CommentStatusPublished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := is.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var nl model.Newsletter
		if ferr := tx.Select("id").Where("id = ?", newsletterID).Take(&nl).Error; ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return notFoundErr("newsletter not found: %s", newsletterID)
			}

			return fmt.Errorf("load newsletter: %w", ferr)
		}

		if req.ParentID != nil && *req.ParentID != "" {
			var parent model.Comment
			if ferr := tx.Select("id").Where("id = ?", *req.ParentID).Take(&parent).Error; ferr != nil {
				if errors.Is(ferr, gorm.ErrRecordNotFound) {
					return notFoundErr("parent comment not found: %s", *req.ParentID)
				}

				return fmt.Errorf("load parent comment: %w", ferr)
			}
		}

		if cerr := tx.Create(&comment).Error; cerr != nil {
			return fmt.Errorf("create comment: %w", cerr)
		}

		if req.ParentID == nil || *req.ParentID == "" {
			if uerr := tx.Model(&model.Newsletter{}).Where("id = ?", newsletterID).
				UpdateColumn("commentCount", gorm.Expr(`"commentCount" + 1`)).Error; uerr != nil {
				return fmt.Errorf("increment comment count: %w", uerr)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	nlog.Logger().Info().
		Str("user_id", userID).
		Str("newsletter_id", newsletterID).
		Str("comment_id", comment.ID).
		Msg("comment created")

	authors, err := is.loadAuthors(ctx, []string{userID})
	if err != nil {
		return nil, err
	}

	item := types.CommentItem{
		ID:         comment.ID,
		Content:    comment.Content,
		UserID:     comment.UserID,
		ParentID:   comment.ParentID,
		LikeCount:  0,
		ReplyCount: 0,
		Status:     comment.Status,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
		Author:     authorFor(authors, userID),
		Replies:    []types.CommentReply{},
	}

	return &types.CommentCreateResponse{
		Success: true,
		Data:    &item,
		Message: "评论发表成功",
	}, nil
}

// DeleteComment 软删除评论：状态置为 DELETED，行保留.
func (is *InteractionService) DeleteComment(ctx context.Context, commentID string) (*types.CommentDeleteResponse, error) {
	result := is.dbClient.GetDB().WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]any{
			"status":    model.CommentStatusDeleted,
			"updatedAt": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("delete comment %s: %w", commentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, notFoundErr("评论不存在: %s", commentID)
	}

	return &types.CommentDeleteResponse{
		Success: true,
		Message: "评论已删除",
	}, nil
}

// ListReplies 获取某条评论的全部回复，按时间正序分页.
func (is *InteractionService) ListReplies(ctx context.Context, commentID string, req *types.CommentRepliesRequest) (*types.CommentRepliesResponse, error) {
	gdb := is.dbClient.GetDB().WithContext(ctx)
	offset := (req.Page - 1) * req.PageSize

	base := gdb.Model(&model.Comment{}).
		Where(`"parentId" = ? AND status = ?`, commentID, model.CommentStatusPublished)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}

	var replies []model.Comment
	if err := base.Session(&gorm.Session{}).
		Order(`"createdAt" ASC`).Limit(req.PageSize).Offset(offset).
		Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	userIDs := make([]string, 0, len(replies))
	for _, r := range replies {
		userIDs = append(userIDs, r.UserID)
	}

	authors, err := is.loadAuthors(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	list := make([]types.CommentReply, 0, len(replies))
	for _, r := range replies {
		list = append(list, types.CommentReply{
			ID:        r.ID,
			Content:   r.Content,
			UserID:    r.UserID,
			ParentID:  r.ParentID,
			LikeCount: r.LikeCount,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			Author:    authorFor(authors, r.UserID),
		})
	}

	return &types.CommentRepliesResponse{
		Success:  true,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Replies:  list,
	}, nil
}
