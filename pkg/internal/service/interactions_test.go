package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// seedNewsletter 插入一条已发布文章供交互测试使用.
func seedNewsletter(t *testing.T, gdb *gorm.DB, id string) {
	t.Helper()

	nl := model.Newsletter{
		ID:           id,
		Title:        "Go Concurrency Patterns",
		Category:     "technical",
		Status:       model.NewsletterStatusPublished,
		MetadataJSON: "{}",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := gdb.Create(&nl).Error; err != nil {
		t.Fatalf("seed newsletter: %v", err)
	}
}

// TestToggleNewsletterLike 测试文章点赞的开关切换与计数同步.
func TestToggleNewsletterLike(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	resp, err := is.ToggleNewsletterLike(ctx, "nl-1", "user-1")
	if err != nil {
		t.Fatalf("toggle like on: %v", err)
	}
	if !resp.IsLiked || resp.LikeCount != 1 || resp.UserID != "user-1" {
		t.Errorf("first toggle = %+v", resp)
	}

	var nl model.Newsletter
	if err := gdb.First(&nl, "id = ?", "nl-1").Error; err != nil {
		t.Fatalf("load newsletter: %v", err)
	}
	if nl.LikeCount != 1 {
		t.Errorf("stored likeCount = %d, want 1", nl.LikeCount)
	}

	resp, err = is.ToggleNewsletterLike(ctx, "nl-1", "user-1")
	if err != nil {
		t.Fatalf("toggle like off: %v", err)
	}
	if resp.IsLiked || resp.LikeCount != 0 {
		t.Errorf("second toggle = %+v", resp)
	}

	var likes int64
	if err := gdb.Model(&model.Like{}).Count(&likes).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likes != 0 {
		t.Errorf("like rows = %d after toggle off, want 0", likes)
	}
	if err := gdb.First(&nl, "id = ?", "nl-1").Error; err != nil {
		t.Fatalf("reload newsletter: %v", err)
	}
	if nl.LikeCount != 0 {
		t.Errorf("stored likeCount = %d after toggle off, want 0", nl.LikeCount)
	}
}

// TestToggleLikeAnonymousFallback 测试未带用户身份时落到占位用户.
func TestToggleLikeAnonymousFallback(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	resp, err := is.ToggleNewsletterLike(ctx, "nl-1", "")
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if resp.UserID == "" {
		t.Error("UserID should fall back to the placeholder user")
	}
}

// TestToggleLikeMissingTarget 测试点赞不存在的目标返回未找到.
func TestToggleLikeMissingTarget(t *testing.T) {
	ctx, _ := newServiceContext(t)
	is := service.NewInteractionService(ctx)

	_, err := is.ToggleNewsletterLike(ctx, "missing", "user-1")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

// TestCommentFlow 测试评论的发表、回复、列表与软删除全流程.
func TestCommentFlow(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	created, err := is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{
		Content: "Great overview of channels.",
		UserID:  "user-1",
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if !created.Success || created.Data == nil || created.Data.ID == "" {
		t.Fatalf("created = %+v", created)
	}
	if created.Data.Author.Name != "Anonymous" {
		t.Errorf("Author = %+v, want anonymous placeholder without user row", created.Data.Author)
	}

	var nl model.Newsletter
	if err := gdb.First(&nl, "id = ?", "nl-1").Error; err != nil {
		t.Fatalf("load newsletter: %v", err)
	}
	if nl.CommentCount != 1 {
		t.Errorf("commentCount = %d, want 1", nl.CommentCount)
	}

	reply, err := is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{
		Content:  "Agreed, the select section is great.",
		UserID:   "user-2",
		ParentID: &created.Data.ID,
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	// 回复不增加文章评论计数
	if err := gdb.First(&nl, "id = ?", "nl-1").Error; err != nil {
		t.Fatalf("reload newsletter: %v", err)
	}
	if nl.CommentCount != 1 {
		t.Errorf("commentCount = %d after reply, want 1", nl.CommentCount)
	}

	list, err := is.ListComments(ctx, "nl-1", &types.CommentListRequest{Page: 1, PageSize: 20, SortBy: "latest"})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if list.Total != 1 || len(list.Comments) != 1 {
		t.Fatalf("list = %+v", list)
	}
	top := list.Comments[0]
	if top.ReplyCount != 1 || len(top.Replies) != 1 {
		t.Errorf("top comment = %+v", top)
	}
	if top.Replies[0].ID != reply.Data.ID {
		t.Errorf("reply = %+v", top.Replies[0])
	}
	if list.HasNext {
		t.Error("HasNext = true, want false for a single page")
	}

	replies, err := is.ListReplies(ctx, created.Data.ID, &types.CommentRepliesRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if replies.Total != 1 || len(replies.Replies) != 1 {
		t.Errorf("replies = %+v", replies)
	}

	deleted, err := is.DeleteComment(ctx, created.Data.ID)
	if err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if !deleted.Success {
		t.Errorf("deleted = %+v", deleted)
	}

	list, err = is.ListComments(ctx, "nl-1", &types.CommentListRequest{Page: 1, PageSize: 20, SortBy: "latest"})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("Total = %d after soft delete, want 0", list.Total)
	}

	// 行仍保留，状态为 DELETED
	var row model.Comment
	if err := gdb.First(&row, "id = ?", created.Data.ID).Error; err != nil {
		t.Fatalf("load deleted comment: %v", err)
	}
	if row.Status != model.CommentStatusDeleted {
		t.Errorf("status = %q, want DELETED", row.Status)
	}
}

// TestCreateCommentValidation 测试评论内容与目标的校验.
func TestCreateCommentValidation(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	_, err := is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{Content: "   "})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for blank content, got %v", err)
	}

	_, err = is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{Content: strings.Repeat("字", 1001)})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error for oversized content, got %v", err)
	}

	_, err = is.CreateComment(ctx, "missing", &types.CommentCreateRequest{Content: "hello"})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected not found for missing newsletter, got %v", err)
	}

	parent := "no-such-comment"
	_, err = is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{Content: "hello", ParentID: &parent})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected not found for missing parent, got %v", err)
	}
}

// TestDeleteCommentMissing 测试删除不存在的评论返回未找到.
func TestDeleteCommentMissing(t *testing.T) {
	ctx, _ := newServiceContext(t)
	is := service.NewInteractionService(ctx)

	_, err := is.DeleteComment(ctx, "no-such-comment")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

// TestToggleCommentLike 测试评论点赞切换与计数写回.
func TestToggleCommentLike(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	created, err := is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{Content: "nice", UserID: "user-1"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	resp, err := is.ToggleCommentLike(ctx, created.Data.ID, "user-2")
	if err != nil {
		t.Fatalf("toggle comment like: %v", err)
	}
	if !resp.IsLiked || resp.LikeCount != 1 || resp.CommentID != created.Data.ID {
		t.Errorf("toggle = %+v", resp)
	}

	var row model.Comment
	if err := gdb.First(&row, "id = ?", created.Data.ID).Error; err != nil {
		t.Fatalf("load comment: %v", err)
	}
	if row.LikeCount != 1 {
		t.Errorf("stored likeCount = %d, want 1", row.LikeCount)
	}
}

// TestCommentAuthorJoin 测试评论作者信息联查.
func TestCommentAuthorJoin(t *testing.T) {
	ctx, gdb := newServiceContext(t)
	is := service.NewInteractionService(ctx)
	seedNewsletter(t, gdb, "nl-1")

	user := model.User{ID: "user-9", Name: "Ada", Email: "ada@example.com"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	created, err := is.CreateComment(ctx, "nl-1", &types.CommentCreateRequest{Content: "hello", UserID: "user-9"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	author := created.Data.Author
	if author.Name != "Ada" {
		t.Errorf("Author.Name = %q, want Ada", author.Name)
	}
	if author.Email == nil || *author.Email != "ada@example.com" {
		t.Errorf("Author.Email = %v", author.Email)
	}
	if author.Avatar != nil {
		t.Errorf("Author.Avatar = %v, want nil for empty avatar", author.Avatar)
	}
}
