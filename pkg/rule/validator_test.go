package rule_test

import (
	"testing"

	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/rule"
)

// TestValidateStructBucketName 测试桶名长度规则.
func TestValidateStructBucketName(t *testing.T) {
	valid := types.CreateBucketRequest{BucketName: "articles"}
	if err := rule.ValidateStruct(&valid); err != nil {
		t.Errorf("valid bucket name rejected: %v", err)
	}

	tooShort := types.CreateBucketRequest{BucketName: "ab"}
	if err := rule.ValidateStruct(&tooShort); err == nil {
		t.Error("2-char bucket name accepted, want error")
	}

	empty := types.CreateBucketRequest{}
	if err := rule.ValidateStruct(&empty); err == nil {
		t.Error("empty bucket name accepted, want error")
	}
}

// TestValidateStructOneof 测试枚举值规则：点赞动作只认 like/unlike.
func TestValidateStructOneof(t *testing.T) {
	for _, action := range []string{"", "like", "unlike"} {
		req := types.LikeActionRequest{Action: action}
		if err := rule.ValidateStruct(&req); err != nil {
			t.Errorf("action %q rejected: %v", action, err)
		}
	}

	bad := types.LikeActionRequest{Action: "smash"}
	if err := rule.ValidateStruct(&bad); err == nil {
		t.Error("unknown action accepted, want error")
	}
}

// TestValidateStructRange 测试分页范围规则的上下界.
func TestValidateStructRange(t *testing.T) {
	ok := types.BehaviorQueryRequest{Page: 1, Size: 100}
	if err := rule.ValidateStruct(&ok); err != nil {
		t.Errorf("valid pagination rejected: %v", err)
	}

	tooBig := types.BehaviorQueryRequest{Page: 1, Size: 101}
	if err := rule.ValidateStruct(&tooBig); err == nil {
		t.Error("oversized page size accepted, want error")
	}

	negative := types.BehaviorQueryRequest{Page: -1, Size: 20}
	if err := rule.ValidateStruct(&negative); err == nil {
		t.Error("negative page accepted, want error")
	}

	// omitempty: 零值跳过校验，由 handler 的 default 填充
	zero := types.BehaviorQueryRequest{}
	if err := rule.ValidateStruct(&zero); err != nil {
		t.Errorf("zero-value pagination rejected: %v", err)
	}
}

// TestValidateVar 测试单变量校验.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("articles", "required,min=3,max=63"); err != nil {
		t.Errorf("valid bucket name rejected: %v", err)
	}
	if err := rule.ValidateVar("ab", "required,min=3,max=63"); err == nil {
		t.Error("short bucket name accepted, want error")
	}
}
