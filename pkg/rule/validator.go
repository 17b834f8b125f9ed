// Package rule 提供请求结构体校验的封装，基于 go-playground/validator 实现.
// 校验规则写在 `rule` tag 上，与 gin 的 binding tag 分离，便于同一结构体
// 在绑定与校验上使用不同规则.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建.
// 两种情况下 tag 名都切到 rule，避免与 binding tag 混用.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
}

func lazyInit() {
	once.Do(initValidator)
}

// ValidateStruct 对结构体执行完整校验，返回 validator 原始 error.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar(bucket, "required,min=3").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}
