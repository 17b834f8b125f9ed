package model

// AllModels 返回全部关系模型，供开发环境迁移与测试建表使用。
func AllModels() []any {
	return []any{
		&Newsletter{},
		&Comment{},
		&Like{},
		&User{},
		&UserBehavior{},
	}
}
