package model

// User 用户表，本服务只读（评论作者信息联查）。
type User struct {
	ID     string `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name   string `gorm:"column:name;size:255"         json:"name"`
	Email  string `gorm:"column:email;size:255"        json:"email"`
	Avatar string `gorm:"column:avatar;size:1024"      json:"avatar"`
}

// TableName 指定既有表名。
func (User) TableName() string { return "users" }
