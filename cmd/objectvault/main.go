// Package main 启动应用程序
package main

import "github.com/yeisme/objectvault/pkg/cmd"

//	@title			ObjectVault API
//	@version		1.0
//	@description	ObjectVault 是一个多后端对象存储管理服务，提供存储桶与对象管理、全文搜索、文章互动和用户行为分析等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
