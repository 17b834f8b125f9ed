package objstore

import (
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// 对象元数据最终落在 HTTP 头上，后端对键值长度有硬限制，超限请求整体失败.
// 这里统一在上传前清洗：超限或含非法字符的条目直接丢弃，不阻断上传.
const (
	maxMetaKeyLen   = 1024
	maxMetaValueLen = 2048
)

// SanitizeMetadata 过滤非法元数据条目，返回清洗后的副本.
// 丢弃规则：空键、键超过 1024 字符、值超过 2048 字符、键或值含不可打印 ASCII.
func SanitizeMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}

	sanitized := make(map[string]string, len(metadata))
	dropped := 0

	for k, v := range metadata {
		if k == "" || len(k) > maxMetaKeyLen || len(v) > maxMetaValueLen {
			dropped++
			continue
		}

		if !asciiPrintable(k) || !asciiPrintable(v) {
			dropped++
			continue
		}

		sanitized[k] = v
	}

	if dropped > 0 {
		nlog.Logger().Warn().Int("dropped", dropped).Msg("丢弃非法对象元数据条目")
	}

	if len(sanitized) == 0 {
		return nil
	}

	return sanitized
}

// asciiPrintable 判断字符串是否仅含可打印 ASCII 字符.
func asciiPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}

	return true
}
