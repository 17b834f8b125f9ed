package service

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DocFormat 文档格式分类结果.
type DocFormat string

const (
	FormatMarkdown DocFormat = "markdown"
	FormatHTML     DocFormat = "html"
	FormatText     DocFormat = "text"
	FormatRST      DocFormat = "rst"
	FormatUnknown  DocFormat = "unknown"
)

const (
	// DefaultMaxContentSize 索引内容默认上限（字符）.
	DefaultMaxContentSize = 50000
	// titleMaxLen 纯文本标题截断长度.
	titleMaxLen = 100
	// summaryMaxLen 摘要截断长度.
	summaryMaxLen = 500
	// maxExtractedURLs 提取 URL 数量上限.
	maxExtractedURLs = 100
)

// ExtractResult 内容提取结果. 任何输入都能产出结果：
// 未识别格式仅有哈希与计数，解析失败退化为原始文本.
type ExtractResult struct {
	Format      DocFormat
	Title       string
	Summary     string
	Description string // HTML meta description（其他格式为空）
	Author      string
	Keywords    []string

	Content     string // 提取出的正文（截断到上限）
	ContentFull string // 未截断正文，超限时为空
	HTMLContent string // 渲染或原始 HTML（截断到上限）
	Headings    []string

	HasCode    bool
	CodeBlocks int
	WordCount  int
	CharCount  int
	LineCount  int
	URLs       []string

	ContentHash string // 原始字节的 SHA-256 十六进制
}

var (
	urlPattern      = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	mdHeadingLine   = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	mdTitleLine     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	rstUnderline    = regexp.MustCompile(`^[=\-]{3,}\s*$`)
	fencedCodeDelim = regexp.MustCompile(`(?m)^\x60{3}`)
)

// Extract 按默认内容上限提取.
func Extract(data []byte, filename, declaredMIME string) ExtractResult {
	return ExtractWithLimit(data, filename, declaredMIME, DefaultMaxContentSize)
}

// ExtractWithLimit 对原始字节做格式分类与内容提取. 纯函数，不返回错误：
// 分类依扩展名优先，声明的 MIME 兜底；两者都未命中按 unknown 处理，仅产出哈希与计数.
func ExtractWithLimit(data []byte, filename, declaredMIME string, maxContent int) ExtractResult {
	if maxContent <= 0 {
		maxContent = DefaultMaxContentSize
	}

	text := sanitizeUTF8(data)

	result := ExtractResult{
		Format:      classifyFormat(filename, declaredMIME),
		ContentHash: hashBytes(data),
	}

	switch result.Format {
	case FormatMarkdown:
		extractMarkdown(&result, text, maxContent)
	case FormatHTML:
		extractHTML(&result, text, maxContent)
	case FormatText:
		extractText(&result, text, maxContent)
	case FormatRST:
		extractRST(&result, text, maxContent)
	default:
		// 未识别格式只做计数，不产出正文
		fillCounts(&result, text)
		return result
	}

	fillCounts(&result, result.Content)
	result.URLs = extractURLs(text, maxExtractedURLs)

	return result
}

// classifyFormat 扩展名优先，MIME 兜底.
func classifyFormat(filename, declaredMIME string) DocFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	case ".txt":
		return FormatText
	case ".rst":
		return FormatRST
	}

	// MIME 可能附带 "; charset=utf-8" 参数
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch mime {
	case "text/markdown":
		return FormatMarkdown
	case "text/html":
		return FormatHTML
	case "text/plain":
		return FormatText
	case "text/x-rst":
		return FormatRST
	}

	return FormatUnknown
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// sanitizeUTF8 将非法字节序列替换为 U+FFFD，保证下游解析器安全.
func sanitizeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	return strings.ToValidUTF8(string(data), "�")
}

func fillCounts(result *ExtractResult, text string) {
	result.WordCount = len(strings.Fields(text))
	result.CharCount = utf8.RuneCountInString(text)

	if text == "" {
		return
	}
	result.LineCount = strings.Count(text, "\n") + 1
}

func extractURLs(text string, limit int) []string {
	matches := urlPattern.FindAllString(text, limit)
	if len(matches) == 0 {
		return nil
	}

	return matches
}

// truncateRunes 按 rune 截断，避免切出非法 UTF-8 边界.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n])
}

// firstParagraph 返回首个非空、非标题、非围栏的段落，截断到 limit.
func firstParagraph(text string, limit int) string {
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		return truncateRunes(trimmed, limit)
	}

	return ""
}

// collapseSpace 折叠连续空白为单个空格.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
