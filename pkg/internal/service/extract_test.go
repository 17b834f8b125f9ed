package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestClassifyFormat 测试格式分类：扩展名优先，MIME 兜底.
func TestClassifyFormat(t *testing.T) {
	cases := []struct {
		filename string
		mime     string
		want     DocFormat
	}{
		{"guide.md", "", FormatMarkdown},
		{"Guide.MD", "", FormatMarkdown},
		{"notes.markdown", "", FormatMarkdown},
		{"page.html", "", FormatHTML},
		{"page.htm", "", FormatHTML},
		{"notes.txt", "", FormatText},
		{"notes.rst", "", FormatRST},
		{"data.bin", "text/markdown", FormatMarkdown},
		{"data.bin", "text/html; charset=utf-8", FormatHTML},
		{"data.bin", "TEXT/PLAIN", FormatText},
		{"data.bin", "text/x-rst", FormatRST},
		{"data.bin", "application/pdf", FormatUnknown},
		{"archive", "", FormatUnknown},
	}

	for _, c := range cases {
		got := classifyFormat(c.filename, c.mime)
		if got != c.want {
			t.Errorf("classifyFormat(%q, %q) = %q, want %q", c.filename, c.mime, got, c.want)
		}
	}
}

// TestHashBytes 测试内容哈希为 SHA-256 十六进制且稳定.
func TestHashBytes(t *testing.T) {
	got := hashBytes([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("hashBytes(hello) = %s, want %s", got, want)
	}

	if hashBytes([]byte("hello")) != got {
		t.Error("hashBytes not deterministic for same input")
	}
	if hashBytes([]byte("world")) == got {
		t.Error("hashBytes collision for different input")
	}
}

const sampleMarkdown = `# Go Concurrency Patterns

Channels and goroutines form the backbone of concurrent Go programs.

## Sharing by Communicating

` + "```go\nch := make(chan int)\n```" + `

See https://go.dev/blog/codelab-share for details.
`

// TestExtractMarkdown 测试 Markdown 提取：标题、摘要、标题列表、代码块与 URL.
func TestExtractMarkdown(t *testing.T) {
	result := Extract([]byte(sampleMarkdown), "patterns.md", "")

	if result.Format != FormatMarkdown {
		t.Fatalf("Format = %q, want markdown", result.Format)
	}
	if result.Title != "Go Concurrency Patterns" {
		t.Errorf("Title = %q, want first level-1 heading", result.Title)
	}
	if result.Summary != "Channels and goroutines form the backbone of concurrent Go programs." {
		t.Errorf("Summary = %q, want first paragraph", result.Summary)
	}

	if len(result.Headings) != 2 {
		t.Fatalf("Headings = %v, want 2 entries", result.Headings)
	}
	if result.Headings[1] != "Sharing by Communicating" {
		t.Errorf("Headings[1] = %q", result.Headings[1])
	}

	if !result.HasCode || result.CodeBlocks != 1 {
		t.Errorf("HasCode = %v, CodeBlocks = %d, want one fenced block", result.HasCode, result.CodeBlocks)
	}

	if !strings.Contains(result.Content, "Channels and goroutines") {
		t.Error("Content missing paragraph text")
	}
	if strings.Contains(result.Content, "<h1>") {
		t.Error("Content should be plain text, found HTML tag")
	}
	if !strings.Contains(result.HTMLContent, "<h1>") {
		t.Error("HTMLContent missing rendered heading")
	}

	if len(result.URLs) != 1 || result.URLs[0] != "https://go.dev/blog/codelab-share" {
		t.Errorf("URLs = %v", result.URLs)
	}

	if result.WordCount == 0 || result.CharCount == 0 || result.LineCount == 0 {
		t.Errorf("counts not filled: words=%d chars=%d lines=%d", result.WordCount, result.CharCount, result.LineCount)
	}
	if len(result.ContentHash) != 64 {
		t.Errorf("ContentHash = %q, want 64 hex chars", result.ContentHash)
	}
}

// TestExtractWithLimitTruncation 测试超限内容按 rune 截断且不保留全文.
func TestExtractWithLimitTruncation(t *testing.T) {
	result := ExtractWithLimit([]byte(sampleMarkdown), "patterns.md", "", 10)

	if n := utf8.RuneCountInString(result.Content); n > 10 {
		t.Errorf("Content has %d runes, want at most 10", n)
	}
	if result.ContentFull != "" {
		t.Error("ContentFull should be empty when content exceeds limit")
	}

	// 非正上限回退为默认值
	fallback := ExtractWithLimit([]byte(sampleMarkdown), "patterns.md", "", 0)
	if fallback.ContentFull == "" {
		t.Error("zero limit should fall back to default and keep full content")
	}
}

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Object  Storage Primer</title>
<meta name="description" content="How buckets and objects fit together.">
<meta name="keywords" content="storage, buckets, ">
<meta name="author" content="Ada">
<script>alert("tracking");</script>
</head>
<body>
<h1>Buckets</h1>
<p>A bucket is a flat namespace for objects.</p>
<h2>Objects</h2>
<pre><code>mc ls play/mybucket</code></pre>
</body>
</html>`

// TestExtractHTML 测试 HTML 提取：title、meta 标签、标题列表与脚本剥离.
func TestExtractHTML(t *testing.T) {
	result := Extract([]byte(sampleHTML), "primer.html", "")

	if result.Format != FormatHTML {
		t.Fatalf("Format = %q, want html", result.Format)
	}
	if result.Title != "Object Storage Primer" {
		t.Errorf("Title = %q, want collapsed title text", result.Title)
	}
	if result.Description != "How buckets and objects fit together." {
		t.Errorf("Description = %q, want meta description", result.Description)
	}
	if result.Summary != result.Description {
		t.Errorf("Summary = %q, want same as description", result.Summary)
	}

	if len(result.Keywords) != 2 || result.Keywords[0] != "storage" || result.Keywords[1] != "buckets" {
		t.Errorf("Keywords = %v, want trimmed non-empty entries", result.Keywords)
	}
	if result.Author != "Ada" {
		t.Errorf("Author = %q", result.Author)
	}

	if len(result.Headings) != 2 || result.Headings[0] != "Buckets" {
		t.Errorf("Headings = %v", result.Headings)
	}
	if !result.HasCode {
		t.Error("HasCode = false, want pre/code detected")
	}

	if strings.Contains(result.Content, "alert(") {
		t.Error("Content contains script text, want scripts stripped")
	}
	if !strings.Contains(result.Content, "A bucket is a flat namespace") {
		t.Error("Content missing paragraph text")
	}
}

// TestExtractHTMLDescriptionFallback 测试无 meta description 时回退首个段落.
func TestExtractHTMLDescriptionFallback(t *testing.T) {
	html := `<html><head><title>T</title></head><body><p>First paragraph here.</p></body></html>`

	result := Extract([]byte(html), "t.html", "")
	if result.Description != "First paragraph here." {
		t.Errorf("Description = %q, want first paragraph", result.Description)
	}
}

// TestExtractText 测试纯文本提取：首行为标题，后续非空行拼摘要.
func TestExtractText(t *testing.T) {
	text := "Release Notes\n\nFixed the upload retry loop.\nImproved listing speed.\nOther minor changes.\n"

	result := Extract([]byte(text), "notes.txt", "")
	if result.Format != FormatText {
		t.Fatalf("Format = %q, want text", result.Format)
	}
	if result.Title != "Release Notes" {
		t.Errorf("Title = %q, want first line", result.Title)
	}
	if result.Summary != "Fixed the upload retry loop. Improved listing speed." {
		t.Errorf("Summary = %q, want first two non-empty lines", result.Summary)
	}
	if result.ContentFull != text {
		t.Error("ContentFull should keep the whole input under the limit")
	}
}

// TestExtractRST 测试 reStructuredText 的下划线式标题识别.
func TestExtractRST(t *testing.T) {
	rst := "Deployment Guide\n================\n\nInstall the binary and point it at the config file.\n"

	result := Extract([]byte(rst), "deploy.rst", "")
	if result.Format != FormatRST {
		t.Fatalf("Format = %q, want rst", result.Format)
	}
	if result.Title != "Deployment Guide" {
		t.Errorf("Title = %q, want underlined heading", result.Title)
	}
	if result.Summary != "Install the binary and point it at the config file." {
		t.Errorf("Summary = %q, want first paragraph after heading", result.Summary)
	}
}

// TestExtractUnknownFormat 测试未识别格式仅产出哈希与计数.
func TestExtractUnknownFormat(t *testing.T) {
	result := Extract([]byte("some opaque payload"), "blob.dat", "application/octet-stream")

	if result.Format != FormatUnknown {
		t.Fatalf("Format = %q, want unknown", result.Format)
	}
	if result.Content != "" || result.Title != "" {
		t.Error("unknown format should not produce content or title")
	}
	if result.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", result.WordCount)
	}
	if len(result.ContentHash) != 64 {
		t.Errorf("ContentHash = %q, want 64 hex chars", result.ContentHash)
	}
}

// TestExtractInvalidUTF8 测试非法字节序列被替换后仍能安全提取.
func TestExtractInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 'h', 'i', '\n'}

	result := Extract(data, "broken.txt", "")
	if !utf8.ValidString(result.Content) {
		t.Error("Content is not valid UTF-8 after sanitizing")
	}
	if !strings.Contains(result.Content, "hi") {
		t.Error("Content lost the valid portion of the input")
	}
}

// TestTruncateRunes 测试按 rune 截断不会切坏多字节字符.
func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("你好世界", 2); got != "你好" {
		t.Errorf("truncateRunes = %q, want 你好", got)
	}
	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("truncateRunes should keep short input, got %q", got)
	}
	if got := truncateRunes("anything", 0); got != "anything" {
		t.Errorf("non-positive limit should keep input, got %q", got)
	}
}

// TestFirstParagraph 测试摘要段落跳过标题、空行与代码围栏.
func TestFirstParagraph(t *testing.T) {
	text := "# Heading\n\n```\ncode line\n```\n\nActual body paragraph.\n"

	if got := firstParagraph(text, 100); got != "Actual body paragraph." {
		t.Errorf("firstParagraph = %q", got)
	}
	if got := firstParagraph("# only headings\n## here\n", 100); got != "" {
		t.Errorf("firstParagraph = %q, want empty", got)
	}
}
