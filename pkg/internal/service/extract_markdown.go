package service

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// mdRenderer 复用的 goldmark 实例，GFM 扩展覆盖表格、删除线等常见语法.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// extractMarkdown 渲染 Markdown 为 HTML 再剥离成纯文本，
// 标题取首个一级标题，摘要取首个正文段落.
func extractMarkdown(result *ExtractResult, text string, maxContent int) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(text), &buf); err != nil {
		// 渲染失败退化为原始文本
		result.Content = truncateRunes(text, maxContent)
		result.Summary = firstParagraph(text, summaryMaxLen)
		return
	}

	html := buf.String()
	plain := stripHTMLText(html)
	if plain == "" {
		plain = text
	}

	if m := mdTitleLine.FindStringSubmatch(text); m != nil {
		result.Title = strings.TrimSpace(m[1])
	}
	result.Summary = firstParagraph(text, summaryMaxLen)

	for _, m := range mdHeadingLine.FindAllStringSubmatch(text, -1) {
		result.Headings = append(result.Headings, strings.TrimSpace(m[1]))
	}

	fences := len(fencedCodeDelim.FindAllString(text, -1))
	result.CodeBlocks = fences / 2
	result.HasCode = result.CodeBlocks > 0

	result.Content = truncateRunes(plain, maxContent)
	if len([]rune(plain)) <= maxContent {
		result.ContentFull = plain
	}
	result.HTMLContent = truncateRunes(html, maxContent)
}

// stripHTMLText 将 HTML 剥离为纯文本，script/style 整块丢弃.
func stripHTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style").Remove()

	var sb strings.Builder

	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	})

	if sb.Len() == 0 {
		// 无 body 包装时直接取整体文本
		return strings.TrimSpace(doc.Text())
	}

	return sb.String()
}
