package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractHTML 解析 HTML 文档：标题取 <title>，描述取 meta description
// 兜底首个 <p>，关键词与作者来自 meta 标签.
func extractHTML(result *ExtractResult, text string, maxContent int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		// 解析失败退化为原始文本
		result.Content = truncateRunes(text, maxContent)
		return
	}

	result.Title = collapseSpace(doc.Find("title").First().Text())

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		result.Description = strings.TrimSpace(desc)
	}
	if result.Description == "" {
		result.Description = truncateRunes(collapseSpace(doc.Find("p").First().Text()), summaryMaxLen)
	}
	result.Summary = truncateRunes(result.Description, summaryMaxLen)

	if keywords, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				result.Keywords = append(result.Keywords, kw)
			}
		}
	}
	if author, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		result.Author = strings.TrimSpace(author)
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if h := collapseSpace(s.Text()); h != "" {
			result.Headings = append(result.Headings, h)
		}
	})

	result.CodeBlocks = doc.Find("pre, code").Length()
	result.HasCode = result.CodeBlocks > 0

	doc.Find("script, style").Remove()
	plain := strings.TrimSpace(doc.Text())

	result.Content = truncateRunes(plain, maxContent)
	if len([]rune(plain)) <= maxContent {
		result.ContentFull = plain
	}
	result.HTMLContent = truncateRunes(text, maxContent)
}
