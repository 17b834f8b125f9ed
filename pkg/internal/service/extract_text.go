package service

import "strings"

// extractText 纯文本：首行作标题，随后 1-2 个非空行拼成摘要.
func extractText(result *ExtractResult, text string, maxContent int) {
	lines := strings.Split(text, "\n")

	if len(lines) > 0 {
		result.Title = truncateRunes(strings.TrimSpace(lines[0]), titleMaxLen)
	}

	var summaryLines []string
	for _, line := range lines[min(1, len(lines)):] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summaryLines = append(summaryLines, trimmed)
			if len(summaryLines) == 2 {
				break
			}
		}
	}
	result.Summary = truncateRunes(strings.Join(summaryLines, " "), summaryMaxLen)

	result.Content = truncateRunes(text, maxContent)
	if len([]rune(text)) <= maxContent {
		result.ContentFull = text
	}
}

// extractRST 以下划线式标题（=== 或 ---）识别 reStructuredText 的标题.
func extractRST(result *ExtractResult, text string, maxContent int) {
	lines := strings.Split(text, "\n")

	body := text
	for i := 0; i+1 < len(lines); i++ {
		title := strings.TrimSpace(lines[i])
		if title == "" {
			continue
		}
		if rstUnderline.MatchString(strings.TrimSpace(lines[i+1])) {
			result.Title = truncateRunes(title, titleMaxLen)
			body = strings.Join(lines[i+2:], "\n")
			break
		}
	}

	result.Summary = firstParagraph(body, summaryMaxLen)

	result.Content = truncateRunes(text, maxContent)
	if len([]rune(text)) <= maxContent {
		result.ContentFull = text
	}
}
