package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ArticleDoc 文章索引文档，字段集与 minio_articles 索引映射一一对应.
type ArticleDoc struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`

	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Author   string   `json:"author"`

	PublishDate  string `json:"publish_date"`
	UploadTime   string `json:"upload_time"`
	LastModified string `json:"last_modified"`

	ReadTime  int `json:"read_time"` // 估算阅读分钟数
	ViewCount int `json:"view_count"`
	LikeCount int `json:"like_count"`
	WordCount int `json:"word_count"`

	Featured    bool `json:"featured"`
	MemberOnly  bool `json:"member_only"`
	IsPublished bool `json:"is_published"`

	BucketName     string `json:"bucket_name"`
	ObjectName     string `json:"object_name"`
	FilePath       string `json:"file_path"`
	MinioPublicURL string `json:"minio_public_url"`
	ContentHash    string `json:"content_hash"`

	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`

	Metadata map[string]any `json:"metadata"`

	Description       string   `json:"description"`
	Keywords          []string `json:"keywords"`
	SearchableContent string   `json:"searchable_content"`
}

var titleCapWords = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// techKeywords 内容中匹配到即作为标签的技术词.
var techKeywords = []string{
	"python", "javascript", "java", "react", "vue", "docker",
	"kubernetes", "ai", "machine learning", "deep learning",
	"api", "database", "sql", "nosql", "mongodb", "redis",
}

// ArticleDocID 由桶与对象键派生的稳定文档 ID，同一对象重复摄取原位覆盖.
func ArticleDocID(bucket, key string) string {
	sum := sha256.Sum256([]byte(bucket + "/" + key))

	return hex.EncodeToString(sum[:])
}

// BuildArticleDoc 由提取结果组装文章索引文档.
func BuildArticleDoc(bucket, key string, size int64, contentType string, res ExtractResult, publicURL string) ArticleDoc {
	now := time.Now().UTC().Format(time.RFC3339)

	title := res.Title
	if title == "" {
		// 无标题时取文件名主干
		title = strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metadata := map[string]any{
		"headings":          res.Headings,
		"has_code":          res.HasCode,
		"code_blocks_count": res.CodeBlocks,
	}
	if len(res.Keywords) > 0 {
		metadata["keywords"] = res.Keywords
	}
	if res.Author != "" {
		metadata["author"] = res.Author
	}

	author := res.Author
	if author == "" {
		author = "anonymous"
	}

	description := res.Description
	if description == "" {
		description = truncateRunes(res.Summary, 160)
	}

	return ArticleDoc{
		ID:      ArticleDocID(bucket, key),
		Title:   title,
		Summary: res.Summary,
		Content: res.Content,

		Category: determineCategory(key, res.Content, res.HasCode),
		Tags:     extractArticleTags(res.Content, res.Title, res.Keywords),
		Author:   author,

		PublishDate:  now,
		UploadTime:   now,
		LastModified: now,

		ReadTime:  max(1, res.WordCount/200),
		WordCount: res.WordCount,

		IsPublished: true,

		BucketName:     bucket,
		ObjectName:     key,
		FilePath:       fmt.Sprintf("/%s/%s", bucket, key),
		MinioPublicURL: publicURL,
		ContentHash:    res.ContentHash,

		FileType:    string(res.Format),
		FileSize:    size,
		ContentType: contentType,

		Metadata: metadata,

		Description:       description,
		Keywords:          res.Keywords,
		SearchableContent: fmt.Sprintf("%s %s %s", res.Title, res.Summary, truncateRunes(res.Content, 500)),
	}
}

// determineCategory 文件名关键词优先，其次依内容特征.
func determineCategory(filename, content string, hasCode bool) string {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "tutorial") || strings.Contains(name, "教程"):
		return "tutorial"
	case strings.Contains(name, "news") || strings.Contains(name, "新闻"):
		return "news"
	case strings.Contains(name, "blog") || strings.Contains(name, "博客"):
		return "blog"
	case strings.Contains(name, "doc") || strings.Contains(name, "文档"):
		return "documentation"
	case strings.Contains(name, "readme"):
		return "readme"
	}

	if hasCode {
		return "technical"
	}
	if len([]rune(content)) > 5000 {
		return "article"
	}

	return "note"
}

// extractArticleTags 标题大写词 + 内容命中的技术词 + meta 关键词，去重后截到 10 个.
func extractArticleTags(content, title string, metaKeywords []string) []string {
	var tags []string

	capWords := titleCapWords.FindAllString(title, -1)
	if len(capWords) > 5 {
		capWords = capWords[:5]
	}
	tags = append(tags, capWords...)

	contentLower := strings.ToLower(content)
	for _, kw := range techKeywords {
		if strings.Contains(contentLower, kw) {
			tags = append(tags, kw)
		}
	}

	for _, kw := range metaKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			tags = append(tags, kw)
		}
	}

	seen := make(map[string]struct{}, len(tags))
	deduped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		deduped = append(deduped, tag)
		if len(deduped) == 10 {
			break
		}
	}

	return deduped
}
