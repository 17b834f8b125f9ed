package service

import (
	"strings"
	"testing"
)

// TestArticleDocIDStable 测试文档 ID 由桶与对象键稳定派生.
func TestArticleDocIDStable(t *testing.T) {
	id := ArticleDocID("articles", "notes/containers.md")

	if len(id) != 64 {
		t.Fatalf("ArticleDocID length = %d, want 64 hex chars", len(id))
	}
	if ArticleDocID("articles", "notes/containers.md") != id {
		t.Error("same bucket/key should produce the same ID")
	}
	if ArticleDocID("articles", "notes/other.md") == id {
		t.Error("different keys should produce different IDs")
	}
	if ArticleDocID("backup", "notes/containers.md") == id {
		t.Error("different buckets should produce different IDs")
	}
}

// TestBuildArticleDoc 测试由提取结果组装索引文档的字段映射.
func TestBuildArticleDoc(t *testing.T) {
	res := ExtractResult{
		Format:      FormatMarkdown,
		Title:       "Docker in Production",
		Summary:     "Running containers without surprises.",
		Content:     "We moved every service into docker and later kubernetes.",
		Headings:    []string{"Docker in Production", "Rollout"},
		HasCode:     true,
		CodeBlocks:  2,
		WordCount:   420,
		ContentHash: "deadbeef",
	}

	doc := BuildArticleDoc("articles", "notes/containers.md", 2048, "text/markdown", res, "http://storage.local/articles/notes/containers.md")

	if doc.ID != ArticleDocID("articles", "notes/containers.md") {
		t.Error("doc ID should be derived from bucket and key")
	}
	if doc.Title != "Docker in Production" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.BucketName != "articles" || doc.ObjectName != "notes/containers.md" {
		t.Errorf("location = %s/%s", doc.BucketName, doc.ObjectName)
	}
	if doc.FilePath != "/articles/notes/containers.md" {
		t.Errorf("FilePath = %q", doc.FilePath)
	}
	if doc.MinioPublicURL != "http://storage.local/articles/notes/containers.md" {
		t.Errorf("MinioPublicURL = %q", doc.MinioPublicURL)
	}

	if doc.ReadTime != 2 {
		t.Errorf("ReadTime = %d, want 420 words / 200 wpm = 2", doc.ReadTime)
	}
	if doc.WordCount != 420 || doc.FileSize != 2048 {
		t.Errorf("WordCount = %d, FileSize = %d", doc.WordCount, doc.FileSize)
	}
	if doc.FileType != "markdown" || doc.ContentType != "text/markdown" {
		t.Errorf("FileType = %q, ContentType = %q", doc.FileType, doc.ContentType)
	}
	if !doc.IsPublished {
		t.Error("IsPublished should default to true")
	}
	if doc.ContentHash != "deadbeef" {
		t.Errorf("ContentHash = %q", doc.ContentHash)
	}

	if doc.Category != "technical" {
		t.Errorf("Category = %q, want technical for code-bearing content", doc.Category)
	}

	hasTag := func(tag string) bool {
		for _, tg := range doc.Tags {
			if tg == tag {
				return true
			}
		}
		return false
	}
	if !hasTag("docker") || !hasTag("kubernetes") {
		t.Errorf("Tags = %v, want tech keywords from content", doc.Tags)
	}
	if !hasTag("Docker") || !hasTag("Production") {
		t.Errorf("Tags = %v, want capitalized title words", doc.Tags)
	}

	if !strings.Contains(doc.SearchableContent, "Docker in Production") {
		t.Error("SearchableContent missing title")
	}
	if doc.Metadata["has_code"] != true || doc.Metadata["code_blocks_count"] != 2 {
		t.Errorf("Metadata = %v", doc.Metadata)
	}
	if doc.UploadTime == "" || doc.PublishDate != doc.UploadTime {
		t.Errorf("timestamps: publish=%q upload=%q", doc.PublishDate, doc.UploadTime)
	}
}

// TestBuildArticleDocDefaults 测试缺省字段的兜底值.
func TestBuildArticleDocDefaults(t *testing.T) {
	doc := BuildArticleDoc("articles", "README.md", 10, "", ExtractResult{Format: FormatMarkdown}, "")

	if doc.Title != "README" {
		t.Errorf("Title = %q, want filename stem", doc.Title)
	}
	if doc.Author != "anonymous" {
		t.Errorf("Author = %q, want anonymous fallback", doc.Author)
	}
	if doc.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
	if doc.ReadTime != 1 {
		t.Errorf("ReadTime = %d, want minimum 1", doc.ReadTime)
	}
	if doc.Category != "readme" {
		t.Errorf("Category = %q", doc.Category)
	}
}

// TestDetermineCategory 测试分类规则：文件名关键词优先于内容特征.
func TestDetermineCategory(t *testing.T) {
	cases := []struct {
		filename string
		content  string
		hasCode  bool
		want     string
	}{
		{"python-tutorial.md", "", false, "tutorial"},
		{"weekly-news.md", "", false, "news"},
		{"my-blog-post.md", "", false, "blog"},
		{"api-docs.md", "", false, "documentation"},
		{"README.md", "", false, "readme"},
		{"notes.md", "short", true, "technical"},
		{"essay.md", strings.Repeat("长", 5001), false, "article"},
		{"scratch.md", "short", false, "note"},
	}

	for _, c := range cases {
		got := determineCategory(c.filename, c.content, c.hasCode)
		if got != c.want {
			t.Errorf("determineCategory(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

// TestExtractArticleTags 测试标签提取的去重与数量上限.
func TestExtractArticleTags(t *testing.T) {
	tags := extractArticleTags(
		"this project uses docker and redis, docker everywhere",
		"Docker Redis Notes",
		[]string{" docker ", "", "ops"},
	)

	seen := make(map[string]int)
	for _, tag := range tags {
		seen[tag]++
	}
	for tag, n := range seen {
		if n > 1 {
			t.Errorf("tag %q appears %d times, want deduplicated", tag, n)
		}
	}

	if seen["docker"] == 0 || seen["redis"] == 0 {
		t.Errorf("tags = %v, want tech keywords from content", tags)
	}
	if seen["ops"] == 0 {
		t.Errorf("tags = %v, want trimmed meta keyword", tags)
	}

	// 标题大写词最多取 5 个，总量不超过 10
	many := extractArticleTags(
		"python javascript java react vue docker kubernetes api database sql",
		"Alpha Bravo Charlie Delta Echo Foxtrot Golf",
		nil,
	)
	if len(many) != 10 {
		t.Errorf("len(tags) = %d, want capped at 10", len(many))
	}
	for _, unwanted := range []string{"Foxtrot", "Golf"} {
		for _, tag := range many {
			if tag == unwanted {
				t.Errorf("tags = %v, want at most 5 capitalized title words", many)
			}
		}
	}
}
