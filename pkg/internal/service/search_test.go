package service

import (
	"strings"
	"testing"
)

// TestBuildFinalQuery 测试分类与标签拼进查询词的规则.
func TestBuildFinalQuery(t *testing.T) {
	cases := []struct {
		query      string
		categories []string
		tags       []string
		want       string
	}{
		{"golang", nil, nil, "golang"},
		{"golang", []string{"tutorial"}, nil, "golang tutorial"},
		{"golang", nil, []string{"docker", "  ", "redis"}, "golang docker redis"},
		{"", []string{"news"}, nil, "news"},
		{"", nil, nil, ""},
		{"  golang  ", nil, nil, "  golang  "},
	}

	for _, c := range cases {
		got := buildFinalQuery(c.query, c.categories, c.tags)
		if got != c.want {
			t.Errorf("buildFinalQuery(%q, %v, %v) = %q, want %q", c.query, c.categories, c.tags, got, c.want)
		}
	}
}

// TestKeywordClause 测试关键词子查询的结构：多字段匹配加两个前缀短语.
func TestKeywordClause(t *testing.T) {
	clause := keywordClause("golang")

	boolPart, ok := clause["bool"].(map[string]any)
	if !ok {
		t.Fatal("clause missing bool wrapper")
	}
	if boolPart["minimum_should_match"] != 1 {
		t.Errorf("minimum_should_match = %v, want 1", boolPart["minimum_should_match"])
	}

	should, ok := boolPart["should"].([]any)
	if !ok || len(should) != 3 {
		t.Fatalf("should = %v, want 3 sub-queries", boolPart["should"])
	}

	first, ok := should[0].(map[string]any)
	if !ok {
		t.Fatal("first should clause is not a map")
	}
	multiMatch := mapField(first, "multi_match")
	if multiMatch == nil {
		t.Fatal("first should clause missing multi_match")
	}
	if multiMatch["query"] != "golang" || multiMatch["fuzziness"] != "AUTO" {
		t.Errorf("multi_match = %v", multiMatch)
	}
	fields, ok := multiMatch["fields"].([]string)
	if !ok || len(fields) != len(searchFields) || fields[0] != "title^3" {
		t.Errorf("fields = %v, want weighted search fields", multiMatch["fields"])
	}

	second, _ := should[1].(map[string]any)
	titlePrefix := mapField(mapField(second, "match_phrase_prefix"), "title")
	if titlePrefix["query"] != "golang" {
		t.Errorf("title phrase prefix = %v", titlePrefix)
	}
}

// TestHitsFromResponse 测试命中列表与 total 的解析.
func TestHitsFromResponse(t *testing.T) {
	resp := map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": float64(42)},
			"hits": []any{
				map[string]any{"_id": "a"},
				map[string]any{"_id": "b"},
				"garbage entry",
			},
		},
	}

	hits, total := hitsFromResponse(resp)
	if total != 42 {
		t.Errorf("total = %d, want 42", total)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want non-map entries dropped", len(hits))
	}

	hits, total = hitsFromResponse(map[string]any{})
	if total != 0 || len(hits) != 0 {
		t.Errorf("empty response: hits=%v total=%d", hits, total)
	}
}

// TestMapSearchHits 测试命中压平：预览截断、标题回退与高亮提取.
func TestMapSearchHits(t *testing.T) {
	hits := []map[string]any{
		{
			"_id":    "doc-1",
			"_score": float64(1.5),
			"_source": map[string]any{
				"title":            "Upload Guide",
				"content":          "step one step two step three",
				"bucket_name":      "articles",
				"object_name":      "guides/upload.md",
				"document_type":    "markdown",
				"size":             float64(2048),
				"content_type":     "text/markdown",
				"minio_public_url": "http://storage.local/articles/guides/upload.md",
				"statistics":       map[string]any{"word_count": float64(6)},
			},
			"highlight": map[string]any{
				"content": []any{"<em>step</em> one", 42},
			},
		},
		{
			"_id": "doc-2",
			"_source": map[string]any{
				"object_name":  "misc/raw.txt",
				"content_full": "fallback body text",
			},
		},
	}

	results := mapSearchHits(hits, 10)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d", len(results))
	}

	first := results[0]
	if first.ID != "doc-1" || first.Score != 1.5 {
		t.Errorf("first = %+v", first)
	}
	if first.Content != "step one s..." {
		t.Errorf("Content = %q, want 10-rune preview with ellipsis", first.Content)
	}
	if first.Size != 2048 || first.BucketName != "articles" {
		t.Errorf("first = %+v", first)
	}
	if got := first.Highlight["content"]; len(got) != 1 || got[0] != "<em>step</em> one" {
		t.Errorf("Highlight = %v, want non-string fragments dropped", first.Highlight)
	}
	if first.Statistics["word_count"] != float64(6) {
		t.Errorf("Statistics = %v", first.Statistics)
	}

	second := results[1]
	if second.Title != "misc/raw.txt" {
		t.Errorf("Title = %q, want object name fallback", second.Title)
	}
	if !strings.HasPrefix(second.Content, "fallback b") {
		t.Errorf("Content = %q, want preview from content_full", second.Content)
	}
}

// TestIsGapValue 测试字段缺口判定.
func TestIsGapValue(t *testing.T) {
	gaps := []any{nil, "", float64(0), 0, false}
	for _, v := range gaps {
		if !isGapValue(v) {
			t.Errorf("isGapValue(%#v) = false, want true", v)
		}
	}

	filled := []any{"x", float64(3), 7, true, []any{}}
	for _, v := range filled {
		if isGapValue(v) {
			t.Errorf("isGapValue(%#v) = true, want false", v)
		}
	}
}

// TestFillZeroCounters 测试计数字段的零值兜底.
func TestFillZeroCounters(t *testing.T) {
	article := map[string]any{"title": "keep me"}
	fillZeroCounters(article)

	if article["title"] != "keep me" {
		t.Error("existing fields should be untouched")
	}
	for _, key := range []string{"view_count", "like_count", "share_count", "comment_count"} {
		if article[key] != 0 {
			t.Errorf("%s = %v, want 0", key, article[key])
		}
	}
	if article["featured"] != false || article["member_only"] != false {
		t.Error("boolean counters should default to false")
	}
}

// TestFieldHelpers 测试 ES 响应字段取值辅助函数.
func TestFieldHelpers(t *testing.T) {
	m := map[string]any{
		"str":   "value",
		"empty": "",
		"f64":   float64(1.5),
		"int":   3,
		"i64":   int64(9),
		"map":   map[string]any{"k": "v"},
		"slice": []any{"a"},
	}

	if strField(m, "str") != "value" || strField(m, "missing") != "" {
		t.Error("strField mismatch")
	}
	if strOr(m, "empty", "fallback") != "fallback" || strOr(m, "str", "fallback") != "value" {
		t.Error("strOr mismatch")
	}
	if numField(m, "f64") != 1.5 || numField(m, "int") != 3 || numField(m, "i64") != 9 || numField(m, "str") != 0 {
		t.Error("numField mismatch")
	}
	if mapField(m, "map")["k"] != "v" || mapField(m, "missing") != nil {
		t.Error("mapField mismatch")
	}
	if mapOr(m, "missing") == nil {
		t.Error("mapOr should return empty map for missing key")
	}
	if len(sliceField(m, "slice")) != 1 || sliceField(m, "missing") == nil {
		t.Error("sliceField mismatch")
	}
	if emptyIfNil(nil) == nil || len(emptyIfNil([]string{"a"})) != 1 {
		t.Error("emptyIfNil mismatch")
	}
}
