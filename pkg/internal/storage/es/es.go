// Package es 封装 go-elasticsearch 客户端，提供索引读写与查询的便捷方法，
// 以及文章/文档索引的创建与迁移（见 indices.go）.
package es

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// Client 包装 Elasticsearch 客户端.
type Client struct {
	*elasticsearch.Client

	cfg configs.ESConfig
}

// New 初始化 Elasticsearch 客户端并做一次连通性校验.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().ES

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.GetAddressURL()},
	}
	if cfg.HasAuth() {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	cli, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := cli.Ping(cli.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return nil, fmt.Errorf("ping elasticsearch: %s", res.Status())
	}

	nlog.Logger().Info().Str("address", cfg.GetAddressURL()).Msg("elasticsearch connected")

	return &Client{Client: cli, cfg: cfg}, nil
}

// Config 返回客户端使用的配置.
func (c *Client) Config() configs.ESConfig {
	return c.cfg
}

// HealthCheck 通过 Ping 验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	res, err := c.Ping(c.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return fmt.Errorf("elasticsearch unhealthy: %s", res.Status())
	}

	return nil
}

// Close 关闭客户端连接（HTTP 客户端无需显式关闭，接口兼容）.
func (c *Client) Close() error {
	return nil
}

// SearchBody 对指定索引执行查询，body 为查询 DSL，返回解析后的完整响应.
func (c *Client) SearchBody(ctx context.Context, index string, body map[string]any) (map[string]any, error) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(index),
		c.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return nil, responseError("search "+index, res.StatusCode, res.Body)
	}

	return decodeBody(res.Body)
}

// IndexDoc 写入（或覆盖）指定 ID 的文档.
func (c *Client) IndexDoc(ctx context.Context, index, docID string, doc any) error {
	payload, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := c.Index(
		index,
		bytes.NewReader(payload),
		c.Index.WithContext(ctx),
		c.Index.WithDocumentID(docID),
	)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, docID, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return responseError(fmt.Sprintf("index %s/%s", index, docID), res.StatusCode, res.Body)
	}

	return nil
}

// GetDoc 按 ID 取文档 _source，found 为 false 表示文档不存在.
func (c *Client) GetDoc(ctx context.Context, index, docID string) (map[string]any, bool, error) {
	res, err := c.Get(index, docID, c.Get.WithContext(ctx))
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", index, docID, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode == 404 {
		return nil, false, nil
	}

	if res.IsError() {
		return nil, false, responseError(fmt.Sprintf("get %s/%s", index, docID), res.StatusCode, res.Body)
	}

	doc, err := decodeBody(res.Body)
	if err != nil {
		return nil, false, err
	}

	source, _ := doc["_source"].(map[string]any)

	return source, true, nil
}

// DeleteDoc 按 ID 删除文档，found 为 false 表示文档本就不存在.
func (c *Client) DeleteDoc(ctx context.Context, index, docID string) (bool, error) {
	res, err := c.Delete(index, docID, c.Delete.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", index, docID, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode == 404 {
		return false, nil
	}

	if res.IsError() {
		return false, responseError(fmt.Sprintf("delete %s/%s", index, docID), res.StatusCode, res.Body)
	}

	return true, nil
}

// CountDocs 统计索引内文档总数.
func (c *Client) CountDocs(ctx context.Context, index string) (int64, error) {
	res, err := c.Count(c.Count.WithContext(ctx), c.Count.WithIndex(index))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return 0, responseError("count "+index, res.StatusCode, res.Body)
	}

	doc, err := decodeBody(res.Body)
	if err != nil {
		return 0, err
	}

	count, _ := doc["count"].(float64)

	return int64(count), nil
}

// decodeBody 解析 ES 响应体.
func decodeBody(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var doc map[string]any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	return doc, nil
}

// responseError 读取错误响应体，拼出带上下文的错误.
func responseError(op string, status int, body io.Reader) error {
	data, _ := io.ReadAll(body)

	return fmt.Errorf("%s: status %d: %s", op, status, strings.TrimSpace(string(data)))
}
