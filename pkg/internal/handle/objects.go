package handle

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/rule"
)

// ListObjects 列出桶内对象，支持前缀过滤与递归列举.
//
//	@Summary		列出对象
//	@Description	列出指定存储桶内的对象，支持前缀过滤、递归列举与数量上限
//	@Tags			对象管理
//	@Produce		json
//	@Param			bucket		path		string	true	"桶名"
//	@Param			prefix		query		string	false	"对象键前缀"
//	@Param			recursive	query		bool	false	"是否递归列出子目录"
//	@Param			max_keys	query		int		false	"最大返回数量（默认 1000）"
//	@Success		200			{object}	types.ListObjectsResponse	"对象列表"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		404			{object}	map[string]string			"存储桶不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/objects/{bucket} [get]
func ListObjects(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket")

	var req types.ListObjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.ListObjects(c.Request.Context(), bucket, &req)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("list objects failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadObject 接收 multipart 文件并走上传索引流水线.
//
//	@Summary		上传对象
//	@Description	上传文件到指定存储桶，文档类型文件会同步写入全文索引；metadata 为可选 JSON 对象
//	@Tags			对象管理
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			bucket		path		string	true	"桶名"
//	@Param			file		formData	file	true	"上传的文件"
//	@Param			object_name	formData	string	false	"对象键，缺省使用文件名"
//	@Param			metadata	formData	string	false	"自定义元数据（JSON 对象）"
//	@Success		200			{object}	types.UploadObjectResponse	"上传与索引结果"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		404			{object}	map[string]string			"存储桶不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/objects/{bucket}/upload [post]
func UploadObject(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket")

	file, err := c.FormFile("file")
	if err != nil {
		l.Warn().Err(err).Msg("missing upload file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload file"})

		return
	}

	src, err := file.Open()
	if err != nil {
		l.Error().Err(err).Msg("open upload file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		l.Error().Err(err).Msg("read upload file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	key := c.PostForm("object_name")
	if key == "" {
		key = file.Filename
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// 可选自定义元数据，JSON 对象字符串
	var metadata map[string]string
	if raw := c.PostForm("metadata"); raw != "" {
		if err := sonic.Unmarshal([]byte(raw), &metadata); err != nil {
			l.Warn().Err(err).Msg("invalid metadata json")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metadata json"})

			return
		}
	}

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.UploadObject(c.Request.Context(), bucket, key, data, contentType, metadata)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("upload object failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetObject 处理对象读取类请求. 路由使用通配 key，按路径后缀分发：
// /public-url 返回公共访问地址，/presigned-url 返回预签名地址，
// /stat 返回元数据，其余情况下载对象内容.
//
//	@Summary		下载对象
//	@Description	下载对象内容；key 以 /stat、/public-url、/presigned-url 结尾时分别返回元数据、公共 URL、预签名 URL
//	@Tags			对象管理
//	@Produce		octet-stream
//	@Param			bucket	path		string	true	"桶名"
//	@Param			key		path		string	true	"对象键"
//	@Success		200		{file}		binary	"对象内容"
//	@Failure		404		{object}	map[string]string	"对象不存在"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Router			/api/v1/objects/{bucket}/{key} [get]
func GetObject(c *gin.Context) {
	bucket := c.Param("bucket")
	key := strings.TrimPrefix(c.Param("key"), "/")

	switch {
	case strings.HasSuffix(key, "/public-url"):
		getPublicURL(c, bucket, strings.TrimSuffix(key, "/public-url"))
	case strings.HasSuffix(key, "/presigned-url"):
		getPresignedURL(c, bucket, strings.TrimSuffix(key, "/presigned-url"))
	case strings.HasSuffix(key, "/stat"):
		getObjectStat(c, bucket, strings.TrimSuffix(key, "/stat"))
	default:
		downloadObject(c, bucket, key)
	}
}

func downloadObject(c *gin.Context, bucket, key string) {
	l := log.Logger()

	svc := service.NewObjectService(c.Request.Context())

	data, stat, err := svc.DownloadObject(c.Request.Context(), bucket, key)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("download object failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if stat.ETag != "" {
		c.Header("ETag", strconv.Quote(stat.ETag))
	}

	if !stat.LastModified.IsZero() {
		c.Header("Last-Modified", stat.LastModified.UTC().Format(http.TimeFormat))
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	c.Data(http.StatusOK, contentType, data)
}

func getObjectStat(c *gin.Context, bucket, key string) {
	l := log.Logger()

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.StatObject(c.Request.Context(), bucket, key)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("stat object failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

func getPublicURL(c *gin.Context, bucket, key string) {
	l := log.Logger()

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.PublicURL(c.Request.Context(), bucket, key)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("get public url failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

func getPresignedURL(c *gin.Context, bucket, key string) {
	l := log.Logger()

	var req types.PresignedURLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.PresignedURL(c.Request.Context(), bucket, key, &req)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("presign url failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// HeadObject 以响应头形式返回对象元数据，正文为空.
//
//	@Summary		查询对象头信息
//	@Description	通过 HEAD 请求返回对象大小、类型、ETag 与最后修改时间，不返回内容
//	@Tags			对象管理
//	@Param			bucket	path	string	true	"桶名"
//	@Param			key		path	string	true	"对象键"
//	@Success		200		"对象元数据响应头"
//	@Failure		404		{object}	map[string]string	"对象不存在"
//	@Router			/api/v1/objects/{bucket}/{key} [head]
func HeadObject(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket")
	key := strings.TrimPrefix(c.Param("key"), "/")

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.StatObject(c.Request.Context(), bucket, key)
	if err != nil {
		l.Warn().Err(err).Str("bucket", bucket).Str("object", key).Msg("head object failed")
		c.Status(errStatus(err))

		return
	}

	c.Header("Content-Length", strconv.FormatInt(resp.Size, 10))

	if resp.ContentType != "" {
		c.Header("Content-Type", resp.ContentType)
	}

	if resp.ETag != "" {
		c.Header("ETag", strconv.Quote(resp.ETag))
	}

	if resp.LastModified != "" {
		c.Header("Last-Modified", resp.LastModified)
	}

	c.Status(http.StatusOK)
}

// DeleteObject 删除对象并清理其索引文档.
//
//	@Summary		删除对象
//	@Description	删除指定对象，同时尽力清理全文索引中的对应文档
//	@Tags			对象管理
//	@Produce		json
//	@Param			bucket	path		string						true	"桶名"
//	@Param			key		path		string						true	"对象键"
//	@Success		200		{object}	types.DeleteObjectResponse	"删除结果"
//	@Failure		404		{object}	map[string]string			"对象不存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/objects/{bucket}/{key} [delete]
func DeleteObject(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket")
	key := strings.TrimPrefix(c.Param("key"), "/")

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.DeleteObject(c.Request.Context(), bucket, key)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Str("object", key).Msg("delete object failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CopyObject 在桶之间复制对象.
//
//	@Summary		复制对象
//	@Description	将对象从源桶复制到目标桶，目标键缺省沿用源键
//	@Tags			对象管理
//	@Accept			json
//	@Produce		json
//	@Param			copy	body		types.CopyObjectRequest		true	"对象复制请求"
//	@Success		200		{object}	types.CopyObjectResponse	"复制结果"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		404		{object}	map[string]string			"源对象不存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/objects/copy [post]
func CopyObject(c *gin.Context) {
	l := log.Logger()

	var req types.CopyObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewObjectService(c.Request.Context())

	resp, err := svc.CopyObject(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).
			Str("source", req.SourceBucket+"/"+req.SourceObject).
			Str("dest", req.DestBucket+"/"+req.DestObject).
			Msg("copy object failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
