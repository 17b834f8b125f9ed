package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
)

// ListBuckets 列出当前后端的全部存储桶.
//
//	@Summary		列出存储桶
//	@Description	列出当前对象存储后端的所有存储桶，按名称返回桶名与创建时间
//	@Tags			存储桶管理
//	@Produce		json
//	@Success		200	{object}	types.ListBucketsResponse	"存储桶列表"
//	@Failure		500	{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/buckets [get]
func ListBuckets(c *gin.Context) {
	l := log.Logger()

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.ListBuckets(c.Request.Context())
	if err != nil {
		l.Error().Err(err).Msg("list buckets failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateBucket 创建存储桶，桶已存在时返回 409.
//
//	@Summary		创建存储桶
//	@Description	创建新的存储桶，桶名需符合 S3 命名规范（3-63 字符）
//	@Tags			存储桶管理
//	@Accept			json
//	@Produce		json
//	@Param			bucket	body		types.CreateBucketRequest	true	"创建存储桶请求"
//	@Success		200		{object}	types.CreateBucketResponse	"创建结果"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		409		{object}	map[string]string			"存储桶已存在"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/buckets [post]
func CreateBucket(c *gin.Context) {
	l := log.Logger()

	var req types.CreateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.CreateBucket(c.Request.Context(), req.BucketName)
	if err != nil {
		l.Error().Err(err).Str("bucket", req.BucketName).Msg("create bucket failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteBucket 删除指定存储桶，桶不存在时返回 404.
//
//	@Summary		删除存储桶
//	@Description	删除指定的存储桶，桶内仍有对象时由后端拒绝
//	@Tags			存储桶管理
//	@Produce		json
//	@Param			bucket_name	path		string						true	"桶名"
//	@Success		200			{object}	types.DeleteBucketResponse	"删除结果"
//	@Failure		404			{object}	map[string]string			"存储桶不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/buckets/{bucket_name} [delete]
func DeleteBucket(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket_name")

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.DeleteBucket(c.Request.Context(), bucket)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("delete bucket failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBucketPolicy 查询桶的访问策略，未设置策略时返回空 policy.
//
//	@Summary		查询桶策略
//	@Description	查询指定存储桶的 S3 访问策略 JSON 文档
//	@Tags			存储桶管理
//	@Produce		json
//	@Param			bucket_name	path		string						true	"桶名"
//	@Success		200			{object}	types.BucketPolicyResponse	"桶策略"
//	@Failure		404			{object}	map[string]string			"存储桶不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/buckets/{bucket_name}/policy [get]
func GetBucketPolicy(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket_name")

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.GetBucketPolicy(c.Request.Context(), bucket)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("get bucket policy failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetBucketPolicy 设置桶的访问策略.
//
//	@Summary		设置桶策略
//	@Description	为指定存储桶设置 S3 访问策略，policy 为完整的策略 JSON 文档
//	@Tags			存储桶管理
//	@Accept			json
//	@Produce		json
//	@Param			bucket_name	path		string						true	"桶名"
//	@Param			policy		body		types.BucketPolicyRequest	true	"桶策略请求"
//	@Success		200			{object}	types.BucketPolicyResponse	"设置后的桶策略"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		404			{object}	map[string]string			"存储桶不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/buckets/{bucket_name}/policy [put]
func SetBucketPolicy(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket_name")

	var req types.BucketPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.SetBucketPolicy(c.Request.Context(), bucket, req.Policy)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("set bucket policy failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// MakeBucketPublic 为桶设置匿名只读策略.
//
//	@Summary		设置桶公共读
//	@Description	为指定存储桶设置匿名只读策略，桶内对象可通过公共 URL 直接访问
//	@Tags			存储桶管理
//	@Produce		json
//	@Param			bucket_name	path		string							true	"桶名"
//	@Success		200			{object}	types.MakeBucketPublicResponse	"设置结果"
//	@Failure		404			{object}	map[string]string				"存储桶不存在"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/buckets/{bucket_name}/make-public [put]
func MakeBucketPublic(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket_name")

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.MakeBucketPublic(c.Request.Context(), bucket)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("make bucket public failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// MakeBucketPrivate 清除桶策略，恢复默认私有访问.
//
//	@Summary		设置桶私有
//	@Description	清除指定存储桶的访问策略，恢复为默认私有
//	@Tags			存储桶管理
//	@Produce		json
//	@Param			bucket_name	path		string							true	"桶名"
//	@Success		200			{object}	types.MakeBucketPublicResponse	"设置结果"
//	@Failure		404			{object}	map[string]string				"存储桶不存在"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/buckets/{bucket_name}/make-private [put]
func MakeBucketPrivate(c *gin.Context) {
	l := log.Logger()

	bucket := c.Param("bucket_name")

	svc := service.NewBucketService(c.Request.Context())

	resp, err := svc.MakeBucketPrivate(c.Request.Context(), bucket)
	if err != nil {
		l.Error().Err(err).Str("bucket", bucket).Msg("make bucket private failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// StorageInfo 返回当前对象存储后端的配置信息.
//
//	@Summary		查询存储后端信息
//	@Description	返回当前对象存储后端类型、地址与配置完整性检查结果
//	@Tags			存储桶管理
//	@Produce		json
//	@Success		200	{object}	types.StorageInfoResponse	"存储后端信息"
//	@Router			/api/v1/buckets/storage/info [get]
func StorageInfo(c *gin.Context) {
	svc := service.NewBucketService(c.Request.Context())

	c.JSON(http.StatusOK, svc.StorageInfo(c.Request.Context()))
}
