// Package handle 提供 HTTP 请求处理器：把请求翻译为文件服务调用，把错误种类翻译为状态码.
package handle

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/internal/errs"
	"github.com/yeisme/filecdn/pkg/internal/model"
	"github.com/yeisme/filecdn/pkg/rule"
)

// DefaultMaxUploadSize 未配置时单个上传文件的大小上限.
const DefaultMaxUploadSize int64 = 32 << 20

// FileService 处理器依赖的文件服务.
type FileService interface {
	CreateFile(ctx context.Context, name, mimeType string, data []byte) (string, error)
	GetFile(ctx context.Context, id string) (*model.File, error)
	UpdateFile(ctx context.Context, id, name, mimeType string, data []byte) (*model.File, error)
	ListAll(ctx context.Context) ([]model.FileRecord, error)
	Search(ctx context.Context, query string, field model.Field) ([]model.FileRecord, error)
}

// Pinger 可探活的后端.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options 处理器配置.
type Options struct {
	PublicURL     string // 浏览页预览链接的前缀
	PageTitle     string
	MaxUploadSize int64
	Meta          Pinger
	Content       Pinger
	Logger        *zerolog.Logger
}

// Handlers 文件 CDN 的全部处理器.
type Handlers struct {
	files     FileService
	publicURL string
	title     string
	maxUpload int64
	meta      Pinger
	content   Pinger
	logger    *zerolog.Logger
}

// New 创建处理器.
func New(files FileService, opts Options) *Handlers {
	// gin 的 binding 与 rule 共用同一个 validator，需要在首次绑定前完成注册
	rule.Engine()

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}

	if opts.Logger == nil {
		l := zerolog.Nop()
		opts.Logger = &l
	}

	return &Handlers{
		files:     files,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		title:     opts.PageTitle,
		maxUpload: opts.MaxUploadSize,
		meta:      opts.Meta,
		content:   opts.Content,
		logger:    opts.Logger,
	}
}

// ErrorResponse 错误响应体.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    msg,
		Error:      http.StatusText(status),
	})
}

// writeServiceError 按错误种类选择状态码. StorageFailure 只返回通用信息.
func (h *Handlers) writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch errs.KindOf(err) {
	case errs.KindInvalidInput:
		writeError(c, http.StatusBadRequest, errs.Message(err))
	case errs.KindNotFound:
		writeError(c, http.StatusNotFound, errs.Message(err))
	case errs.KindStorageFailure, errs.KindUnknown:
		writeError(c, http.StatusInternalServerError, errs.Message(err))
	}
}
