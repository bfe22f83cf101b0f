package handle

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filecdn/pkg/internal/model"
)

// FormField 上传表单中文件字段名.
const FormField = "file"

const (
	defaultMimeType = "application/octet-stream"
	// multipartOverhead 请求体上限在文件大小上限之外预留的表单开销.
	multipartOverhead = 1 << 20
)

type idParam struct {
	ID string `uri:"id" rule:"required,objectid"`
}

type searchQuery struct {
	ID   string `form:"id"   rule:"omitempty,max=24"`
	Name string `form:"name"`
	Type string `form:"type"`
}

// Upload POST / 保存上传文件，返回 201 与 JSON 字符串形式的 id.
func (h *Handlers) Upload(c *gin.Context) {
	name, mimeType, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	id, err := h.files.CreateFile(c.Request.Context(), name, mimeType, data)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, id)
}

// Download GET /:id 返回文件内容.
func (h *Handlers) Download(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		writeError(c, http.StatusBadRequest, "id must be a 24 character hex string")
		return
	}

	f, err := h.files.GetFile(c.Request.Context(), p.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	writeFile(c, http.StatusOK, f)
}

// Replace PUT /:id 替换已有文件的名称、类型与内容，返回新内容.
func (h *Handlers) Replace(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		writeError(c, http.StatusBadRequest, "id must be a 24 character hex string")
		return
	}

	name, mimeType, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	f, err := h.files.UpdateFile(c.Request.Context(), p.ID, name, mimeType, data)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	writeFile(c, http.StatusOK, f)
}

// Search GET /search 按 id、name、type 之一模糊搜索，同时给出多个时按此顺序取第一个.
func (h *Handlers) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "id must be at most 24 characters")
		return
	}

	query, field, ok := searchTarget(c)
	if !ok {
		writeError(c, http.StatusBadRequest, "one of id, name or type is required")
		return
	}

	records, err := h.files.Search(c.Request.Context(), query, field)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// searchTarget 取第一个出现的查询参数. 参数出现但为空串时同样生效，空查询匹配全部记录.
func searchTarget(c *gin.Context) (string, model.Field, bool) {
	for _, p := range []struct {
		key   string
		field model.Field
	}{
		{"id", model.FieldID},
		{"name", model.FieldName},
		{"type", model.FieldType},
	} {
		if v, ok := c.GetQuery(p.key); ok {
			return v, p.field, true
		}
	}

	return "", "", false
}

// readUpload 读取 multipart 中的文件字段. 失败时已写好响应并返回 ok=false.
func (h *Handlers) readUpload(c *gin.Context) (name, mimeType string, data []byte, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)

	fh, err := c.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "file is too large")
			return "", "", nil, false
		}

		writeError(c, http.StatusBadRequest, "a file is required in form field \""+FormField+"\"")

		return "", "", nil, false
	}

	if fh.Size > h.maxUpload {
		writeError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return "", "", nil, false
	}

	data, err = readFormFile(fh)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", fh.Filename).Msg("read upload failed")
		writeError(c, http.StatusBadRequest, "unable to read uploaded file")

		return "", "", nil, false
	}

	mimeType = fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	return fh.Filename, mimeType, data, true
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// writeFile 写出文件内容以及 Content-Type、Content-Disposition、ETag.
func writeFile(c *gin.Context, status int, f *model.File) {
	etag := `"` + model.ETag(f.Content) + `"`

	c.Header("Content-Disposition", `attachment; filename="`+escapeQuotes(f.Name)+`"`)
	c.Header("ETag", etag)

	if status == http.StatusOK && c.Request.Method == http.MethodGet && c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	c.Data(status, mimeType, f.Content)
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
