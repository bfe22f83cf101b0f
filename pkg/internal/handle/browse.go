package handle

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filecdn/pkg/internal/model"
)

//go:embed templates/browse.html
var templatesFS embed.FS

var browseTemplate = template.Must(template.New("browse.html").Funcs(template.FuncMap{
	"isImage": func(mimeType string) bool { return strings.HasPrefix(mimeType, "image/") },
}).ParseFS(templatesFS, "templates/browse.html"))

// browseJSON 转义 <、>、& 后可以安全地内联到 <script> 中.
var browseJSON = sonic.Config{EscapeHTML: true, NoNullSliceOrMap: true}.Froze()

type browsePage struct {
	Title     string
	PublicURL string
	Files     []model.FileRecord
	FilesJSON template.JS
}

// Browse GET / 渲染全部文件的浏览页.
func (h *Handlers) Browse(c *gin.Context) {
	records, err := h.files.ListAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	raw, err := browseJSON.Marshal(records)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode browse page files failed")
		writeError(c, http.StatusInternalServerError, "failed to render page")

		return
	}

	page := browsePage{
		Title:     h.title,
		PublicURL: h.publicURL,
		Files:     records,
		FilesJSON: template.JS(raw), //nolint:gosec // HTML 字符已转义
	}

	var buf bytes.Buffer
	if err := browseTemplate.Execute(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("render browse page failed")
		writeError(c, http.StatusInternalServerError, "failed to render page")

		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
