// Package model 定义文件元数据记录以及与之相关的纯函数工具.
package model

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IDLength 标识符的十六进制长度（ObjectID 的外部形式）.
const IDLength = 24

// ErrNoExtension 文件名中没有可解析的扩展名.
var ErrNoExtension = errors.New("file name has no extension")

// Field 搜索时用于比较的记录字段.
type Field string

const (
	FieldID   Field = "id"   // 记录标识符的十六进制形式
	FieldName Field = "name" // 原始文件名
	FieldType Field = "type" // MIME 类型
)

// FileRecord 文件元数据记录. JSON 字段名与持久化文档保持一致: { _id, name, ext, type }.
type FileRecord struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Extension string `json:"ext"`
	MimeType  string `json:"type"`
}

// Project 返回用于匹配的字段取值.
func (r *FileRecord) Project(field Field) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldType:
		return r.MimeType
	default:
		return ""
	}
}

// Patch 部分更新，nil 字段保持不变.
type Patch struct {
	Name      *string
	Extension *string
	MimeType  *string
}

// Apply 将 patch 合并到记录上.
func (p Patch) Apply(r *FileRecord) {
	if p.Name != nil {
		r.Name = *p.Name
	}

	if p.Extension != nil {
		r.Extension = *p.Extension
	}

	if p.MimeType != nil {
		r.MimeType = *p.MimeType
	}
}

// File 元数据与内容的组合.
type File struct {
	FileRecord

	Content []byte `json:"-"`
}

// Extension 取最后一个 "." 之后的部分，大小写保持原样.
func Extension(name string) (string, error) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "", ErrNoExtension
	}

	return name[idx+1:], nil
}

// ValidID 判断 id 是否为 24 位小写十六进制字符串.
func ValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// ETag 内容的 xxhash64 十六进制摘要，不带引号.
func ETag(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
