package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 事件中携带的文件信息，字段与元数据文档一致.
type FileRef struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Extension string `json:"ext"`
	MimeType  string `json:"type"`
	Size      int    `json:"size"`
	ETag      string `json:"etag,omitempty"`
}

// FileCreatedPayload 新文件已上传.
type FileCreatedPayload struct {
	File  FileRef `json:"file"`
	Stage string  `json:"stage,omitempty"`
	URL   string  `json:"url,omitempty"` // 公开下载地址
}

// FileUpdatedPayload 已有文件的元数据与内容被替换.
type FileUpdatedPayload struct {
	File     FileRef `json:"file"`
	PrevName string  `json:"prev_name,omitempty"`
	Stage    string  `json:"stage,omitempty"`
	URL      string  `json:"url,omitempty"`
}
