// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：<域>.<动作>，发布时由 MQ 客户端加上配置的前缀（默认 "filecdn"）.
const (
	// TopicFileCreated 文件元数据与内容都已写入.
	TopicFileCreated = "file.created"
	// TopicFileUpdated 文件元数据与内容都已被替换.
	TopicFileUpdated = "file.updated"
)

// Topics 返回全部已知主题.
func Topics() []string {
	return []string{TopicFileCreated, TopicFileUpdated}
}
