package vglog

import "errors"

// 错误分类哨兵：核心自身检测到的故障以这些错误之一（或其包装）向上抛出，不做
// 恢复；Source.Next 返回的错误则原样向上传递，不另行包装。errors.Is
// 仍能穿透包装匹配到这些哨兵；raise 点（block.go/epoch.go）用 fmt.Errorf("%w: ...")
// 把实际触发的上限值（用 go-humanize 格式化为可读字节数）附加到消息里，而不是
// 让调用方对着一句不带数字的诊断猜测具体是哪个上限。
var (
	// ErrLineTooLong: 单行超过 MaxLineLength。
	ErrLineTooLong = errors.New("vglog: line exceeds maximum length")
	// ErrBlockTooLarge: 单块 raw 聚合超过 MaxBlockSize。
	ErrBlockTooLarge = errors.New("vglog: block exceeds maximum size")
	// ErrPendingOverflow: Pending 队列超过 MaxPendingBlocks。
	ErrPendingOverflow = errors.New("vglog: pending queue exceeds maximum size")
	// ErrSinkWrite: 写出到 sink 失败。
	ErrSinkWrite = errors.New("vglog: sink write failed")
	// ErrSourceRead: 从输入源读取失败。
	ErrSourceRead = errors.New("vglog: source read failed")
)
