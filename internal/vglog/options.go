package vglog

// Options 为运行期只读配置：由外部装配层构造并校验，核心状态机只读取。
type Options struct {
	// Marker: 触发 epoch 裁剪的标记子串（按原始输入行的字节子串匹配）。
	Marker string
	// Depth: 签名深度；0 表示使用整块签名。
	Depth int
	// Trim: 是否启用基于 Marker 的裁剪。
	Trim bool
	// ScrubRaw: 是否对 raw 输出做清理（移除地址/at:/by:/???）。
	ScrubRaw bool
	// StreamMode: 是否使用流式 Epoch 控制器（否则为缓冲模式）。
	StreamMode bool
}

const (
	// DefaultMarker 为未显式配置时的标记文本。
	DefaultMarker = "Successfully downloaded debug"
	// DefaultDepth 为未显式配置时的签名深度。
	DefaultDepth = 1

	// MaxLineLength 为单行允许的最大字节数（含内容，不含换行符）。
	MaxLineLength = 1 << 20 // 1 MiB
	// MaxBlockSize 为单个块 raw 缓冲允许的最大聚合字节数。
	MaxBlockSize = 10 << 20 // 10 MiB
	// MaxPendingBlocks 为流式裁剪模式下 Pending 队列的最大块数。
	MaxPendingBlocks = 1000
	// MaxDepth 为签名深度允许的最大值。
	MaxDepth = 1000
	// MaxMarkerLen 为标记字符串允许的最大字节数。
	MaxMarkerLen = 1024
)

// DefaultOptions 返回 §6.1 所列的默认配置。
func DefaultOptions() Options {
	return Options{
		Marker:     DefaultMarker,
		Depth:      DefaultDepth,
		Trim:       true,
		ScrubRaw:   true,
		StreamMode: false,
	}
}
