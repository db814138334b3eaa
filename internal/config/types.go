package config

// Config 是运行期只读配置的装配表示（一次解析，运行期不变）。
// JSON/YAML 均使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Input 是要处理的文件路径，或 "-" 表示标准输入；空字符串会被 Validate 拒绝。
	Input string `json:"input" yaml:"input"`

	Marker     string `json:"marker" yaml:"marker"`
	Depth      int    `json:"depth" yaml:"depth"`
	Trim       bool   `json:"trim" yaml:"trim"`
	ScrubRaw   bool   `json:"scrub_raw" yaml:"scrub_raw"`
	StreamMode bool   `json:"stream_mode" yaml:"stream_mode"`

	// Progress 打开终端进度提示（§6.2 的 progress.report 钩子）。
	Progress bool `json:"progress" yaml:"progress"`
	// Memory 打开开始/结束时的内存占用报告。
	Memory bool `json:"memory" yaml:"memory"`

	Logging Logging `json:"logging" yaml:"logging"`

	// 以下字段仅供 Merge/EnvOverlay 区分"显式设置为假值"与"未设置"，不参与
	// 文件序列化（bool 的零值与"未设置"在 JSON/YAML 层面无法区分）。
	trimSet       bool
	scrubRawSet   bool
	streamModeSet bool
	progressSet   bool
	memorySet     bool
}

// Logging 控制结构化日志的级别、落盘目录与轮转阈值。
type Logging struct {
	Level string `json:"level" yaml:"level"`
	// Dir 是 RotatingFile 写入日志的目录；相对路径相对于运行时 cwd。
	Dir string `json:"dir" yaml:"dir"`
	// MaxBytes 是单个日志文件在触发轮转前允许增长到的最大字节数。
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`
}

// SetTrim 设置 Trim 并标记为显式设置，供 Merge 区分"未设置"与"显式为假"。
func (c *Config) SetTrim(v bool) { c.Trim, c.trimSet = v, true }

// SetScrubRaw 设置 ScrubRaw 并标记为显式设置。
func (c *Config) SetScrubRaw(v bool) { c.ScrubRaw, c.scrubRawSet = v, true }

// SetStreamMode 设置 StreamMode 并标记为显式设置。
func (c *Config) SetStreamMode(v bool) { c.StreamMode, c.streamModeSet = v, true }

// SetProgress 设置 Progress 并标记为显式设置。
func (c *Config) SetProgress(v bool) { c.Progress, c.progressSet = v, true }

// SetMemory 设置 Memory 并标记为显式设置。
func (c *Config) SetMemory(v bool) { c.Memory, c.memorySet = v, true }

// StreamModeIsSet reports whether StreamMode was ever explicitly set
// (by a config file, environment override, or CLI flag), as opposed to
// carrying its zero value by default. The CLI uses this to decide
// whether large-file auto-detection may still override StreamMode.
func (c Config) StreamModeIsSet() bool { return c.streamModeSet }
