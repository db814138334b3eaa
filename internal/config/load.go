package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"vglog-filter/internal/vglog"
)

// Defaults 返回带有安全默认值的 Config 雏形，对应 §6.1 所列默认值。
func Defaults() Config {
	return Config{
		Input:      "-",
		Marker:     vglog.DefaultMarker,
		Depth:      vglog.DefaultDepth,
		Trim:       true,
		ScrubRaw:   true,
		StreamMode: false,
		Logging:    Logging{Level: "info", Dir: "logs", MaxBytes: 10 * 1024 * 1024},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
//
// bool 字段（trim/scrub_raw/stream_mode/progress/memory）的零值与"文件里没写
// 这个键"在 JSON 里无法区分，但 Merge 需要区分两者才能让文件里的显式 false
// 覆盖 Defaults() 的 true。解码到 Config 之后再把同一份字节解码进一张
// map[string]interface{} 探测这些键是否出现过，据此补上对应的 *Set 哨兵。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	r, closeFn, err := openSource(path, raw)
	if err != nil {
		return cfg, err
	}
	defer closeFn()

	buf, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}

	var probe map[string]interface{}
	if err := json.Unmarshal(buf, &probe); err != nil {
		return cfg, err
	}
	applyBoolPresence(&cfg, probe)
	return cfg, nil
}

// LoadYAML 从文件路径或原始 YAML 解析 Config（严格拒绝未知字段），与
// LoadJSON 并列作为 gopkg.in/yaml.v3 驱动的同级文件格式。键存在性探测方式
// 与 LoadJSON 相同，见其注释。
func LoadYAML(path string, raw []byte) (Config, error) {
	var cfg Config
	r, closeFn, err := openSource(path, raw)
	if err != nil {
		return cfg, err
	}
	defer closeFn()

	buf, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}

	var probe map[string]interface{}
	if err := yaml.Unmarshal(buf, &probe); err != nil {
		return cfg, err
	}
	applyBoolPresence(&cfg, probe)
	return cfg, nil
}

// applyBoolPresence 把 LoadJSON/LoadYAML 探测到的顶层键名映射到 Config 的
// *Set 哨兵：只要键出现过就标记为"已设置"，不管它的值是 true 还是 false。
func applyBoolPresence(cfg *Config, probe map[string]interface{}) {
	if _, ok := probe["trim"]; ok {
		cfg.trimSet = true
	}
	if _, ok := probe["scrub_raw"]; ok {
		cfg.scrubRawSet = true
	}
	if _, ok := probe["stream_mode"]; ok {
		cfg.streamModeSet = true
	}
	if _, ok := probe["progress"]; ok {
		cfg.progressSet = true
	}
	if _, ok := probe["memory"]; ok {
		cfg.memorySet = true
	}
}

func openSource(path string, raw []byte) (io.Reader, func(), error) {
	switch {
	case len(raw) > 0:
		return bytes.NewReader(raw), func() {}, nil
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return nil, nil, errors.New("config: no source provided")
	}
}

// IsYAMLPath reports whether path's extension indicates a YAML document,
// letting the CLI pick LoadYAML vs LoadJSON without sniffing content.
func IsYAMLPath(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// Merge 按优先级合并（over 覆盖 base）。Depth 的 0 具有语义（unlimited），
// 因此用 -1 表示 EnvOverlay/CLI 层"未设置"，只有 over.Depth >= 0 才覆盖。
func Merge(base, over Config) Config {
	out := base
	if strings.TrimSpace(over.Input) != "" {
		out.Input = strings.TrimSpace(over.Input)
	}
	if strings.TrimSpace(over.Marker) != "" {
		out.Marker = over.Marker
	}
	if over.Depth >= 0 {
		out.Depth = over.Depth
	}
	if over.trimSet {
		out.Trim = over.Trim
	}
	if over.scrubRawSet {
		out.ScrubRaw = over.ScrubRaw
	}
	if over.streamModeSet {
		out.StreamMode, out.streamModeSet = over.StreamMode, true
	}
	if over.progressSet {
		out.Progress = over.Progress
	}
	if over.memorySet {
		out.Memory = over.Memory
	}
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}
	if strings.TrimSpace(over.Logging.Dir) != "" {
		out.Logging.Dir = strings.TrimSpace(over.Logging.Dir)
	}
	if over.Logging.MaxBytes > 0 {
		out.Logging.MaxBytes = over.Logging.MaxBytes
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖。前缀 VGLOG_FILTER_；未知键
// 忽略。支持 INPUT, MARKER, DEPTH, TRIM, SCRUB_RAW, STREAM_MODE, PROGRESS,
// MEMORY, LOGGING_LEVEL, LOGGING_DIR, LOGGING_MAX_BYTES。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	over.Depth = -1 // -1 表示未设置，区分"显式 0"
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "VGLOG_FILTER_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("VGLOG_FILTER_") {
			continue
		}
		key, val := kv[:eq], kv[eq+1:]
		nk := strings.TrimPrefix(key, "VGLOG_FILTER_")
		switch nk {
		case "INPUT":
			over.Input = val
		case "MARKER":
			over.Marker = val
		case "DEPTH":
			if v, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				over.Depth = v
			}
		case "TRIM":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Trim, over.trimSet = v, true
			}
		case "SCRUB_RAW":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.ScrubRaw, over.scrubRawSet = v, true
			}
		case "STREAM_MODE":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.StreamMode, over.streamModeSet = v, true
			}
		case "PROGRESS":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Progress, over.progressSet = v, true
			}
		case "MEMORY":
			if v, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				over.Memory, over.memorySet = v, true
			}
		case "LOGGING_LEVEL":
			over.Logging.Level = val
		case "LOGGING_DIR":
			over.Logging.Dir = val
		case "LOGGING_MAX_BYTES":
			if v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil && v > 0 {
				over.Logging.MaxBytes = v
			}
		}
	}
	return over, nil
}
