package config

import (
	"errors"
	"fmt"
	"strings"

	"vglog-filter/internal/collab"
	"vglog-filter/internal/vglog"
)

// Validate 对最小必要边界做静态校验，越界在此处即失败，不传播到核心。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Input) == "" {
		return errors.New("config: input cannot be empty")
	}
	if cfg.Depth < 0 {
		return errors.New("config: depth must be >= 0")
	}
	if cfg.Depth > vglog.MaxDepth {
		return fmt.Errorf("config: depth %d exceeds max %d", cfg.Depth, vglog.MaxDepth)
	}
	if strings.TrimSpace(cfg.Marker) == "" {
		return errors.New("config: marker cannot be empty")
	}
	if len(cfg.Marker) > vglog.MaxMarkerLen {
		return fmt.Errorf("config: marker length %d exceeds max %d", len(cfg.Marker), vglog.MaxMarkerLen)
	}
	if strings.IndexByte(cfg.Marker, 0) >= 0 {
		return errors.New("config: marker must not contain a null byte")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", cfg.Logging.Level)
	}
	if strings.TrimSpace(cfg.Logging.Dir) == "" {
		return errors.New("config: logging.dir cannot be empty")
	}
	if cfg.Logging.MaxBytes <= 0 {
		return errors.New("config: logging.max_bytes must be > 0")
	}
	return nil
}

// Assembled 是装配后的运行期产物：送入核心的 Options 与已校验过的输入路径。
type Assembled struct {
	Options     vglog.Options
	Input       string // collab.StdinMarker 或相对工作目录的已校验路径
	IsStdin     bool
	LogLevel    string
	LogDir      string
	LogMaxBytes int64
	Progress    bool
	Memory      bool
}

// Assemble 校验 cfg 并转换为核心 Options 及输入路径描述；cwd 用于路径沙箱校验。
func Assemble(cfg Config, cwd string) (Assembled, error) {
	if err := Validate(cfg); err != nil {
		return Assembled{}, err
	}

	input := strings.TrimSpace(cfg.Input)
	if input == "" {
		input = collab.StdinMarker
	}

	isStdin := input == collab.StdinMarker
	if !isStdin {
		// Validate here so a bad path fails fast with a config error;
		// the actual resolution happens again in collab.OpenFileSource,
		// which is the one place that also opens the file.
		if _, err := collab.ResolveWithinCWD(cwd, input); err != nil {
			return Assembled{}, fmt.Errorf("config: %w", err)
		}
	}

	opts := vglog.Options{
		Marker:     cfg.Marker,
		Depth:      cfg.Depth,
		Trim:       cfg.Trim,
		ScrubRaw:   cfg.ScrubRaw,
		StreamMode: cfg.StreamMode,
	}

	level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if level == "" {
		level = "info"
	}

	return Assembled{
		Options:     opts,
		Input:       input,
		IsStdin:     isStdin,
		LogLevel:    level,
		LogDir:      strings.TrimSpace(cfg.Logging.Dir),
		LogMaxBytes: cfg.Logging.MaxBytes,
		Progress:    cfg.Progress,
		Memory:      cfg.Memory,
	}, nil
}
