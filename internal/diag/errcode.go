package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"vglog-filter/internal/vglog"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeBounds  Code = "bounds"
	CodeIO      Code = "io"
	CodeConfig  Code = "config"
	CodeCancel  Code = "cancel"
)

// Classify 将核心或装配层返回的错误归为最小分类（§7 的错误分类）。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, vglog.ErrLineTooLong),
		errors.Is(err, vglog.ErrBlockTooLarge),
		errors.Is(err, vglog.ErrPendingOverflow):
		return CodeBounds
	case errors.Is(err, vglog.ErrSinkWrite),
		errors.Is(err, vglog.ErrSourceRead):
		return CodeIO
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
