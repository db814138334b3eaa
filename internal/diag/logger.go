package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Logger 为最小结构化日志器：单行 JSON 输出到按大小轮转的文件；支持级别过滤。
type Logger struct {
	corrID string
	level  Level
	sink   *RotatingFile
	mu     sync.Mutex
}

// NewLogger 按配置的 level 初始化，日志写入 dir 目录，达到 maxBytes 时轮转。
// corrID 由调用方生成（cmd/vglog-filter 使用 google/uuid，而不是手搓的
// crypto/rand 十六进制串），并嵌入每条轮转文件名，便于按一次运行过滤日志。
// dir 为空或 maxBytes <= 0 时回落到 "logs" 与 10MiB，供未经 config 装配层校验
// 的调用方（测试、内部工具）直接使用。
func NewLogger(corrID, level string, dir string, maxBytes int64) *Logger {
	lvl := parseLevel(strings.TrimSpace(level))
	if strings.TrimSpace(dir) == "" {
		dir = "logs"
	}
	sink := NewRotatingFile(dir, maxBytes, corrID)
	return &Logger{corrID: corrID, level: lvl, sink: sink}
}

// Close 刷新并关闭底层的 RotatingFile。调用方应在进程退出前调用一次。
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Event 为标准事件结构。Source 标识正在处理的输入（路径或 "stdin"）。
type Event struct {
	Level  string            `json:"level"`
	TS     string            `json:"ts"`
	CorrID string            `json:"corr_id"`
	Comp   string            `json:"comp"`
	Stage  string            `json:"stage"` // start|finish|error
	Code   string            `json:"code,omitempty"`
	DurMS  int64             `json:"dur_ms,omitempty"`
	Count  int64             `json:"count,omitempty"`
	Source string            `json:"source,omitempty"`
	Msg    string            `json:"msg"`
	KV     map[string]string `json:"kv,omitempty"`
}

// log 以最小开销写出事件，遵循级别过滤。
func (l *Logger) log(lv Level, ev Event) {
	if lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.TS = NowUTC()
	ev.CorrID = l.corrID
	b, _ := json.Marshal(ev)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		_, _ = os.Stderr.Write(append(b, '\n'))
		return
	}
	if err := l.sink.WriteLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "logger sink error: %v\n", err)
		_, _ = os.Stderr.Write(append(b, '\n'))
	}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg, source string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Source: source, Msg: msg})
	return &Timer{l: l, comp: comp, source: source, t0: time.Now()}
}

// Error 记录 error 事件（从不被级别过滤抑制）。
func (l *Logger) Error(comp, code, msg, source string) {
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, Source: source, Msg: msg})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	source string
	t0     time.Time
}

// Finish 记录 finish；count 为接受的块数，并把耗时喂给 ObserveDuration。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	durMS := time.Since(t.t0).Milliseconds()
	ObserveDuration(t.comp, "finish", durMS)
	t.l.log(Info, Event{
		Comp:   t.comp,
		Stage:  "finish",
		DurMS:  durMS,
		Count:  count,
		Source: t.source,
		Msg:    msg,
	})
}

// DebugEvent 输出调试级别事件（仅在 level=debug 时生效）。
func (l *Logger) DebugEvent(comp, msg string, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", Msg: msg, KV: kv})
}
