package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// Terminal 是核心 progress.report(done,total) 钩子（§6.2）背后的具体实现：
// TTY 上单行 \r 覆盖，非 TTY 上按节流打点分行打印。并发安全；写失败后进入
// 禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	source   string
	runStart time.Time

	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// NewTerminal 构造终端提示器。enabled=false 时总是 no-op。TTY 判定用
// golang.org/x/term.IsTerminal，取代手写的字符设备 stat 检查。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		t.isTTY = term.IsTerminal(int(f.Fd()))
	}
	return t
}

// RunStart 记录运行起点与输入来源（路径或 "stdin"）。
func (t *Terminal) RunStart(source string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.source = safe(source)
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] source=%s", t.source))
}

// Progress reports done/total bytes (§6.2 progress.report). A total of 0
// means unknown; only done is shown in that case.
func (t *Terminal) Progress(done, total int64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	now := time.Now()
	if now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now

	var line string
	if total > 0 {
		pct := int(done * 100 / total)
		line = fmt.Sprintf("[progress] %s | %d%% (%s/%s)", t.source, pct,
			humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)))
	} else {
		line = fmt.Sprintf("[progress] %s | %s read", t.source, humanize.Bytes(uint64(done)))
	}

	if t.isTTY {
		t.printInline(line)
	} else {
		t.println(line)
	}
}

// RunFinish closes out the progress display with a final summary line.
func (t *Terminal) RunFinish(ok bool, blocks int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	t.println(fmt.Sprintf("[%s] %s | blocks=%d | %s", tag, t.source, blocks, formatDur(time.Since(t.runStart))))
}

func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	pad := 0
	if l := visLen(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = visLen(s)
}

func visLen(s string) int { return len([]rune(s)) }

func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
