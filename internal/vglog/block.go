package vglog

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Sink 是核心向外写出已接受块的唯一出口（§6.2 sink.write）。调用方（collaborator）
// 负责字节精确写入；失败会作为致命 I/O 错误冒泡给核心的调用者。
type Sink interface {
	Write(ctx context.Context, block []byte) error
}

// blockAssembler 是 §4.3 描述的状态机：围绕 raw_buf/sig_buf/sig_lines 三个累积
// 缓冲区，在 Feed 每一行时就地转移状态，在 flush 时把累积的块移交给 onAccept。
type blockAssembler struct {
	opts Options

	rawBuf  []byte
	sigBuf  []byte
	sigLines [][]byte

	seen *seenSet

	// onAccept 在 flush 产出一个新块（即 Seen.insert_if_absent 返回 true）时调用。
	onAccept func(raw []byte) error
}

func newBlockAssembler(opts Options, seen *seenSet, onAccept func(raw []byte) error) *blockAssembler {
	return &blockAssembler{
		opts:     opts,
		seen:     seen,
		onAccept: onAccept,
	}
}

// reset 清空三个累积缓冲区，不改变 Seen（调用方按 §4.5 在 epoch 重置时单独清空 Seen）。
func (a *blockAssembler) reset() {
	a.rawBuf = a.rawBuf[:0]
	a.sigBuf = a.sigBuf[:0]
	a.sigLines = a.sigLines[:0]
}

// feed 实现 §4.3 步骤 2–8。调用方（Epoch Controller）负责步骤 1 的 marker 路由，
// 因此这里直接假定 line 已经不是 marker 行。
func (a *blockAssembler) feed(line []byte) error {
	if !isVgLine(line) {
		return nil
	}
	p := stripPrefix(line)

	if isReportStart(p) {
		if err := a.flush(); err != nil {
			return err
		}
		if isBytesHeader(p) {
			return nil
		}
	}

	rawLine := p
	if a.opts.ScrubRaw && isScrubTarget(p) {
		rawLine = scrub(p)
	}

	if len(trimSurroundingWhitespace(rawLine)) == 0 {
		return nil
	}

	if len(a.rawBuf)+len(rawLine)+1 > MaxBlockSize {
		return fmt.Errorf("%w: max %s", ErrBlockTooLarge, humanize.Bytes(uint64(MaxBlockSize)))
	}
	a.rawBuf = append(a.rawBuf, rawLine...)
	a.rawBuf = append(a.rawBuf, '\n')

	cl := canon(p)
	a.sigBuf = append(a.sigBuf, cl...)
	a.sigBuf = append(a.sigBuf, '\n')
	a.sigLines = append(a.sigLines, cl)

	return nil
}

// flush 实现 §4.3 的 flush()：计算 SignatureKey，按 Seen 的 first-seen-wins 规则
// 决定是否把 raw_buf 移交给 onAccept，然后清空三个缓冲区。移交前在 raw_buf 自身
// 的尾随换行之上再追加一个 '\n'，使相邻块之间产生空行分隔（块内每行已自带一个
// '\n'，这里额外追加的是块与块之间的分隔符，而非行终止符）。onAccept 可能把这段
// 字节保留到 flush 返回之后（流式模式下的 Pending 队列），因此这里总是分配一份
// 新的、独立于 a.rawBuf 底层数组的拷贝，避免 reset 后续的 feed 覆写已移交的数据。
func (a *blockAssembler) flush() error {
	if len(a.rawBuf) == 0 {
		a.reset()
		return nil
	}

	key := a.signatureKey()
	if a.seen.insertIfAbsent(key) {
		out := make([]byte, len(a.rawBuf)+1)
		copy(out, a.rawBuf)
		out[len(a.rawBuf)] = '\n'
		if err := a.onAccept(out); err != nil {
			return err
		}
	}
	a.reset()
	return nil
}

func (a *blockAssembler) signatureKey() []byte {
	if a.opts.Depth == 0 {
		key := make([]byte, len(a.sigBuf))
		copy(key, a.sigBuf)
		return key
	}
	n := a.opts.Depth
	if n > len(a.sigLines) {
		n = len(a.sigLines)
	}
	var key []byte
	for i := 0; i < n; i++ {
		key = append(key, a.sigLines[i]...)
		key = append(key, '\n')
	}
	return key
}

func trimSurroundingWhitespace(in []byte) []byte {
	start := 0
	for start < len(in) && isASCIIWhitespace(in[start]) {
		start++
	}
	end := len(in)
	for end > start && isASCIIWhitespace(in[end-1]) {
		end--
	}
	return in[start:end]
}
