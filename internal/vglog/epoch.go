package vglog

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Source 是核心的唯一输入抽象（§6.2 open_source → line_iterator）：按需产出不含
// 尾随 CR/LF 的行。路径校验与大文件检测是 collaborator 的职责；核心只消费已经
// 校验过的行序列。
type Source interface {
	// Next 返回下一行；到达输入末尾时返回 (nil, false, nil)。
	Next(ctx context.Context) (line []byte, ok bool, err error)
}

// pendingQueue 是流式裁剪模式下的有界 FIFO（§9 "Pending queue in streaming
// mode"）：每次 append 都校验上界，绝不无界增长。
type pendingQueue struct {
	blocks [][]byte
}

func (q *pendingQueue) append(block []byte) error {
	if len(q.blocks)+1 > MaxPendingBlocks {
		return fmt.Errorf("%w: max %d blocks", ErrPendingOverflow, MaxPendingBlocks)
	}
	q.blocks = append(q.blocks, block)
	return nil
}

func (q *pendingQueue) clear() {
	q.blocks = nil
}

func (q *pendingQueue) flushTo(ctx context.Context, sink Sink) error {
	for _, b := range q.blocks {
		if err := sink.Write(ctx, b); err != nil {
			return ErrSinkWrite
		}
	}
	return nil
}

// runBuffered 实现 §4.5 的缓冲 Epoch 控制器：先把整个输入物化为行序列，若
// trim 开启则从末尾向前找最后一条包含 marker 的行，只把严格位于其后的行
// 喂给组装器；接受的块直接写 sink。
func runBuffered(ctx context.Context, src Source, sink Sink, opts Options) error {
	var lines [][]byte
	for {
		line, ok, err := src.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if len(line) > MaxLineLength {
			return fmt.Errorf("%w: max %s", ErrLineTooLong, humanize.Bytes(uint64(MaxLineLength)))
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, cp)
	}

	start := 0
	if opts.Trim {
		m := lastMarkerIndex(lines, opts.Marker)
		if m < 0 {
			return nil
		}
		start = m + 1
	}

	seen := newSeenSet()
	assembler := newBlockAssembler(opts, seen, func(raw []byte) error {
		if err := sink.Write(ctx, raw); err != nil {
			return ErrSinkWrite
		}
		return nil
	})

	for i := start; i < len(lines); i++ {
		if err := assembler.feed(lines[i]); err != nil {
			return err
		}
	}
	return assembler.flush()
}

func lastMarkerIndex(lines [][]byte, marker string) int {
	needle := []byte(marker)
	for i := len(lines) - 1; i >= 0; i-- {
		if containsBytes(lines[i], needle) {
			return i
		}
	}
	return -1
}

// runStreaming 实现 §4.5 的流式 Epoch 控制器：逐行消费，每遇到一条包含 marker
// 的行（且 trim 开启）就重置 raw_buf/sig_buf/sig_lines、Pending 与 Seen，并把
// marker 行本身排除在组装器之外；输入结束后按 marker_seen 决定是否把 Pending
// 中的块写出。
func runStreaming(ctx context.Context, src Source, sink Sink, opts Options) error {
	seen := newSeenSet()
	pending := &pendingQueue{}
	markerSeen := false

	assembler := newBlockAssembler(opts, seen, func(raw []byte) error {
		return pending.append(raw)
	})

	needle := []byte(opts.Marker)
	for {
		line, ok, err := src.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if len(line) > MaxLineLength {
			return fmt.Errorf("%w: max %s", ErrLineTooLong, humanize.Bytes(uint64(MaxLineLength)))
		}

		if opts.Trim && containsBytes(line, needle) {
			assembler.reset()
			pending.clear()
			seen.clear()
			markerSeen = true
			continue
		}

		if err := assembler.feed(line); err != nil {
			return err
		}
	}

	if err := assembler.flush(); err != nil {
		return err
	}

	if !opts.Trim || markerSeen {
		return pending.flushTo(ctx, sink)
	}
	return nil
}
