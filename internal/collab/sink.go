package collab

import (
	"bufio"
	"context"
	"io"

	"vglog-filter/internal/vglog"
)

// StreamSink adapts a buffered io.Writer into vglog.Sink (§6.2's only
// write boundary), grounded on the buffering pattern in
// plugins/writer/filesystem. The CLI wires this to stdout; tests can
// wire it to any io.Writer.
type StreamSink struct {
	w *bufio.Writer
}

// NewStreamSink wraps w with a 64 KiB write buffer.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: bufio.NewWriterSize(w, 64*1024)}
}

// Write implements vglog.Sink. block already ends with a trailing
// newline (the block assembler appends one per line); it is written
// verbatim.
func (s *StreamSink) Write(ctx context.Context, block []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := s.w.Write(block); err != nil {
		return vglog.ErrSinkWrite
	}
	return nil
}

// Flush releases any buffered bytes to the underlying writer. Callers
// must invoke this once after vglog.Run returns.
func (s *StreamSink) Flush() error {
	return s.w.Flush()
}
