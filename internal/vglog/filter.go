// Package vglog implements the single-threaded streaming filter core:
// canonicalization, line classification, block assembly, deduplication
// and epoch control over a Valgrind/Memcheck-style log stream.
package vglog

import "context"

// Hooks holds the core's two optional observation points (§6.2). Either
// field may be nil; a nil hook is simply never called.
type Hooks struct {
	// Progress is invoked after each line is consumed from src, with the
	// number of bytes read so far and the total if known (0 if unknown).
	Progress func(doneBytes, totalBytes int64)
	// Memory is invoked at the start and end of Run with a stage label.
	Memory func(stageLabel string)
}

// Run drives the whole core over src, writing accepted blocks to sink
// according to opts. It selects the buffered or streaming Epoch
// Controller per opts.StreamMode and returns the first fatal error
// encountered (§7); partial output already written to sink is not
// rolled back.
func Run(ctx context.Context, src Source, sink Sink, opts Options, hooks Hooks) error {
	if hooks.Memory != nil {
		hooks.Memory("start")
	}

	wrapped := src
	if hooks.Progress != nil {
		wrapped = &progressSource{inner: src, report: hooks.Progress}
	}

	var err error
	if opts.StreamMode {
		err = runStreaming(ctx, wrapped, sink, opts)
	} else {
		err = runBuffered(ctx, wrapped, sink, opts)
	}

	if hooks.Memory != nil {
		hooks.Memory("finish")
	}
	return err
}

// progressSource decorates a Source with a running byte count, calling
// the progress hook after every line (§6.2 progress.report(done,total)).
// Total is reported as 0: the core has no notion of input size, only the
// collaborator opening the source does, and §1 keeps that out of core
// scope.
type progressSource struct {
	inner Source
	done  int64
	report func(done, total int64)
}

func (p *progressSource) Next(ctx context.Context) ([]byte, bool, error) {
	line, ok, err := p.inner.Next(ctx)
	if err != nil || !ok {
		return line, ok, err
	}
	p.done += int64(len(line)) + 1
	p.report(p.done, 0)
	return line, ok, nil
}
