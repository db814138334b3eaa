package testdata

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "vglog-filter/internal/config"
	"vglog-filter/internal/collab"
	"vglog-filter/internal/vglog"
)

const sampleLog = `==1== Memcheck, a memory error detector
==1== Invalid read of size 4
==1==    at 0x4005BD: main (a.c:10)
==1==    by 0x400123: helper (a.c:20)
==1==
Successfully downloaded debug
==1== Invalid read of size 4
==1==    at 0x4005BD: main (a.c:10)
==1==    by 0x400123: helper (a.c:20)
==1==
==1==
vgdb me
==2==
==2== Invalid write of size 8
==2==    at 0x500ABC: other (b.c:5)
==2==
`

func runCLI(t *testing.T, inPath string, opts vglog.Options) string {
	cwd := filepath.Dir(inPath)
	src, err := collab.OpenFileSource(cwd, filepath.Base(inPath))
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	sink := collab.NewStreamSink(&buf)
	if err := vglog.Run(context.Background(), src, sink, opts, vglog.Hooks{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.String()
}

func TestE2EBufferedTrimsToLastMarker(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.log")
	if err := os.WriteFile(in, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := cfgpkg.Defaults()
	cfg.Input = "run.log"
	asm, err := cfgpkg.Assemble(cfg, dir)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	got := runCLI(t, in, asm.Options)
	if n := strings.Count(got, "Invalid read of size 4"); n != 1 {
		t.Fatalf("expected exactly one Invalid read block (the copy after the last marker), got %d in:\n%s", n, got)
	}
	if !strings.Contains(got, "Invalid write of size 8") {
		t.Fatalf("expected the second epoch's Invalid write block to survive, got:\n%s", got)
	}
}

func TestE2EStreamingModeResetsPerEpoch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.log")
	if err := os.WriteFile(in, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := cfgpkg.Defaults()
	cfg.Input = "run.log"
	cfg.SetStreamMode(true)
	asm, err := cfgpkg.Assemble(cfg, dir)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	got := runCLI(t, in, asm.Options)
	if !strings.Contains(got, "Invalid write of size 8") {
		t.Fatalf("expected last epoch's block in streaming mode, got:\n%s", got)
	}
}

func TestE2ENoTrimKeepsEveryEpoch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.log")
	if err := os.WriteFile(in, []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := cfgpkg.Defaults()
	cfg.Input = "run.log"
	cfg.SetTrim(false)
	asm, err := cfgpkg.Assemble(cfg, dir)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	got := runCLI(t, in, asm.Options)
	if !strings.Contains(got, "Invalid write of size 8") || !strings.Contains(got, "Invalid read of size 4") {
		t.Fatalf("--keep-debug-info should keep blocks from every epoch, got:\n%s", got)
	}
}
