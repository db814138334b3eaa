package diag

import (
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
)

// ReportMemoryUsage implements the core's optional memory.report(stage)
// hook (§6.2), grounded on the original report_memory_usage (which read
// getrusage(RUSAGE_SELF).ru_maxrss on Linux). Go has no single portable
// rusage wrapper in the retrieval pack, so this uses runtime.ReadMemStats
// instead and reports both the live heap and the process's total reserved
// memory, formatted with dustin/go-humanize.
func ReportMemoryUsage(w io.Writer, stage string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Fprintf(w, "[memory] %s | heap=%s sys=%s\n",
		stage, humanize.Bytes(m.HeapAlloc), humanize.Bytes(m.Sys))
}
