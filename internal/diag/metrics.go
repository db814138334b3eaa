package diag

import "sync"

// 进程内指标登记表：
// - op_total{comp,stage,result}  累加计数
// - error_total{comp,code}       累加计数
// - op_duration_ms{comp,stage}   最近一次观测值
//
// 没有接入 Prometheus 之类的外部指标后端，但计数本身是真实累加的：
// cmd/vglog-filter 在结束路径上通过 Snapshot 取出这些计数，写进一条
// debug 级别的结构化日志事件，充当没有外部指标导出器时的最小可观测性兜底。
var (
	metricsMu  sync.Mutex
	opTotal    = map[string]int64{}
	errorTotal = map[string]int64{}
	lastDurMS  = map[string]int64{}
)

func opKey(comp, stage, result string) string { return comp + "|" + stage + "|" + result }
func errKey(comp, code string) string         { return comp + "|" + code }
func durKey(comp, stage string) string        { return comp + "|" + stage }

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	opTotal[opKey(comp, stage, result)]++
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	errorTotal[errKey(comp, code)]++
}

// ObserveDuration 记录阶段耗时（毫秒），保留每个 comp/stage 组合的最近一次观测。
func ObserveDuration(comp, stage string, durMS int64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	lastDurMS[durKey(comp, stage)] = durMS
}

// Snapshot 返回三张计数表的拷贝，不重置底层状态，供调用方一次性汇总输出。
func Snapshot() (ops, errs, durs map[string]int64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	ops = make(map[string]int64, len(opTotal))
	for k, v := range opTotal {
		ops[k] = v
	}
	errs = make(map[string]int64, len(errorTotal))
	for k, v := range errorTotal {
		errs[k] = v
	}
	durs = make(map[string]int64, len(lastDurMS))
	for k, v := range lastDurMS {
		durs[k] = v
	}
	return
}

// resetForTest 清空所有计数表；仅供本包测试在用例之间隔离状态使用。
func resetForTest() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	opTotal = map[string]int64{}
	errorTotal = map[string]int64{}
	lastDurMS = map[string]int64{}
}
