package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	cfgpkg "vglog-filter/internal/config"
	"vglog-filter/internal/collab"
	"vglog-filter/internal/diag"
	"vglog-filter/internal/vglog"
)

// version is overridden at build time via:
//
//	go build -ldflags "-X main.version=v1.2.3"
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	corrID := uuid.NewString()
	_ = loadDotEnv(".env")

	logger := diag.NewLogger(corrID, "info", "", 0)
	defer logger.Close()

	var (
		flagKeepDebugInfo bool
		flagVerbose       bool
		flagDepth         int
		flagMarker        string
		flagStream        bool
		flagProgress      bool
		flagMemory        bool
		flagShowVersion   bool
		flagConfig        string
		flagInitConfig    string
	)

	fs := pflag.NewFlagSet("vglog-filter", pflag.ContinueOnError)
	fs.BoolVarP(&flagKeepDebugInfo, "keep-debug-info", "k", false, "保留调试信息（关闭 epoch 裁剪）")
	fs.BoolVarP(&flagVerbose, "verbose", "v", false, "详细输出（关闭原始块清洗）")
	fs.IntVarP(&flagDepth, "depth", "d", -1, "签名深度（0 表示不限；覆盖配置）")
	fs.StringVarP(&flagMarker, "marker", "m", "", "epoch 标记字符串（覆盖配置）")
	fs.BoolVarP(&flagStream, "stream", "s", false, "使用流式 epoch 控制器")
	fs.BoolVarP(&flagProgress, "progress", "p", false, "在 stderr 上显示进度")
	fs.BoolVarP(&flagMemory, "memory", "M", false, "报告开始/结束时的内存占用")
	fs.BoolVarP(&flagShowVersion, "version", "V", false, "打印版本号并退出")
	fs.StringVar(&flagConfig, "config", "", "配置文件路径（JSON 或 .yaml/.yml）")
	fs.StringVar(&flagInitConfig, "init-config", "", "在指定目录生成默认配置模板后退出")
	fs.BoolP("help", "h", false, "显示帮助")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "参数解析失败: %v\n", err)
		return 2
	}
	if help, _ := fs.GetBool("help"); help {
		fs.PrintDefaults()
		return 0
	}
	if flagShowVersion {
		fmt.Fprintf(os.Stdout, "vglog-filter %s\n", version)
		return 0
	}

	if strings.TrimSpace(flagInitConfig) != "" {
		return initConfig(strings.TrimSpace(flagInitConfig))
	}

	cfg := cfgpkg.Defaults()

	if flagConfig == "" {
		if s := os.Getenv("VGLOG_FILTER_CONFIG_FILE"); s != "" {
			flagConfig = s
		}
	}
	if flagConfig == "" {
		if _, err := os.Stat("vglog-filter.json"); err == nil {
			flagConfig = "vglog-filter.json"
		}
	}
	if flagConfig != "" {
		loaded, err := loadConfigFile(flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("config", string(diag.CodeConfig), "first error", "")
			return 3
		}
		cfg = cfgpkg.Merge(cfg, loaded)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		return 3
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	overCLI := cfgpkg.Config{Depth: -1}
	if flagKeepDebugInfo {
		overCLI.SetTrim(false)
	}
	if flagVerbose {
		overCLI.SetScrubRaw(false)
	}
	if flagDepth >= 0 {
		overCLI.Depth = flagDepth
	}
	if strings.TrimSpace(flagMarker) != "" {
		overCLI.Marker = flagMarker
	}
	if flagStream {
		overCLI.SetStreamMode(true)
	}
	if flagProgress {
		overCLI.SetProgress(true)
	}
	if flagMemory {
		overCLI.SetMemory(true)
	}
	if args := fs.Args(); len(args) > 0 {
		overCLI.Input = args[0]
	}
	cfg = cfgpkg.Merge(cfg, overCLI)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法获取工作目录: %v\n", err)
		return 3
	}

	asm, err := cfgpkg.Assemble(cfg, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置校验失败: %v\n", err)
		logger.Error("config", string(diag.CodeConfig), "first error", "")
		return 3
	}

	logger = diag.NewLogger(corrID, asm.LogLevel, asm.LogDir, asm.LogMaxBytes)
	defer logger.Close()

	src, err := collab.OpenFileSource(cwd, asm.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法打开输入: %v\n", err)
		logger.Error("open", string(diag.Classify(err)), "first error", asm.Input)
		return 1
	}
	defer src.Close()

	// 大文件默认切换到流式控制器，除非用户已显式指定 --stream 或配置覆盖。
	if !asm.IsStdin && !cfg.StreamModeIsSet() && collab.DetectLargeFile(asm.Input) {
		asm.Options.StreamMode = true
	}

	counted := &countingSink{inner: collab.NewStreamSink(os.Stdout)}
	sink := counted

	term := diag.NewTerminal(os.Stderr, true)
	sourceLabel := asm.Input
	if asm.IsStdin {
		sourceLabel = "stdin"
	}
	term.RunStart(sourceLabel)

	hooks := vglog.Hooks{}
	if asm.Progress {
		hooks.Progress = term.Progress
	}
	if asm.Memory {
		hooks.Memory = func(stage string) { diag.ReportMemoryUsage(os.Stderr, stage) }
	}

	timer := logger.Start("filter", "run", sourceLabel)
	runErr := vglog.Run(context.Background(), src, sink, asm.Options, hooks)
	if flushErr := counted.inner.Flush(); flushErr != nil && runErr == nil {
		runErr = flushErr
	}

	if runErr != nil {
		code := diag.Classify(runErr)
		logger.Error("filter", string(code), "run failed", sourceLabel)
		diag.IncOp("filter", "finish", "error")
		diag.IncError("filter", string(code))
		if !errors.Is(runErr, context.Canceled) {
			fmt.Fprintf(os.Stderr, "运行失败: %v\n", runErr)
		}
		term.RunFinish(false, counted.count)
		logMetricsSummary(logger)
		return 1
	}
	diag.IncOp("filter", "finish", "success")
	timer.Finish("ok", int64(counted.count))
	term.RunFinish(true, counted.count)
	logMetricsSummary(logger)
	return 0
}

// logMetricsSummary 把 diag.Snapshot 取出的累计计数写进一条 debug 事件，充当
// 没有外部指标后端（Prometheus 等）时的最小可观测性兜底；仅在 level=debug 时
// 才会真正落盘（DebugEvent 走 Debug 级别过滤）。
func logMetricsSummary(logger *diag.Logger) {
	ops, errs, durs := diag.Snapshot()
	kv := make(map[string]string, len(ops)+len(errs)+len(durs))
	for k, v := range ops {
		kv["op:"+k] = fmt.Sprintf("%d", v)
	}
	for k, v := range errs {
		kv["err:"+k] = fmt.Sprintf("%d", v)
	}
	for k, v := range durs {
		kv["dur_ms:"+k] = fmt.Sprintf("%d", v)
	}
	logger.DebugEvent("metrics", "summary", kv)
}

// countingSink tracks the number of accepted blocks written to the
// underlying vglog.Sink, so the terminal's finish line and the
// logger's finish event can report a block count instead of a bare 0.
type countingSink struct {
	inner *collab.StreamSink
	count int
}

func (c *countingSink) Write(ctx context.Context, block []byte) error {
	if err := c.inner.Write(ctx, block); err != nil {
		return err
	}
	c.count++
	return nil
}

func loadConfigFile(path string) (cfgpkg.Config, error) {
	if cfgpkg.IsYAMLPath(path) {
		return cfgpkg.LoadYAML(path, nil)
	}
	return cfgpkg.LoadJSON(path, nil)
}

func initConfig(dir string) int {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return 3
	}
	cfg := cfgpkg.DefaultTemplateConfig()
	path := filepath.Join(dir, "vglog-filter.json")
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return 3
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			fmt.Fprintf(os.Stderr, "配置文件已存在，已跳过: %s\n", path)
			return 0
		}
		fmt.Fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return 3
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
		return 3
	}
	return 0
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境；不覆盖已存在的变量。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			continue
		}
		if len(val) >= 2 {
			if (val[0] == '\'' && val[len(val)-1] == '\'') || (val[0] == '"' && val[len(val)-1] == '"') {
				val = val[1 : len(val)-1]
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}
