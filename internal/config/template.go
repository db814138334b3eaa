package config

// DefaultTemplateConfig 返回一个"可运行"的默认配置模板，供 --init-config 写出：
// - 默认从标准输入读取（Input: "-"）；
// - trim/scrub_raw 均为安全默认值 true；
// - depth 为 DefaultDepth 即 1（签名只取块的第一条规范化行）；
// - progress/memory 默认关闭，供交互式运行时按需打开。
func DefaultTemplateConfig() Config {
	d := Defaults()
	d.Progress = false
	d.Memory = false
	return d
}
