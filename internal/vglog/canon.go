package vglog

// canon 实现 §4.1 的规范化管道：把易变细节（地址、源码行号、数组下标、模板参数、
// 连续空白）抹除，使两条文本不同但语义相同的行折叠为同一规范形式。
//
// 替换顺序固定，且彼此不交互：地址擦除发生在行号擦除之前，因此地址中的十六进制
// 数字永远不会被误判为行号（行号规则要求前面紧跟一个冒号）。
func canon(line []byte) []byte {
	out := stripHexAddr(line, "0xADDR")
	out = replaceLineNumbers(out)
	out = replaceIndexBrackets(out)
	out = replaceAngleSpans(out)
	out = collapseWhitespace(out)
	out = trimTrailingWhitespace(out)
	return out
}

// scrub 实现 §4.3 步骤 5 的 raw 输出清理：与 canon 完全独立，用于 scrub_raw=true
// 时的 raw 缓冲，而不是签名。移除地址整体、"at : "/"by : " 字面量与连续 "?" 运行。
func scrub(line []byte) []byte {
	out := stripHexAddr(line, "")
	out = removeLiteral(out, []byte("at : "))
	out = removeLiteral(out, []byte("by : "))
	out = removeQuestionRuns(out)
	return out
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDecDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isASCIIWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	default:
		return false
	}
}

// stripHexAddr 替换每个形如 "0x" + 一个或多个十六进制数字的最大运行。
// replacement 为空字符串时等价于整段删除（用于 scrub）；否则写入 replacement（用于 canon）。
// 非空 replacement 本身（"0xADDR"）也能匹配十六进制规则，因此输入中已有的
// replacement 原样保留，保证 canon(canon(s)) == canon(s)。
func stripHexAddr(in []byte, replacement string) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if replacement != "" && hasPrefixAt(in, i, []byte(replacement)) {
			out = append(out, replacement...)
			i += len(replacement)
			continue
		}
		if in[i] == '0' && i+1 < len(in) && in[i+1] == 'x' && i+2 < len(in) && isHexDigit(in[i+2]) {
			j := i + 2
			for j < len(in) && isHexDigit(in[j]) {
				j++
			}
			out = append(out, replacement...)
			i = j
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}

// replaceLineNumbers 替换每个 ":" 紧跟一个或多个十进制数字为 ":LINE"。
func replaceLineNumbers(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if in[i] == ':' && i+1 < len(in) && isDecDigit(in[i+1]) {
			j := i + 1
			for j < len(in) && isDecDigit(in[j]) {
				j++
			}
			out = append(out, ':')
			out = append(out, "LINE"...)
			i = j
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}

// replaceIndexBrackets 替换每个 "[" + 一个或多个十进制数字 + "]" 为 "[]"。
func replaceIndexBrackets(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if in[i] == '[' {
			j := i + 1
			for j < len(in) && isDecDigit(in[j]) {
				j++
			}
			if j > i+1 && j < len(in) && in[j] == ']' {
				out = append(out, '[', ']')
				i = j + 1
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out
}

// replaceAngleSpans 替换每个 "<" 直到同一行内下一个 ">"（含）为 "<T>"；贪心匹配，
// 第一个出现的 ">" 即闭合该跨度；空跨度 "<>" 同样替换。未闭合的 "<" 原样保留。
func replaceAngleSpans(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if in[i] == '<' {
			if close := indexByteFrom(in, i+1, '>'); close >= 0 {
				out = append(out, "<T>"...)
				i = close + 1
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out
}

func indexByteFrom(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// collapseWhitespace 把每一段连续的 ASCII 空白字节折叠为单个空格。
func collapseWhitespace(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if isASCIIWhitespace(in[i]) {
			j := i + 1
			for j < len(in) && isASCIIWhitespace(in[j]) {
				j++
			}
			out = append(out, ' ')
			i = j
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}

// trimTrailingWhitespace 去除末尾空白（折叠后最多剩一个空格）。
func trimTrailingWhitespace(in []byte) []byte {
	end := len(in)
	for end > 0 && isASCIIWhitespace(in[end-1]) {
		end--
	}
	return in[:end]
}

// removeLiteral 删除 in 中每一次出现的 lit（不重叠匹配）。
func removeLiteral(in, lit []byte) []byte {
	if len(lit) == 0 {
		return in
	}
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if i+len(lit) <= len(in) && bytesEqual(in[i:i+len(lit)], lit) {
			i += len(lit)
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}

// removeQuestionRuns 删除每一段长度 >= 3 的连续 "?" 运行。
func removeQuestionRuns(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		if in[i] == '?' {
			j := i + 1
			for j < len(in) && in[j] == '?' {
				j++
			}
			if j-i >= 3 {
				i = j
				continue
			}
		}
		out = append(out, in[i])
		i++
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
