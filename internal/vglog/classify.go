package vglog

// isVgLine 判定一行是否以 "==" + 至少一个十进制数字 + "==" 开头（从字节 0 锚定）。
func isVgLine(line []byte) bool {
	if len(line) < 5 || line[0] != '=' || line[1] != '=' {
		return false
	}
	i := 2
	start := i
	for i < len(line) && isDecDigit(line[i]) {
		i++
	}
	if i == start {
		return false
	}
	return i+1 < len(line) && line[i] == '=' && line[i+1] == '='
}

// prefixEnd 返回紧跟在末尾 "==" 之后、以及其后连续 ASCII 空白之后的索引。
// 仅对满足 isVgLine 的行调用。
func prefixEnd(line []byte) int {
	i := 2
	for i < len(line) && isDecDigit(line[i]) {
		i++
	}
	i += 2 // skip trailing "=="
	for i < len(line) && isASCIIWhitespace(line[i]) {
		i++
	}
	return i
}

// stripPrefix 返回去掉 "==PID== " 前缀后的剩余字节（对非 vg-line 调用没有意义）。
func stripPrefix(line []byte) []byte {
	return line[prefixEnd(line):]
}

var reportStartSubstrings = [][]byte{
	[]byte("Invalid read"),
	[]byte("Invalid write"),
	[]byte("Syscall param"),
	[]byte("Use of uninitialised"),
	[]byte("Conditional jump"),
	[]byte("bytes in "),
	[]byte("still reachable"),
	[]byte("possibly lost"),
	[]byte("definitely lost"),
	[]byte("Process terminating"),
}

// isReportStart 判定前缀剥离后的文本是否包含任一报告起始子串。
func isReportStart(p []byte) bool {
	for _, sub := range reportStartSubstrings {
		if containsBytes(p, sub) {
			return true
		}
	}
	return false
}

// isBytesHeader 判定前缀剥离后的文本中是否存在形如
// "<digits> bytes in <digits> blocks" 的子串。
func isBytesHeader(p []byte) bool {
	const mid = " bytes in "
	i := 0
	for {
		at := indexBytes(p[i:], []byte(mid))
		if at < 0 {
			return false
		}
		at += i
		// 要求 mid 前面紧跟至少一个十进制数字。
		if at == 0 || !isDecDigit(p[at-1]) {
			i = at + 1
			continue
		}
		digitsStart := at
		for digitsStart > 0 && isDecDigit(p[digitsStart-1]) {
			digitsStart--
		}
		// 要求 mid 后面紧跟至少一个十进制数字，随后是 " blocks"。
		j := at + len(mid)
		digitsEnd := j
		for digitsEnd < len(p) && isDecDigit(p[digitsEnd]) {
			digitsEnd++
		}
		if digitsEnd == j {
			i = at + 1
			continue
		}
		if hasPrefixAt(p, digitsEnd, []byte(" blocks")) {
			return true
		}
		i = at + 1
	}
}

// isScrubTarget 判定一行是否包含任一 scrub() 会处理的目标模式，用作调用 scrub()
// 前的性能闸门：当返回 false 时 scrub(p) 必然等于 p。
func isScrubTarget(p []byte) bool {
	if containsBytes(p, []byte("at : ")) || containsBytes(p, []byte("by : ")) {
		return true
	}
	if hasQuestionRun(p, 3) {
		return true
	}
	return hasHexAddr(p)
}

func hasQuestionRun(p []byte, n int) bool {
	run := 0
	for _, c := range p {
		if c == '?' {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func hasHexAddr(p []byte) bool {
	for i := 0; i+2 < len(p)+1 && i < len(p); i++ {
		if p[i] == '0' && i+1 < len(p) && p[i+1] == 'x' && i+2 < len(p) && isHexDigit(p[i+2]) {
			return true
		}
	}
	return false
}

func containsBytes(haystack, needle []byte) bool {
	return indexBytes(haystack, needle) >= 0
}

func hasPrefixAt(b []byte, at int, prefix []byte) bool {
	if at+len(prefix) > len(b) {
		return false
	}
	return bytesEqual(b[at:at+len(prefix)], prefix)
}

// indexBytes 是 bytes.Index 的手写等价实现，保持本包不依赖 regexp 之外的扫描风格一致。
func indexBytes(haystack, needle []byte) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	if n > len(haystack) {
		return -1
	}
	first := needle[0]
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i] != first {
			continue
		}
		if bytesEqual(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}
