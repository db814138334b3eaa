package vglog

// seenSet 是 §4.4 的 Seen：一个从 SignatureKey 到"已接受"事件的集合，
// first-seen-wins。键是块的规范签名字节串，按值比较。
//
// 仿照去重存储惯用接口模式（HasSeen/MarkSeen/Clear），但这里把
// "查询是否已见过" 和 "标记为已见过" 合并为单次 insertIfAbsent 调用，
// 因为核心状态机里这两步总是原子相邻发生，没有理由拆成两次哈希查找。
type seenSet struct {
	seen map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{seen: make(map[string]struct{})}
}

// insertIfAbsent 实现 insert_if_absent(key) → bool：键首次出现时插入并返回 true，
// 否则返回 false 且不改变集合。
func (s *seenSet) insertIfAbsent(key []byte) bool {
	k := string(key)
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// clear 清空集合；仅在 epoch 重置时调用（§4.5）。
func (s *seenSet) clear() {
	s.seen = make(map[string]struct{})
}

// count 返回当前跟踪的键数，供诊断/测试使用。
func (s *seenSet) count() int {
	return len(s.seen)
}
