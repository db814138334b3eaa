package vglog

import "testing"

func TestCanonSubstitutions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hex addr", "at 0x401234: main", "at 0xADDR: main"},
		{"line number", "main (a.c:10)", "main (a.c:LINE)"},
		{"index bracket", "arr[42] overflow", "arr[] overflow"},
		{"empty index not replaced", "arr[] fine", "arr[] fine"},
		{"non numeric index kept", "arr[i] fine", "arr[i] fine"},
		{"template span", "std::vector<int> v", "std::vector<T> v"},
		{"empty template span", "Foo<> x", "Foo<T> x"},
		{"whitespace collapse", "a   b\t\tc", "a b c"},
		{"trailing whitespace", "abc   ", "abc"},
		{"combined", "==1==    at 0x1234: f (x.c:7) arr[3]", "==1== at 0xADDR: f (x.c:LINE) arr[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(canon([]byte(tt.in)))
			if got != tt.want {
				t.Fatalf("canon(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonIdempotenceOnOrdinaryInput(t *testing.T) {
	samples := []string{
		"Invalid read of size 4",
		"   at 0x401234: main (a.c:10)",
		"by 0xDEADBEEF: g (y.c:2) arr[12] <Foo<Bar>>",
		"",
		"no substitutions here at all",
	}
	for _, s := range samples {
		once := canon([]byte(s))
		twice := canon(once)
		if string(once) != string(twice) {
			t.Fatalf("canon not idempotent on %q: once=%q twice=%q", s, once, twice)
		}
	}
}

func TestScrub(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hex removed entirely", "at 0x401234: main", "main"},
		{"at literal removed after addr strip", "at 0x401234: main (a.c:10)", "main (a.c:10)"},
		{"by literal removed after addr strip", "by 0x2: g (y.c:2)", "g (y.c:2)"},
		{"question run removed", "object??? leaked", "object leaked"},
		{"short question run kept", "a?? b", "a?? b"},
		{"no targets unchanged", "Invalid read of size 4", "Invalid read of size 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(scrub([]byte(tt.in)))
			if got != tt.want {
				t.Fatalf("scrub(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonInvariantUnderSharedScrubSubstitutions(t *testing.T) {
	// canon 与 scrub 共享的变换仅限空白折叠与 0x 十六进制串的擦除；在只含这些
	// 变体的输入上，先 scrub 再 canon 必须与直接 canon 得到相同结果。
	samples := []string{
		"a    0x1234   b",
		"0xAB 0xCD 0xEF",
		"no hex here   just   spaces",
	}
	for _, s := range samples {
		direct := canon([]byte(s))
		viaScrub := canon(scrub([]byte(s)))
		if string(direct) != string(viaScrub) {
			t.Fatalf("canon(%q)=%q but canon(scrub(%q))=%q", s, direct, s, viaScrub)
		}
	}
}
