package toolfn

import (
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Nested closures carry numeric suffixes after the funcN segment,
// like "pkg.Caller.func1.2", so the pattern must be matched before
// cutting the symbol at its last dot.
var anonFuncRe = regexp.MustCompile(`(^|\.)func\d+(\.\d+)*$`)

// deriveName resolves the function symbol and converts it to a
// snake_case tool name. Anonymous functions have no usable identifier,
// so they get a stable hash of the full symbol as a suffix.
func deriveName(fn Func) string {
	if fn == nil {
		return "tool"
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "tool"
	}
	sym := f.Name()
	base := sym
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, "-fm")
	if anonFuncRe.MatchString(base) {
		return "func_" + strconv.FormatUint(xxhash.Sum64String(sym), 10)
	}
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[idx+1:]
	}
	if base == "" {
		return "tool"
	}
	return snakeCase(base)
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
