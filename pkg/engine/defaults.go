package engine

import "regexp"

// DefaultPolicy is applied to paths no configured handler matches, and to
// paths whose handler is TokenDefault. The final entry always applies.
var DefaultPolicy = []HandlerEntry{
	{Key: PatternKey(`META-INF/services/.*`), Handler: TokenAppend},
	{Key: PatternKey(`(?i)(META-INF/)?(COPYRIGHT|NOTICE|LICENSE)(\.(txt|md))?`), Handler: TokenAppendDedupe},
	{Key: DefaultKey, Handler: TokenIgnore},
}

var defaultPolicy = compileDefaultPolicy()

func compileDefaultPolicy() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(DefaultPolicy))
	for i, e := range DefaultPolicy {
		if !e.Key.Default {
			res[i] = regexp.MustCompile(`^(?:` + e.Key.Pattern + `)$`)
		}
	}
	return res
}

// Builtin returns the DefaultPolicy entry for path.
func Builtin(path string) HandlerEntry {
	for i, re := range defaultPolicy {
		if re == nil || re.MatchString(path) {
			return DefaultPolicy[i]
		}
	}
	return HandlerEntry{Key: DefaultKey, Handler: TokenIgnore}
}
