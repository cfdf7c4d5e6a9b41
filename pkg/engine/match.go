package engine

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru"
)

const patternCacheSize = 512

// Compiled patterns are shared across matchers: the same exclusion and handler
// patterns are typically reused for every build of a project.
var patterns = newPatternCache(patternCacheSize)

// PatternError is returned when an exclusion or handler pattern is not a valid
// regular expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (err *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", err.Pattern, err.Err)
}

func (err *PatternError) Unwrap() error {
	return err.Err
}

type patternCache struct {
	cache *lru.Cache
}

func newPatternCache(size int) *patternCache {
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &patternCache{cache: c}
}

// compile returns a regexp matching the whole of a path against pattern.
func (c *patternCache) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.cache.Get(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	c.cache.Add(pattern, re)
	return re, nil
}

// Matcher answers exclusion and conflict-handler lookups for a Config.
type Matcher struct {
	exclude  []*regexp.Regexp
	handlers []compiledEntry
	fallback *HandlerEntry
}

type compiledEntry struct {
	re    *regexp.Regexp
	entry HandlerEntry
}

// Compile prepares a Matcher for cfg. Patterns must match the entire archive
// path. When the same key occurs more than once the first entry is used.
func Compile(cfg *Config) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range cfg.Exclude {
		re, err := patterns.compile(p)
		if err != nil {
			return nil, err
		}
		m.exclude = append(m.exclude, re)
	}

	for i, e := range cfg.ConflictHandlers {
		if e.Key.Default {
			if m.fallback == nil {
				m.fallback = &cfg.ConflictHandlers[i]
			}
			continue
		}
		re, err := patterns.compile(e.Key.Pattern)
		if err != nil {
			return nil, err
		}
		m.handlers = append(m.handlers, compiledEntry{re: re, entry: e})
	}

	return m, nil
}

// Excluded reports whether path matches any exclusion pattern.
func (m *Matcher) Excluded(path string) bool {
	for _, re := range m.exclude {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// HandlerFor returns the entry governing path: the first matching pattern
// entry, else the default-key entry, else the built-in policy.
func (m *Matcher) HandlerFor(path string) HandlerEntry {
	for _, c := range m.handlers {
		if c.re.MatchString(path) {
			return c.entry
		}
	}
	if m.fallback != nil {
		return *m.fallback
	}
	return Builtin(path)
}
