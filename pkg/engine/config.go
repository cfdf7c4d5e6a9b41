package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Config is the engine's input for building one uber archive.
type Config struct {
	// UberFile is the archive to create (required).
	UberFile string

	// ClassDir is the local directory of compiled artifacts to include (required).
	ClassDir string

	// Basis is the resolved dependency basis to pull libraries from. Nil means
	// only ClassDir is merged.
	Basis *Basis

	// Main is the entry point recorded in the manifest.
	Main *Symbol

	// Manifest holds attribute overrides, merged last over the engine defaults
	// and Main.
	Manifest map[string]string

	// Exclude lists regular expressions; entries matching any of them are
	// dropped from the merge.
	Exclude []string

	// ConflictHandlers is the ordered conflict policy.
	ConflictHandlers []HandlerEntry
}

// HandlerKey identifies a conflict handler entry: either a path pattern or the
// reserved default key.
type HandlerKey struct {
	Pattern string
	Default bool
}

// DefaultKey is the reserved key for the handler used when no pattern matches.
var DefaultKey = HandlerKey{Default: true}

// PatternKey returns the key for a regular expression pattern.
func PatternKey(pattern string) HandlerKey {
	return HandlerKey{Pattern: pattern}
}

func (k HandlerKey) String() string {
	if k.Default {
		return ":default"
	}
	return k.Pattern
}

type HandlerEntry struct {
	Key     HandlerKey
	Handler Handler
}

// Handler is either a Token or a HandlerFunc.
type Handler interface {
	handler()
}

// Token names a built-in conflict strategy.
type Token string

const (
	TokenIgnore       Token = "ignore"
	TokenOverwrite    Token = "overwrite"
	TokenAppend       Token = "append"
	TokenAppendDedupe Token = "append-dedupe"
	TokenWarn         Token = "warn"
	TokenError        Token = "error"
	TokenDefault      Token = "default"
)

// Tokens lists the tokens the engine recognizes.
var Tokens = []Token{TokenIgnore, TokenOverwrite, TokenAppend, TokenAppendDedupe, TokenWarn, TokenError, TokenDefault}

func (Token) handler() {}

// Valid reports whether the engine recognizes t.
func (t Token) Valid() bool {
	return slices.Contains(Tokens, t)
}

// HandlerFunc resolves one conflicting path. The Conflict and its contents are
// only valid for the duration of the call.
type HandlerFunc func(c *Conflict) (Decision, error)

func (HandlerFunc) handler() {}

// HandlerName returns a printable name for h: the token itself, or "<func>".
func HandlerName(h Handler) string {
	switch h := h.(type) {
	case Token:
		return string(h)
	case HandlerFunc:
		return "<func>"
	default:
		return fmt.Sprintf("<unknown %T>", h)
	}
}

// Symbol is a possibly namespace-qualified symbol, e.g. "com.example.Main" or
// "my.app/main".
type Symbol struct {
	Namespace string
	Name      string
}

// ParseSymbol splits s at the first "/" into namespace and name. A symbol
// without a slash, or consisting of a single slash, has no namespace.
func ParseSymbol(s string) Symbol {
	if s == "/" {
		return Symbol{Name: s}
	}
	if ns, name, ok := strings.Cut(s, "/"); ok && ns != "" && name != "" {
		return Symbol{Namespace: ns, Name: name}
	}
	return Symbol{Name: s}
}

func (s Symbol) String() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "/" + s.Name
}

// Basis is a resolved dependency basis. Raw is the document as provided by the
// resolver; Libs is the engine's view of it.
type Basis struct {
	Raw  map[string]any
	Libs map[string]Lib
}

// Lib is one resolved library and the paths it contributes.
type Lib struct {
	Paths []string
}

// LibNames returns the library names in the order the engine merges them.
func (b *Basis) LibNames() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.Libs))
}
