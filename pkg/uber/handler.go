package uber

import (
	"fmt"
	"slices"

	"github.com/jvmpack/uberctl/pkg/engine"
)

// ConflictHandler selects how a path contributed by more than one source is
// merged. It is either a Builtin or a *UserDefined.
type ConflictHandler interface {
	conflictHandler()
}

// Builtin is a conflict strategy implemented by the packaging engine.
type Builtin int

const (
	Ignore       Builtin = iota // keep the entry that was there first
	Overwrite                   // replace with the incoming entry
	Append                      // concatenate existing and incoming
	AppendDedupe                // append incoming lines not already present
	Warn                        // keep existing, log a warning
	Error                       // fail the build
	Default                     // defer to the engine's built-in policy
)

var builtinNames = []string{"ignore", "overwrite", "append", "append-dedupe", "warn", "error", "default"}

func (Builtin) conflictHandler() {}

func (b Builtin) String() string {
	if b < 0 || int(b) >= len(builtinNames) {
		return fmt.Sprintf("Builtin(%d)", int(b))
	}
	return builtinNames[b]
}

// ParseBuiltin returns the Builtin with the given name, as printed by String.
func ParseBuiltin(name string) (Builtin, error) {
	if i := slices.Index(builtinNames, name); i >= 0 {
		return Builtin(i), nil
	}
	return 0, fmt.Errorf("unknown conflict handler %q", name)
}

// Builtins returns every Builtin in declaration order.
func Builtins() []Builtin {
	res := make([]Builtin, len(builtinNames))
	for i := range res {
		res[i] = Builtin(i)
	}
	return res
}

// ConflictInformation describes one conflicting path to a Resolver. Existing
// and Incoming are owned by the engine and must not be retained after the
// resolver returns.
type ConflictInformation struct {
	// Path is the archive entry path.
	Path string

	// Sources lists the contributing sources: those behind the existing
	// content first, then the incoming source.
	Sources []string

	Existing []byte
	Incoming []byte
}

func conflictInformation(c *engine.Conflict) ConflictInformation {
	sources := make([]string, 0, len(c.Existing.Sources)+len(c.Incoming.Sources))
	sources = append(sources, c.Existing.Sources...)
	sources = append(sources, c.Incoming.Sources...)
	return ConflictInformation{
		Path:     c.Path,
		Sources:  sources,
		Existing: c.Existing.Data,
		Incoming: c.Incoming.Data,
	}
}

// Resolver decides a conflict. state is the same pointer on every call within
// a merge, so resolvers can accumulate across paths.
type Resolver[S any] func(state *S, info ConflictInformation) (engine.Decision, error)

// UserDefined delegates conflicts to caller code. The caller owns State; the
// engine in this repository calls Resolve sequentially, so State needs no
// locking there. Engines that resolve concurrently must say so, and State
// must then synchronize itself.
type UserDefined[S any] struct {
	State   *S
	Resolve Resolver[S]
}

// NewUserDefined returns a handler calling resolve with state.
func NewUserDefined[S any](state *S, resolve Resolver[S]) *UserDefined[S] {
	return &UserDefined[S]{State: state, Resolve: resolve}
}

func (*UserDefined[S]) conflictHandler() {}

// handlerFunc adapts u to the engine's calling convention. The decision and
// error are passed through untouched: the engine owns the decision vocabulary.
// It reports false for a nil handler or resolver.
func (u *UserDefined[S]) handlerFunc() (engine.HandlerFunc, bool) {
	if u == nil || u.Resolve == nil {
		return nil, false
	}
	return func(c *engine.Conflict) (engine.Decision, error) {
		return u.Resolve(u.State, conflictInformation(c))
	}, true
}

// adaptable is implemented by every *UserDefined instantiation.
type adaptable interface {
	handlerFunc() (engine.HandlerFunc, bool)
}
