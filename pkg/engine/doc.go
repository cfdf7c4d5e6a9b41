// Package engine defines the native configuration understood by an uber
// archive packaging engine, and the contract such an engine implements.
//
// A Config is usually produced by translating uber.Options, but it can be
// assembled directly. It names the archive to write, the class directory to
// include, the dependency basis to pull libraries from and the conflict
// policy to apply when several sources contribute the same entry path.
//
// # Conflict Policy
//
// Conflict handlers are an ordered list of entries. Each entry is keyed by a
// regular expression matched against the archive entry path, or by the
// reserved default key. A Matcher consults them as follows:
//
//  1. pattern entries, in order; the first match wins
//  2. the default-key entry, if any
//  3. the engine's built-in policy (see DefaultPolicy)
//
// A handler is either a Token naming a built-in strategy or a HandlerFunc
// that is called once per conflicting path and returns a Decision.
//
//	cfg := &engine.Config{
//	    UberFile: "out/app.jar",
//	    ClassDir: "target/classes",
//	    Exclude:  []string{`^META-INF/.*\.SF$`},
//	    ConflictHandlers: []engine.HandlerEntry{
//	        {Key: engine.PatternKey(`^META-INF/services/.*`), Handler: engine.TokenAppend},
//	        {Key: engine.DefaultKey, Handler: engine.TokenWarn},
//	    },
//	}
//
// # Exclusion
//
// Paths matching any pattern in Config.Exclude are dropped before conflict
// resolution. Exclusion is a set membership test: the order of patterns does
// not matter.
//
// # Thread Safety
//
// A Config must not be mutated while an engine is using it. Engines decide
// whether HandlerFuncs are called concurrently and must document it; the
// engine in this repository calls them sequentially.
package engine
