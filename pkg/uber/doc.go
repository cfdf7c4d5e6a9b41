// Package uber assembles the options for building an uber archive: a single
// archive holding a compiled class directory and every library of a resolved
// dependency basis.
//
// The interesting part is the conflict policy. When two sources contribute
// the same entry path, the engine looks the path up in an ordered table of
// regular expressions and applies the strategy registered for the first match.
//
// # Basic Usage
//
//	opts, err := uber.NewBuilder().
//	    WithOutput("out/app.jar").
//	    WithClassDir("target/classes").
//	    WithEntryPoint("com.example.Main").
//	    WithExclude([]string{`META-INF/.*\.SF`}).
//	    WithConflictHandler(`META-INF/services/.*`, uber.Append).
//	    WithDefaultConflictHandler(uber.Warn).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := uber.Run(ctx, eng, opts); err != nil {
//	    log.Fatal(err)
//	}
//
// Build fails with *MissingRequiredFieldError when the output or the class
// directory is missing. The returned Options are a snapshot: changing the
// Builder afterwards does not affect them.
//
// # Conflict Handlers
//
// Built-in strategies are Ignore, Overwrite, Append, AppendDedupe, Warn, Error
// and Default. Patterns are consulted in registration order; paths no pattern
// matches use the handler given to WithDefaultConflictHandler, and failing
// that the engine's own policy. Registering a pattern twice replaces the
// earlier handler.
//
// # User-Defined Handlers
//
// A UserDefined handler hands each conflict to caller code together with a
// caller-owned state value that persists for the whole merge:
//
//	type seen struct{ paths []string }
//
//	record := uber.NewUserDefined(&seen{}, func(s *seen, info uber.ConflictInformation) (engine.Decision, error) {
//	    s.paths = append(s.paths, info.Path)
//	    return engine.Decision{Write: map[string][]byte{info.Path: info.Incoming}}, nil
//	})
//
//	b.WithConflictHandler(`data_readers\.clj`, record)
//
// The resolver's decision and error reach the engine unmodified.
// ConflictInformation contents belong to the engine and are only valid during
// the call.
package uber
