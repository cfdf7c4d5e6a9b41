package uber

import (
	"context"
	"maps"
	"slices"

	"github.com/jvmpack/uberctl/pkg/engine"
)

var tokens = map[Builtin]engine.Token{
	Ignore:       engine.TokenIgnore,
	Overwrite:    engine.TokenOverwrite,
	Append:       engine.TokenAppend,
	AppendDedupe: engine.TokenAppendDedupe,
	Warn:         engine.TokenWarn,
	Error:        engine.TokenError,
	Default:      engine.TokenDefault,
}

// Translate converts o into the engine's native configuration. It performs no
// I/O. User-defined handlers become engine.HandlerFuncs; a fresh adapter is
// created on every call.
func Translate(o *Options) (*engine.Config, error) {
	cfg := &engine.Config{
		UberFile: o.uberFile,
		ClassDir: o.classDir,
	}

	if o.basis != nil {
		cfg.Basis = o.basis.Native()
	}

	if o.main != "" {
		sym := engine.ParseSymbol(o.main)
		cfg.Main = &sym
	}

	if o.exclude != nil {
		cfg.Exclude = slices.Clone(o.exclude)
	}

	if o.manifest != nil {
		cfg.Manifest = maps.Clone(o.manifest)
	}

	for _, e := range o.conflicts {
		h, err := translateHandler(e)
		if err != nil {
			return nil, err
		}
		cfg.ConflictHandlers = append(cfg.ConflictHandlers, engine.HandlerEntry{Key: e.Key, Handler: h})
	}

	return cfg, nil
}

func translateHandler(e HandlerEntry) (engine.Handler, error) {
	switch h := e.Handler.(type) {
	case Builtin:
		if token, ok := tokens[h]; ok {
			return token, nil
		}
	case adaptable:
		if fn, ok := h.handlerFunc(); ok {
			return fn, nil
		}
	}
	return nil, &UnrecognizedConflictHandlerError{Key: e.Key.String(), Handler: e.Handler}
}

// Run translates o and hands the result to eng. Nothing reaches the engine if
// translation fails.
func Run(ctx context.Context, eng engine.Engine, o *Options) error {
	cfg, err := Translate(o)
	if err != nil {
		return err
	}
	return eng.Uber(ctx, cfg)
}
