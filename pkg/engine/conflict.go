package engine

import (
	"fmt"
	"strings"
)

// Conflict is the engine's report of one path contributed by more than one
// source.
type Conflict struct {
	Path     string
	Existing Entry
	Incoming Entry
}

// Entry is the content of a path as contributed so far. Sources lists every
// source that contributed to Data, in order.
type Entry struct {
	Sources []string
	Data    []byte
}

// Decision is a HandlerFunc's verdict. The zero Decision keeps the existing
// entry unchanged.
type Decision struct {
	// Write maps entry paths to their new content. Paths other than the
	// conflicting one may be written too.
	Write map[string][]byte

	// Warning is logged by the engine when non-empty.
	Warning string
}

// ConflictError is returned for a path resolved with TokenError.
type ConflictError struct {
	Path    string
	Sources []string
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf("conflicting entry %q from %s", err.Path, strings.Join(quoteAll(err.Sources), ", "))
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i := range ss {
		out[i] = fmt.Sprintf("%q", ss[i])
	}
	return out
}
