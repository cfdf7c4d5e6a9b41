package jsonpatch

import (
	"fmt"

	jp "github.com/evanphx/json-patch/v5"
	"github.com/goccy/go-yaml"
)

// PatchError reports a patch that cannot be used on a configuration document.
type PatchError struct {
	msg string
}

func (p *PatchError) Error() string {
	return p.msg
}

var opts = jp.ApplyOptions{
	EnsurePathExistsOnAdd:    true,
	AllowMissingPathOnRemove: true,
}

// Apply applies an RFC 6902 patch to a configuration document. Both may be
// written in YAML or JSON; the result is JSON. Only add, remove and replace
// are allowed.
func Apply(patch, doc []byte) ([]byte, error) {
	pj, err := yaml.YAMLToJSON(patch)
	if err != nil {
		return nil, &PatchError{fmt.Sprintf("failed to read patch: %v", err)}
	}
	p, err := jp.DecodePatch(pj)
	if err != nil {
		return nil, &PatchError{fmt.Sprintf("failed to decode patch: %v", err)}
	}

	for _, op := range p {
		switch op.Kind() {
		case "replace", "remove", "add": // OK
		default:
			return nil, &PatchError{fmt.Sprintf("unsupported patch operation %q, must be one of \"replace\", \"add\", \"remove\"", op.Kind())}
		}
	}

	dj, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return p.ApplyWithOptions(dj, &opts)
}
