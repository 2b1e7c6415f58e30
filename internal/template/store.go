// Package template is the store of parameterized site bodies.
//
// One body is embedded per archetype. Bodies contain {{NAME}}
// placeholder tokens resolved by the render package; this package does
// nothing beyond lookup by archetype name.
package template

import (
	"embed"
	"fmt"

	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/errors"
)

//go:embed nginx/*.conf.tmpl
var templates embed.FS

// Lookup returns the template body for the given archetype.
// Templates are embedded at build time and read-only for the process
// lifetime.
func Lookup(archetype string) (string, error) {
	if !config.IsValidArchetype(archetype) {
		return "", errors.ErrUnknownArchetype
	}
	body, err := templates.ReadFile(fmt.Sprintf("nginx/%s.conf.tmpl", archetype))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTemplate, "template body missing for "+archetype, err)
	}
	return string(body), nil
}

// Available returns all archetype names with a registered template.
func Available() []string {
	return config.ValidArchetypes()
}
