package render

import (
	"fmt"
	"strconv"

	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/template"
)

// Vars builds the variable mapping for a site. Keys irrelevant to the
// site's archetype are simply absent; the engine substitutes absent
// tokens with the empty string.
//
// The www composition values are synthesized before the domain
// substitution happens and still reference {{DOMAIN}}; the engine's
// second pass resolves the tokens they carry.
func Vars(site *config.Site) map[string]string {
	vars := map[string]string{
		"DOMAIN": site.Domain,
	}
	if site.Root != "" {
		vars["ROOT_PATH"] = site.Root
	}
	if site.Port != 0 {
		vars["PORT"] = strconv.Itoa(site.Port)
	}
	if site.RuntimeVersion != "" {
		vars["RUNTIME_VERSION"] = site.RuntimeVersion
	}
	if site.Target != "" {
		vars["TARGET"] = site.Target
	}

	switch site.WWWPolicy {
	case config.WWWApexPrimary:
		vars["WWW_CONFIG"] = "{{DOMAIN}}"
		vars["WWW_REDIRECT_BLOCK"] = redirectBlock("www.{{DOMAIN}}", "{{DOMAIN}}")
	case config.WWWWWWPrimary:
		vars["WWW_CONFIG"] = "www.{{DOMAIN}}"
		vars["WWW_REDIRECT_BLOCK"] = redirectBlock("{{DOMAIN}}", "www.{{DOMAIN}}")
	default:
		// No www handling: the primary line names the apex alone and
		// the redirect slot collapses to nothing.
		vars["WWW_CONFIG"] = "{{DOMAIN}}"
	}

	// TLS listen directive inside the redirect block. Only emitted when
	// the site already holds a certificate; rendering "listen 443 ssl"
	// without one would fail the syntax check.
	if site.TLS && site.CertPath != "" && site.KeyPath != "" {
		vars["SSL_LISTEN"] = fmt.Sprintf("listen 443 ssl;\n    ssl_certificate %s;\n    ssl_certificate_key %s;", site.CertPath, site.KeyPath)
	}

	return vars
}

// redirectBlock composes the secondary server block sending from to
// to. Both arguments may carry placeholder tokens; the caller's second
// render pass resolves them.
func redirectBlock(from, to string) string {
	return fmt.Sprintf(`server {
    listen 80;
    listen [::]:80;
    {{SSL_LISTEN}}
    server_name %s;
    return 301 $scheme://%s$request_uri;
}`, from, to)
}

// Site renders the full configuration text for a site: template
// lookup, variable mapping, two-pass expansion. A render-incomplete
// result is returned as an error and never reaches the caller as text.
func Site(site *config.Site) (string, error) {
	if err := site.Validate(); err != nil {
		return "", err
	}
	body, err := template.Lookup(site.Archetype)
	if err != nil {
		return "", err
	}
	text, err := Render(body, Vars(site))
	if err != nil {
		return "", errors.WrapDomain(errors.ErrCodeRender, site.Domain, err)
	}
	return text, nil
}
