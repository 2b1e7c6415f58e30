package augment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ovanta/sitectl/internal/errors"
)

const renderedArtifact = `server {
    listen 80;
    listen [::]:80;
    server_name example.com;

    root /srv/example;
    index index.html;

    location / {
        try_files $uri $uri/ =404;
    }
}
server {
    listen 80;
    listen [::]:80;
    server_name www.example.com;
    return 301 $scheme://example.com$request_uri;
}
`

func writeArtifact(t *testing.T, content string) (string, *Augmenter) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "example.com")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path, New(filepath.Join(dir, "certs"))
}

func TestAugmentTLS(t *testing.T) {
	path, aug := writeArtifact(t, renderedArtifact)

	if err := aug.AugmentTLS(path, "example.com"); err != nil {
		t.Fatalf("AugmentTLS failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	text := string(data)

	certPath, keyPath := aug.CertPaths("example.com")
	for _, want := range []string{
		"listen 443 ssl;",
		"ssl_certificate " + certPath + ";",
		"ssl_certificate_key " + keyPath + ";",
		"ssl_protocols TLSv1.2 TLSv1.3;",
		"ssl_session_cache shared:SSL:10m;",
		"ssl_session_timeout 10m;",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("augmented artifact missing %q", want)
		}
	}

	// Directives land immediately after the primary anchor, with the
	// anchor's indentation.
	primaryIdx := strings.Index(text, "server_name example.com;")
	listenIdx := strings.Index(text, "    listen 443 ssl;")
	if listenIdx < primaryIdx {
		t.Error("TLS directives must follow the primary server_name line")
	}

	// The www redirect block gets its own 443 listen plus certificates.
	secondary := text[strings.Index(text, "server_name www.example.com;"):]
	if !strings.Contains(secondary, "listen 443 ssl;") {
		t.Error("secondary block missing 443 listen directive")
	}
	if !strings.Contains(secondary, "ssl_certificate "+certPath+";") {
		t.Error("secondary block missing certificate reference")
	}
}

func TestAugmentTLSIdempotent(t *testing.T) {
	path, aug := writeArtifact(t, renderedArtifact)

	if err := aug.AugmentTLS(path, "example.com"); err != nil {
		t.Fatalf("first AugmentTLS failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	if err := aug.AugmentTLS(path, "example.com"); err != nil {
		t.Fatalf("second AugmentTLS failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	if string(first) != string(second) {
		t.Error("second augmentation changed the artifact; directive blocks duplicated")
	}
	if count := strings.Count(string(second), "ssl_protocols"); count != 1 {
		t.Errorf("expected exactly one ssl_protocols directive, found %d", count)
	}
}

func TestAugmentTLSAnchorNotFound(t *testing.T) {
	content := "server {\n    listen 80;\n    server_name other.example.com;\n}\n"
	path, aug := writeArtifact(t, content)

	err := aug.AugmentTLS(path, "example.com")
	if !errors.Is(err, errors.ErrAnchorNotFound) {
		t.Fatalf("expected ErrAnchorNotFound, got %v", err)
	}

	// No write without an anchor match, and no snapshot left behind.
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Error("artifact was modified despite missing anchor")
	}
	if _, err := os.Stat(path + snapshotSuffix); !os.IsNotExist(err) {
		t.Error("snapshot must not exist after a failed anchor match")
	}
}

func TestAugmentTLSMissingArtifact(t *testing.T) {
	aug := New(t.TempDir())
	err := aug.AugmentTLS(filepath.Join(t.TempDir(), "nope"), "example.com")
	if !errors.Is(err, errors.ErrArtifactMissing) {
		t.Errorf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestRestoreIsByteExact(t *testing.T) {
	path, aug := writeArtifact(t, renderedArtifact)

	if err := aug.AugmentTLS(path, "example.com"); err != nil {
		t.Fatalf("AugmentTLS failed: %v", err)
	}
	if err := aug.Restore(path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if string(data) != renderedArtifact {
		t.Error("restored artifact is not byte-identical to the pre-augmentation content")
	}
	if _, err := os.Stat(path + snapshotSuffix); !os.IsNotExist(err) {
		t.Error("snapshot should be consumed by Restore")
	}
}

func TestDiscardSnapshot(t *testing.T) {
	path, aug := writeArtifact(t, renderedArtifact)

	if err := aug.AugmentTLS(path, "example.com"); err != nil {
		t.Fatalf("AugmentTLS failed: %v", err)
	}
	aug.DiscardSnapshot(path)
	if _, err := os.Stat(path + snapshotSuffix); !os.IsNotExist(err) {
		t.Error("snapshot should be removed")
	}

	// Discarding again is harmless.
	aug.DiscardSnapshot(path)
}

func TestAnchorMatchingIsExact(t *testing.T) {
	// A server_name for a different host that merely contains the
	// domain must not anchor the insertion.
	content := "server {\n    server_name notexample.com;\n    server_name example.com.evil.net;\n}\n"
	path, aug := writeArtifact(t, content)

	if err := aug.AugmentTLS(path, "example.com"); !errors.Is(err, errors.ErrAnchorNotFound) {
		t.Errorf("expected ErrAnchorNotFound for lookalike hosts, got %v", err)
	}
}
