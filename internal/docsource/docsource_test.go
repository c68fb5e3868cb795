package docsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "reqgraph/pkg/errors"
)

func TestRegistry_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "The system shall allow users to log in.\n\nThe system shall log users out."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := NewRegistry().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != content {
		t.Errorf("plain text altered: %q", text)
	}
}

func TestRegistry_HTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.html")
	html := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
<body><h1>Requirements</h1><p>Users must log in.</p><ul><li>Sessions expire.</li></ul></body></html>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := NewRegistry().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, want := range []string{"Requirements", "Users must log in.", "Sessions expire."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Contains(text, "alert(1)") || strings.Contains(text, "color:red") {
		t.Errorf("script/style content leaked into %q", text)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	_, err := NewRegistry().Extract(context.Background(), "/nonexistent/path.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeSource) {
		t.Errorf("expected source error, got %T", err)
	}
}

func TestRegistry_UnknownExtensionFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.req")
	if err := os.WriteFile(path, []byte("raw requirement text"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := NewRegistry().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "raw requirement text" {
		t.Errorf("unexpected text %q", text)
	}
}
