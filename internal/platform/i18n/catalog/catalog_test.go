package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("en-US") {
		t.Fatalf("expected locale en-US")
	}
	for _, namespace := range []string{"core", "shop", "errors"} {
		if got := len(bundle.NamespaceMessages("ja-JP", namespace)); got == 0 {
			t.Fatalf("expected ja-JP %s namespace messages", namespace)
		}
	}
}

func TestEmbeddedLocalesShareKeys(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	base := bundle.LocaleMessages(BaseLocale)
	en := bundle.LocaleMessages("en-US")
	for key := range base {
		if _, ok := en[key]; !ok {
			t.Fatalf("en-US is missing key %q", key)
		}
	}
	for key := range en {
		if _, ok := base[key]; !ok {
			t.Fatalf("%s is missing key %q", BaseLocale, key)
		}
	}
}

func TestLoadFromFSRejectsCoreKeyOutsideCoreNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/shop.yaml"), `locale: "ja-JP"
namespace: "shop"
messages:
  "core.bad": "nope"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/core.yaml"), `locale: "ja-JP"
namespace: "core"
messages:
  "core.good": "ok"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/core.yaml"), `locale: "ja-JP"
namespace: "core"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/shop.yaml"), `locale: "ja-JP"
namespace: "shop"
messages:
  "a.key": "b"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.good": "ok"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.good": "ok"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsMalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ja-JP/core.yaml"), "locale: [unterminated\n")

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	want, ok := bundle.Message(BaseLocale, "core.brand")
	if !ok {
		t.Fatal("expected core.brand in base locale")
	}
	got, ok := bundle.Message("fr-FR", "core.brand")
	if !ok || got != want {
		t.Fatalf("Message(fr-FR) = %q, %t; want %q", got, ok, want)
	}
	if _, ok := bundle.Message(BaseLocale, "  "); ok {
		t.Fatal("expected blank key miss")
	}
}

func TestRegisterMakesPrintersTranslate(t *testing.T) {
	bundle := Default()
	want, ok := bundle.Message("en-US", "shop.cart.title")
	if !ok {
		t.Fatal("expected shop.cart.title in en-US")
	}
	printer := message.NewPrinter(language.MustParse("en-US"))
	if got := printer.Sprintf("shop.cart.title"); got != want {
		t.Fatalf("printer translation = %q, want %q", got, want)
	}
}

func mustWriteFile(t *testing.T, path string, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestRenderExecutesTemplates(t *testing.T) {
	t.Parallel()

	bundle := Default()
	got, err := bundle.Render("en-US", "shop.notify.order_subject", map[string]string{"OrderNumber": "SF-20260101-ABCDEF"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Order confirmation SF-20260101-ABCDEF" {
		t.Fatalf("Render() = %q", got)
	}

	plain, err := bundle.Render("en-US", "shop.cart.title", nil)
	if err != nil || plain != "Shopping cart" {
		t.Fatalf("Render(plain) = %q, %v", plain, err)
	}

	missing, err := bundle.Render("en-US", "shop.unknown", nil)
	if err != nil || missing != "shop.unknown" {
		t.Fatalf("Render(missing) = %q, %v", missing, err)
	}
}
