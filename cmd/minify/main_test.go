package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestHTMLMinification checks that HTML is minified as expected
func TestHTMLMinification(t *testing.T) {
	m := newMinifier()

	input := `<html>
	<head>
		<title>Test</title>
	</head>
	<body>
		<p> Hello   World! </p>
	</body>
</html>`
	expected := `<title>Test</title><p>Hello World!`

	var b strings.Builder
	if err := m.Minify("text/html", &b, strings.NewReader(input)); err != nil {
		t.Fatalf("HTML minification failed: %v", err)
	}
	got := strings.ReplaceAll(b.String(), "\n", "")
	if got != expected {
		t.Errorf("HTML minification mismatch:\nGot:      %q\nExpected: %q", got, expected)
	}
}

// TestCSSMinification checks that CSS is minified as expected
func TestCSSMinification(t *testing.T) {
	m := newMinifier()

	input := `
		body {
			color: #fff;
			margin: 0  ;
		}
	`
	expected := `body{color:#fff;margin:0}`

	var b strings.Builder
	if err := m.Minify("text/css", &b, strings.NewReader(input)); err != nil {
		t.Fatalf("CSS minification failed: %v", err)
	}
	if got := b.String(); got != expected {
		t.Errorf("CSS minification mismatch:\nGot:      %q\nExpected: %q", got, expected)
	}
}

func TestMinifyTree(t *testing.T) {
	root := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	_ = os.MkdirAll("static/img", 0755)
	_ = os.WriteFile("static/site.css", []byte("body {\n  margin: 0 ;\n}\n"), 0644)
	_ = os.WriteFile("static/img/logo.png", []byte("PNGDATA"), 0644)

	if err := minifyTree(newMinifier(), "static", "dist"); err != nil {
		t.Fatalf("minifyTree: %v", err)
	}

	css, err := os.ReadFile(filepath.Join("dist", "static", "site.css"))
	if err != nil || string(css) != "body{margin:0}" {
		t.Errorf("minified css = %q, %v", css, err)
	}
	png, err := os.ReadFile(filepath.Join("dist", "static", "img", "logo.png"))
	if err != nil || string(png) != "PNGDATA" {
		t.Errorf("copied png = %q, %v", png, err)
	}
}

func TestMinifyFileUnsupported(t *testing.T) {
	if _, err := minifyFile(newMinifier(), "notes.txt", "out.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
