package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Media types handled by the minifier, keyed by file extension.
var mediaTypes = map[string]string{
	".css":  "text/css",
	".html": "text/html",
	".js":   "application/javascript",
}

func main() {
	var (
		inputFile  = flag.String("input", "", "Minify a single file instead of the asset trees")
		outputFile = flag.String("output", "", "Output path for -input")
		distDir    = flag.String("dist", "dist", "Output directory for the asset trees")
	)
	flag.Parse()

	m := newMinifier()

	if *inputFile != "" {
		if *outputFile == "" {
			log.Fatal("Usage: go run ./cmd/minify -input=<file> -output=<file>")
		}
		if _, err := minifyFile(m, *inputFile, *outputFile); err != nil {
			log.Fatalf("Failed to minify %s: %v", *inputFile, err)
		}
		fmt.Printf("Successfully minified %s -> %s\n", *inputFile, *outputFile)
		return
	}

	for _, dir := range []string{"templates", "static"} {
		if err := minifyTree(m, dir, *distDir); err != nil {
			log.Fatalf("Error minifying %s: %v", dir, err)
		}
	}
	fmt.Printf("Minification complete, output in %s/\n", *distDir)
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

// minifyTree minifies every supported file under srcDir into distDir/srcDir.
// Other files are copied unchanged.
func minifyTree(m *minify.M, srcDir, distDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dst := filepath.Join(distDir, path)
		if _, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]; !ok {
			return copyFile(path, dst)
		}
		ratio, err := minifyFile(m, path, dst)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s (%.1f%% reduction)\n", path, dst, ratio)
		return nil
	})
}

// minifyFile writes the minified srcPath to dstPath and returns the size
// reduction in percent.
func minifyFile(m *minify.M, srcPath, dstPath string) (float64, error) {
	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(srcPath))]
	if !ok {
		return 0, fmt.Errorf("unsupported file type: %s", srcPath)
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return 0, err
	}
	minified, err := m.Bytes(mediaType, src)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(dstPath, minified, 0644); err != nil {
		return 0, err
	}

	if len(src) == 0 {
		return 0, nil
	}
	return float64(len(src)-len(minified)) / float64(len(src)) * 100, nil
}

func copyFile(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(dstPath, data, 0644)
}
