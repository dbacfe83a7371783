package pdftext

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"claimcheck/internal/config"
	"claimcheck/internal/domain"
)

// Extractor converts PDF bytes into text through a waterfall of strategies:
// layout-aware extraction with table markers, plain extraction, then OCR.
// Each step runs only when the previous one yields fewer than the configured
// minimum of non-whitespace characters. Extract never fails: on total failure
// it returns a sentinel text instead.
type Extractor struct {
	cfg    config.PDFConfig
	runner Runner
}

// NewExtractor creates an Extractor using the given runner for external commands.
func NewExtractor(cfg config.PDFConfig, runner Runner) *Extractor {
	return &Extractor{cfg: cfg, runner: runner}
}

// Extract runs the extraction waterfall over one document.
func (e *Extractor) Extract(ctx context.Context, doc domain.RawDocument) domain.ExtractedText {
	path, cleanup, err := e.writeTemp(doc)
	if err != nil {
		log.Printf("pdftext.Extractor: %s: writing temp file: %v", doc.Filename, err)
		return domain.ExtractedText{
			Filename: doc.Filename,
			Text:     domain.NoReadableTextSentinel,
			Method:   domain.MethodNone,
		}
	}
	defer cleanup()

	text, err := e.layoutPass(ctx, path)
	method := domain.MethodLayout
	if err != nil {
		log.Printf("pdftext.Extractor: %s: layout pass failed: %v", doc.Filename, err)
		text = ""
	}

	if !e.sufficient(text) {
		plain, perr := e.plainPass(ctx, path)
		if perr != nil {
			log.Printf("pdftext.Extractor: %s: plain pass failed: %v", doc.Filename, perr)
		} else if countNonSpace(plain) > countNonSpace(text) {
			text = plain
			method = domain.MethodPlain
		}
	}

	if !e.sufficient(text) {
		ocr, oerr := e.ocrPass(ctx, path)
		if oerr != nil {
			log.Printf("pdftext.Extractor: %s: ocr pass failed: %v", doc.Filename, oerr)
		} else if countNonSpace(ocr) > countNonSpace(text) {
			text = ocr
			method = domain.MethodOCR
		}
	}

	if countNonSpace(text) < 10 {
		log.Printf("pdftext.Extractor: %s: no readable text after all strategies", doc.Filename)
		return domain.ExtractedText{
			Filename: doc.Filename,
			Text:     domain.NoReadableTextSentinel,
			Method:   domain.MethodNone,
		}
	}

	return domain.ExtractedText{Filename: doc.Filename, Text: text, Method: method}
}

// layoutPass runs pdftotext preserving column layout and marks detected
// tables with [TABLE]...[/TABLE] delimiters.
func (e *Extractor) layoutPass(ctx context.Context, path string) (string, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.PdftotextBin,
		"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext -layout: %w", err)
	}
	return MarkTables(string(out)), nil
}

// plainPass runs pdftotext in raw reading order, no layout reconstruction.
func (e *Extractor) plainPass(ctx context.Context, path string) (string, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.PdftotextBin,
		"-raw", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext -raw: %w", err)
	}
	return string(out), nil
}

// ocrPass rasterizes up to MaxOCRPages pages and recognizes each with
// tesseract, labeling the output with [PAGE n] markers.
func (e *Extractor) ocrPass(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "claimcheck-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.OCRDPI), "-png"}
	if e.cfg.MaxOCRPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", e.cfg.MaxOCRPages))
	}
	args = append(args, path, prefix)
	if _, _, err := e.runner.Run(ctx, e.cfg.PdftoppmBin, args...); err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxOCRPages > 0 && len(matches) > e.cfg.MaxOCRPages {
		matches = matches[:e.cfg.MaxOCRPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	lang := e.cfg.OCRLanguage
	if lang == "" {
		lang = "eng"
	}

	var b strings.Builder
	for i, img := range matches {
		out, _, terr := e.runner.Run(ctx, e.cfg.TesseractBin,
			img, "stdout", "-l", lang, "--psm", "6")
		if terr != nil {
			log.Printf("pdftext.Extractor: tesseract failed on page %d: %v", i+1, terr)
			continue
		}
		fmt.Fprintf(&b, "\n[PAGE %d]\n%s\n", i+1, string(out))
	}
	return strings.TrimSpace(b.String()), nil
}

func (e *Extractor) sufficient(text string) bool {
	min := e.cfg.MinTextLength
	if min <= 0 {
		min = 500
	}
	return countNonSpace(text) >= min
}

func (e *Extractor) writeTemp(doc domain.RawDocument) (string, func(), error) {
	f, err := os.CreateTemp("", "claimcheck-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if _, err := f.Write(doc.Bytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
