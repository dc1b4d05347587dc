package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"lawexam-backend/internal/shared/telemetry"
)

// rasterDPI renders PDF pages at roughly 2x the 72dpi page size, trading
// memory for OCR accuracy.
const rasterDPI = 144

// PageText is the recognized text of one page.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Metadata describes how an extraction ran.
type Metadata struct {
	Engine     string `json:"engine"`
	Language   string `json:"language"`
	TotalPages int    `json:"total_pages"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Result is the outcome of extracting one document.
type Result struct {
	Text  string     `json:"text"`
	Pages []PageText `json:"pages"`
	Meta  Metadata   `json:"metadata"`
}

// Extractor converts stored files into plain text using the configured OCR
// engine. Extraction work runs under a bounded worker pool so it does not
// starve concurrent request handling; callers block until completion.
type Extractor struct {
	engine   engine
	language string
	sem      chan struct{}
}

// NewExtractor builds an Extractor for the named engine. Unknown or
// uninstalled engines degrade to a fallback mode instead of failing.
func NewExtractor(engineName, language string, workers int) *Extractor {
	if workers <= 0 {
		workers = 2
	}
	return &Extractor{
		engine:   newEngine(engineName, language),
		language: language,
		sem:      make(chan struct{}, workers),
	}
}

// Available reports whether a real OCR engine backs this extractor.
func (e *Extractor) Available() bool {
	_, unavailable := e.engine.(unavailableEngine)
	return !unavailable
}

// Extract recognizes text from the file at path. PDF pages are rasterized
// and recognized individually; a failing page contributes an empty string
// rather than aborting the document.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-e.sem }()

	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("source file not found: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return e.extractPDF(path)
	}
	return e.extractImage(path)
}

func (e *Extractor) extractPDF(path string) (Result, error) {
	if !e.Available() {
		return e.pdfTextLayer(path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	result := Result{
		Meta: Metadata{
			Engine:     e.engine.Name(),
			Language:   e.language,
			TotalPages: doc.NumPage(),
		},
	}

	var sections []string
	for i := 0; i < doc.NumPage(); i++ {
		pageText := e.recognizePage(doc, path, i)
		result.Pages = append(result.Pages, PageText{Page: i + 1, Text: pageText})
		if pageText != "" {
			sections = append(sections, fmt.Sprintf("=== 第 %d 頁 ===\n%s", i+1, pageText))
		}
	}

	result.Text = strings.Join(sections, "\n\n")
	result.Meta.Success = true
	telemetry.L().Info().Str("path", path).Int("pages", len(result.Pages)).Msg("pdf text extraction completed")
	return result, nil
}

// recognizePage rasterizes one page, runs the engine on it, and removes the
// intermediate image regardless of outcome. A page-level failure yields an
// empty string so partial results are always returned.
func (e *Extractor) recognizePage(doc *fitz.Document, pdfPath string, pageNum int) string {
	img, err := doc.ImageDPI(pageNum, rasterDPI)
	if err != nil {
		telemetry.L().Error().Err(err).Int("page", pageNum+1).Msg("page rasterization failed")
		return ""
	}

	imagePath := fmt.Sprintf("%s_page_%d.png", strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)), pageNum+1)
	f, err := os.Create(imagePath)
	if err != nil {
		telemetry.L().Error().Err(err).Int("page", pageNum+1).Msg("write page image failed")
		return ""
	}
	defer os.Remove(imagePath)

	encodeErr := png.Encode(f, img)
	closeErr := f.Close()
	if encodeErr != nil || closeErr != nil {
		telemetry.L().Error().Int("page", pageNum+1).Msg("encode page image failed")
		return ""
	}

	text, err := e.engine.Recognize(imagePath)
	if err != nil {
		telemetry.L().Error().Err(err).Int("page", pageNum+1).Msg("page recognition failed")
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Extractor) extractImage(path string) (Result, error) {
	meta := Metadata{
		Engine:     e.engine.Name(),
		Language:   e.language,
		TotalPages: 1,
	}

	var text string
	if e.Available() {
		recognized, err := e.engine.Recognize(path)
		if err != nil {
			telemetry.L().Error().Err(err).Str("path", path).Msg("image recognition failed")
		} else {
			text = recognized
		}
	} else {
		text = fallbackText(path)
	}

	meta.Success = text != ""
	return Result{
		Text:  text,
		Pages: []PageText{{Page: 1, Text: text}},
		Meta:  meta,
	}, nil
}

// pdfTextLayer extracts the embedded text layer when no OCR engine is
// installed, so scanned-free PDFs still produce usable content.
func (e *Extractor) pdfTextLayer(path string) (Result, error) {
	result := Result{
		Meta: Metadata{Engine: EngineUnavailable, Language: e.language, TotalPages: 1},
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		result.Text = fallbackText(path)
		result.Pages = []PageText{{Page: 1, Text: result.Text}}
		result.Meta.Success = true
		return result, nil
	}
	defer f.Close()

	result.Meta.TotalPages = reader.NumPage()
	var sections []string
	for i := 1; i <= reader.NumPage(); i++ {
		pageText := ""
		if page := reader.Page(i); !page.V.IsNull() {
			if content, err := page.GetPlainText(nil); err == nil {
				pageText = strings.TrimSpace(content)
			}
		}
		result.Pages = append(result.Pages, PageText{Page: i, Text: pageText})
		if pageText != "" {
			sections = append(sections, fmt.Sprintf("=== 第 %d 頁 ===\n%s", i, pageText))
		}
	}

	result.Text = strings.Join(sections, "\n\n")
	if strings.TrimSpace(result.Text) == "" {
		result.Text = fallbackText(path)
	}
	result.Meta.Success = true
	return result, nil
}

func fallbackText(path string) string {
	return fmt.Sprintf("[OCR不可用] 無法提取文字內容，檔案: %s", filepath.Base(path))
}
