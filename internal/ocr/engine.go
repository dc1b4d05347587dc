package ocr

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"lawexam-backend/internal/shared/telemetry"
)

// Engine names accepted in configuration.
const (
	EngineTesseract   = "tesseract"
	EnginePaddle      = "paddleocr"
	EngineUnavailable = "unavailable"
)

// engine recognizes text in a single page image. The set of implementations
// is closed: tesseractEngine, paddleEngine, unavailableEngine.
type engine interface {
	Name() string
	Recognize(imagePath string) (string, error)
}

// newEngine resolves the configured engine name to a concrete variant.
// Unknown names and missing binaries resolve to unavailableEngine; engine
// selection never fails startup.
func newEngine(name, language string) engine {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EngineTesseract:
		if _, err := exec.LookPath("tesseract"); err != nil {
			telemetry.L().Warn().Str("engine", EngineTesseract).Err(err).Msg("ocr engine not available")
			return unavailableEngine{}
		}
		telemetry.L().Info().Str("engine", EngineTesseract).Msg("ocr engine initialized")
		return tesseractEngine{language: language}
	case EnginePaddle:
		if _, err := exec.LookPath("paddleocr"); err != nil {
			telemetry.L().Warn().Str("engine", EnginePaddle).Err(err).Msg("ocr engine not available")
			return unavailableEngine{}
		}
		telemetry.L().Info().Str("engine", EnginePaddle).Msg("ocr engine initialized")
		return paddleEngine{language: language}
	default:
		telemetry.L().Warn().Str("engine", name).Msg("unsupported ocr engine, using fallback mode")
		return unavailableEngine{}
	}
}

type tesseractEngine struct {
	language string
}

func (tesseractEngine) Name() string { return EngineTesseract }

func (e tesseractEngine) Recognize(imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "--psm", "6"}
	switch e.language {
	case "ch_tra":
		args = append(args, "-l", "chi_tra")
	case "ch_sim":
		args = append(args, "-l", "chi_sim")
	}
	out, err := exec.Command("tesseract", args...).Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

type paddleEngine struct {
	language string
}

func (paddleEngine) Name() string { return EnginePaddle }

// paddleResultRe matches the ('text', confidence) tuples the paddleocr CLI
// prints per recognized line.
var paddleResultRe = regexp.MustCompile(`\('(.+?)',\s*[0-9.]+\)`)

func (e paddleEngine) Recognize(imagePath string) (string, error) {
	lang := "ch"
	if e.language == "ch_tra" {
		lang = "chinese_cht"
	}
	out, err := exec.Command(
		"paddleocr",
		"--image_dir", imagePath,
		"--lang", lang,
		"--use_angle_cls", "true",
		"--use_gpu", "false",
	).Output()
	if err != nil {
		return "", fmt.Errorf("paddleocr: %w", err)
	}

	var lines []string
	for _, match := range paddleResultRe.FindAllStringSubmatch(string(out), -1) {
		lines = append(lines, match[1])
	}
	return strings.Join(lines, "\n"), nil
}

type unavailableEngine struct{}

func (unavailableEngine) Name() string { return EngineUnavailable }

func (unavailableEngine) Recognize(imagePath string) (string, error) {
	return "", fmt.Errorf("ocr engine not available: %s", imagePath)
}
