// Package ocr runs text recognition engines over document images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"securekyc/internal/models"
)

// Engine recognises text in a PNG-encoded image. args are engine-specific
// tuning flags; nil means the engine defaults.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte, lang string, args []string) (string, error)
}

// ErrUnavailable is returned by engines that could not be initialised.
var ErrUnavailable = errors.New("ocr engine unavailable")

// DefaultConfigs are tried in order before the unconfigured attempt:
// recognition engine mode then page segmentation mode.
var DefaultConfigs = [][]string{
	{"--oem", "3", "--psm", "6"},
	{"--oem", "1", "--psm", "6"},
	{"--oem", "1", "--psm", "3"},
	{"--oem", "1", "--psm", "7"},
}

const minUsefulChars = 3

// LangFor returns the language hint for a document type.
func LangFor(doc models.DocType) string {
	if doc == models.DocAadhaar {
		return "eng+hin"
	}
	return "eng"
}

// Invoker tries an engine with several configurations and keeps the first
// useful result.
type Invoker struct {
	engine  Engine
	configs [][]string
	timeout time.Duration
	log     *zap.Logger
}

// NewInvoker wraps engine. Each attempt is bounded by timeout when it is
// positive.
func NewInvoker(engine Engine, timeout time.Duration, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{
		engine:  engine,
		configs: DefaultConfigs,
		timeout: timeout,
		log:     log.Named("ocr").With(zap.String("engine", engine.Name())),
	}
}

// Text returns the cleaned text of the first configuration yielding at least
// three characters, then falls back to one unconfigured attempt. Failures
// are logged and reported as "".
func (inv *Invoker) Text(ctx context.Context, png []byte, lang string) string {
	for _, cfg := range inv.configs {
		txt, err := inv.attempt(ctx, png, lang, cfg)
		if err != nil {
			inv.log.Debug("ocr attempt failed", zap.Strings("config", cfg), zap.Error(err))
			continue
		}
		if utf8.RuneCountInString(txt) >= minUsefulChars {
			return txt
		}
	}

	txt, err := inv.attempt(ctx, png, lang, nil)
	if err != nil {
		inv.log.Debug("fallback ocr attempt failed", zap.Error(err))
		return ""
	}
	return txt
}

func (inv *Invoker) attempt(ctx context.Context, png []byte, lang string, cfg []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}
	raw, err := inv.engine.Recognize(ctx, png, lang, cfg)
	if err != nil {
		return "", err
	}
	return CleanText(raw), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, ln := range lines {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

// Open builds the engine named by kind: "tesseract" (default) or "vision".
func Open(ctx context.Context, kind, tesseractPath, credPath string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "vision":
		return NewVisionEngine(ctx, credPath)
	case "", "tesseract":
		return NewTesseractEngine(tesseractPath)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", kind)
	}
}

type unavailableEngine struct{ err error }

// Unavailable returns an engine whose every call fails with err wrapped in
// ErrUnavailable. It stands in when no real engine could be started, so
// extraction degrades to empty reads instead of refusing to serve.
func Unavailable(err error) Engine { return unavailableEngine{err: err} }

func (unavailableEngine) Name() string { return "unavailable" }

func (u unavailableEngine) Recognize(context.Context, []byte, string, []string) (string, error) {
	if errors.Is(u.err, ErrUnavailable) {
		return "", u.err
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, u.err)
}
