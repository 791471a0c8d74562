package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// TesseractEngine shells out to the tesseract binary, streaming the image
// over stdin and reading text from stdout.
type TesseractEngine struct {
	path string
}

// NewTesseractEngine resolves the binary at path (or on $PATH).
func NewTesseractEngine(path string) (*TesseractEngine, error) {
	if path == "" {
		path = "tesseract"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract not found at %q: %v", ErrUnavailable, path, err)
	}
	return &TesseractEngine{path: resolved}, nil
}

func (t *TesseractEngine) Name() string { return "tesseract" }

func (t *TesseractEngine) Recognize(ctx context.Context, png []byte, lang string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, t.path, tesseractArgs(lang, args)...)
	cmd.Stdin = bytes.NewReader(png)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tesseract exited %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return stdout.String(), nil
}

func tesseractArgs(lang string, args []string) []string {
	out := []string{"stdin", "stdout"}
	if lang != "" {
		out = append(out, "-l", lang)
	}
	return append(out, args...)
}
