package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// RasterizeStrategy renders the first page of a PDF to PNG with pdftoppm and
// runs the image strategy over the result. Only useful when the document
// strategies choke on the PDF itself.
type RasterizeStrategy struct {
	image        *ImageInlineStrategy
	runner       Runner
	pdftoppmPath string
	dpi          int
}

func NewRasterizeStrategy(image *ImageInlineStrategy, pdftoppmPath string) *RasterizeStrategy {
	return &RasterizeStrategy{
		image:        image,
		runner:       execRunner{},
		pdftoppmPath: pdftoppmPath,
		dpi:          200,
	}
}

// WithRunner replaces the command runner (tests).
func (s *RasterizeStrategy) WithRunner(r Runner) *RasterizeStrategy {
	s.runner = r
	return s
}

func (s *RasterizeStrategy) Name() string { return "pdf-rasterize" }

func (s *RasterizeStrategy) Supports(ext string) bool { return ext == "pdf" }

func (s *RasterizeStrategy) Timeout() time.Duration { return 90 * time.Second }

func (s *RasterizeStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	tmpDir, err := os.MkdirTemp("", "faturai-raster-*")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction, "failed to create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "invoice.pdf")
	if err := os.WriteFile(pdfPath, file.Bytes, 0600); err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction, "failed to write temp PDF", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -f 1 -l 1 <in.pdf> <tmp/page>
	_, errb, err := s.runner.Run(ctx, s.pdftoppmPath,
		"-r", fmt.Sprintf("%d", s.dpi), "-png", "-f", "1", "-l", "1", pdfPath, prefix)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction,
			fmt.Sprintf("pdftoppm failed: %s", string(errb)), err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, apperr.New(apperr.KindExtraction, "pdftoppm produced no images")
	}

	pageBytes, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction, "failed to read rendered page", err)
	}

	return s.image.Extract(ctx, RawFile{Key: file.Key, Ext: "png", Bytes: pageBytes})
}
