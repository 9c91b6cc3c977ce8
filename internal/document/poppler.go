package document

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// Poppler command names. Overridable for installations with unusual paths.
var (
	PDFInfoCommand  = "pdfinfo"
	PDFToPPMCommand = "pdftoppm"
)

var pageSizeLine = regexp.MustCompile(`^Page\s+(\d+)\s+size:\s+([0-9.]+)\s+x\s+([0-9.]+)\s+pts`)

// PopplerAvailable reports whether both poppler commands are on PATH.
func PopplerAvailable() bool {
	if _, err := exec.LookPath(PDFInfoCommand); err != nil {
		return false
	}
	_, err := exec.LookPath(PDFToPPMCommand)
	return err == nil
}

func countPages(ctx context.Context, pdfPath string) (int, error) {
	output, err := exec.CommandContext(ctx, PDFInfoCommand, pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed: %w", err)
	}
	return parsePageCount(output)
}

func parsePageCount(output []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Pages:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				if total, convErr := strconv.Atoi(parts[1]); convErr == nil {
					return total, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("failed to determine page count from pdfinfo output")
}

func pageSizes(ctx context.Context, pdfPath string, pages int) ([]Rect, error) {
	if pages == 0 {
		return nil, nil
	}
	args := []string{"-f", "1", "-l", strconv.Itoa(pages), pdfPath}
	output, err := exec.CommandContext(ctx, PDFInfoCommand, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("pdfinfo failed: %w", err)
	}
	return parsePageSizes(output, pages)
}

// parsePageSizes reads "Page N size: W x H pts" lines. Every page from 1 to
// pages must be present.
func parsePageSizes(output []byte, pages int) ([]Rect, error) {
	rects := make([]Rect, pages)
	seen := make([]bool, pages)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := pageSizeLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > pages {
			continue
		}
		w, werr := strconv.ParseFloat(m[2], 64)
		h, herr := strconv.ParseFloat(m[3], 64)
		if werr != nil || herr != nil {
			return nil, fmt.Errorf("bad size for page %d: %q", n, m[0])
		}
		rects[n-1] = Rect{X0: 0, Y0: 0, X1: w, Y1: h}
		seen[n-1] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("pdfinfo reported no size for page %d", i+1)
		}
	}
	return rects, nil
}

// renderPage rasterizes one page (1-based) to PNG in workDir and decodes it.
// The intermediate file is removed before returning.
func renderPage(ctx context.Context, pdfPath, workDir string, page int, zoom float64) (image.Image, error) {
	dpi := 72.0 * zoom
	prefix := filepath.Join(workDir, fmt.Sprintf("page-%d", page))
	args := []string{
		"-png",
		"-r", strconv.FormatFloat(dpi, 'f', -1, 64),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		pdfPath,
		prefix,
	}
	cmd := exec.CommandContext(ctx, PDFToPPMCommand, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, strings.TrimSpace(string(output)))
	}

	rendered := prefix + ".png"
	defer os.Remove(rendered)

	img, err := imgio.Open(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to load rendered page %d: %w", page, err)
	}
	return img, nil
}
