package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Runner invokes the tesseract binary and parses its word-level TSV
// output into tokens. It is the OCR collaborator for the detection
// pipeline: tokens it returns are already filtered by the configured
// confidence threshold, so nothing downstream re-filters.
type Runner struct {
	Binary   string // tesseract executable, "tesseract" when empty
	Language string // OCR language, "eng" when empty
}

// tesseract TSV columns:
// level page_num block_num par_num line_num word_num left top width height conf text
const tsvColumns = 12

// Recognize runs OCR on the image at path and returns the recognized
// tokens with confidence of at least confThreshold. Rows with empty
// text or the sentinel confidence -1 are dropped.
func (r *Runner) Recognize(ctx context.Context, path string, confThreshold int) ([]Token, error) {
	binary := r.Binary
	if binary == "" {
		binary = "tesseract"
	}
	language := r.Language
	if language == "" {
		language = "eng"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, path, "stdout", "-l", language, "tsv")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract failed for %s: %w (%s)", path, err, strings.TrimSpace(stderr.String()))
	}

	return parseTSV(&stdout, confThreshold)
}

// parseTSV reads tesseract's TSV output and keeps word rows at or
// above the confidence threshold.
func parseTSV(r io.Reader, confThreshold int) ([]Token, error) {
	var tokens []Token

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			// header row
			first = false
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != tsvColumns {
			continue
		}

		text := fields[11]
		if strings.TrimSpace(text) == "" {
			continue
		}

		// tesseract reports confidence as a float; -1 marks
		// structural rows without recognized text.
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		if int(conf) < confThreshold {
			continue
		}

		x, errX := strconv.Atoi(fields[6])
		y, errY := strconv.Atoi(fields[7])
		w, errW := strconv.Atoi(fields[8])
		h, errH := strconv.Atoi(fields[9])
		if errX != nil || errY != nil || errW != nil || errH != nil {
			continue
		}

		tokens = append(tokens, Token{
			Text: text,
			X:    x,
			Y:    y,
			W:    w,
			H:    h,
			Conf: int(conf),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tesseract output: %w", err)
	}
	return tokens, nil
}
