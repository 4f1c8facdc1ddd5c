package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spherical/docqa/internal/domain"
)

// maxEntryBytes caps the decompressed size of a single archive entry.
const maxEntryBytes = 64 << 20

const (
	nsWordML    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

var errEntryTooLarge = errors.New("archive entry exceeds decompression limit")

func openArchive(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.ExtractionError("not a valid Office Open XML archive", err)
	}
	return zr, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxEntryBytes {
		return nil, errEntryTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxEntryBytes {
		return nil, errEntryTooLarge
	}
	return b, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// textWalker collects character data inside text elements of one namespace
// and maps layout elements to whitespace.
type textWalker struct {
	space string
	text  string            // element holding text runs
	para  string            // element ending a paragraph
	run   string            // when set, marks only count inside this element
	marks map[string]string // empty elements rendered as whitespace
}

func (w textWalker) walk(ctx context.Context, data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var b strings.Builder
	inText, inRun := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != w.space {
				continue
			}
			switch t.Name.Local {
			case w.text:
				inText++
			case w.run:
				inRun++
			default:
				if m, ok := w.marks[t.Name.Local]; ok && (w.run == "" || inRun > 0) {
					b.WriteString(m)
				}
			}
		case xml.EndElement:
			if t.Name.Space != w.space {
				continue
			}
			switch t.Name.Local {
			case w.text:
				if inText > 0 {
					inText--
				}
			case w.run:
				if inRun > 0 {
					inRun--
				}
			case w.para:
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				b.Write(t)
			}
		}
	}
	return tidyLines(b.String()), nil
}

// tidyLines trims trailing spaces and squeezes runs of blank lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// WordStrategy extracts word-modern (.docx) documents.
type WordStrategy struct {
	walker textWalker
}

// NewWordStrategy creates a docx strategy.
func NewWordStrategy() *WordStrategy {
	return &WordStrategy{walker: textWalker{
		space: nsWordML,
		text:  "t",
		para:  "p",
		run:   "r",
		marks: map[string]string{"tab": "\t", "br": "\n", "cr": "\n"},
	}}
}

// Extract implements domain.Strategy.
func (s *WordStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	zr, err := openArchive(data)
	if err != nil {
		return "", err
	}
	f := findEntry(zr, "word/document.xml")
	if f == nil {
		return "", domain.ExtractionError("word/document.xml missing from archive", nil)
	}
	body, err := readEntry(f)
	if err != nil {
		return "", domain.ExtractionError("cannot read Word document body", err)
	}
	text, err := s.walker.walk(ctx, body)
	if err != nil {
		return "", domain.ExtractionError("malformed Word document XML", err)
	}
	return text, nil
}

var slideEntry = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// PowerPointStrategy extracts powerpoint-modern (.pptx) presentations.
type PowerPointStrategy struct {
	walker textWalker
}

// NewPowerPointStrategy creates a pptx strategy.
func NewPowerPointStrategy() *PowerPointStrategy {
	return &PowerPointStrategy{walker: textWalker{
		space: nsDrawingML,
		text:  "t",
		para:  "p",
		marks: map[string]string{"br": "\n"},
	}}
}

// Extract implements domain.Strategy.
func (s *PowerPointStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	zr, err := openArchive(data)
	if err != nil {
		return "", err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideEntry.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	if len(slides) == 0 && findEntry(zr, "ppt/presentation.xml") == nil {
		return "", domain.ExtractionError("archive is not a PowerPoint presentation", nil)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	blocks := make([]string, 0, len(slides))
	for _, sl := range slides {
		body, err := readEntry(sl.file)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("cannot read slide %d", sl.num), err)
		}
		text, err := s.walker.walk(ctx, body)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("malformed XML in slide %d", sl.num), err)
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Slide %d:\n%s", sl.num, text))
	}
	return strings.Join(blocks, "\n\n"), nil
}
