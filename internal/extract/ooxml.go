package extract

import (
	"archive/zip"
	"fmt"
	"regexp"
	"strings"
)

const (
	wordDocumentPath  = "word/document.xml"
	slidePathPrefix   = "ppt/slides/slide"
	contentTypesEntry = "[Content_Types].xml"
	wordMainType      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// Word keeps text in <w:t> runs, slides in <a:t> runs. Attributes on
// the tag (xml:space and friends) vary, the inner text does not nest.
var (
	wordTextRun  = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	slideTextRun = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

	// Attribute order in [Content_Types].xml differs between producers.
	wordPartName    = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(wordMainType) + `"`)
	wordPartNameAlt = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(wordMainType) + `"[^>]+PartName="([^"]+)"`)
)

// wordMainPart resolves the main document entry from
// [Content_Types].xml, falling back to the conventional path. Some
// producers write word/document2.xml and the like.
func wordMainPart(zr *zip.Reader) string {
	data, err := archiveFile(zr, contentTypesEntry)
	if err != nil || data == nil {
		return wordDocumentPath
	}
	content := string(data)
	if m := wordPartName.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := wordPartNameAlt.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return wordDocumentPath
}

// extractWord pulls the text runs out of a .docx body.
func extractWord(content []byte) (string, error) {
	zr, err := openArchive(content)
	if err != nil {
		return "", fmt.Errorf("extract docx: not a zip: %w", err)
	}
	part := wordMainPart(zr)
	data, err := archiveFile(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}
	if data == nil {
		return "", fmt.Errorf("extract docx: %s not found", part)
	}
	return collectText(string(data), wordTextRun), nil
}

// extractSlides pulls the text runs out of every slide of a .pptx, in
// archive order.
func extractSlides(content []byte) (string, error) {
	zr, err := openArchive(content)
	if err != nil {
		return "", fmt.Errorf("extract pptx: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, slidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		data, err := archiveFile(zr, f.Name)
		if err != nil {
			return "", fmt.Errorf("extract pptx: %w", err)
		}
		if text := collectText(string(data), slideTextRun); text != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}
