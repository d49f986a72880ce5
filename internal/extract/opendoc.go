package extract

import (
	"fmt"
	"regexp"
)

// OpenDocument files (.odt, .odp, .ods) keep their body in content.xml.
const odfContentEntry = "content.xml"

var (
	odfPara    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfSpan    = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfHeading = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// extractOpenDoc handles all three OpenDocument flavors: text
// documents, presentations, and spreadsheets wrap their text in the
// same text:p, text:span, and text:h elements.
func extractOpenDoc(content []byte) (string, error) {
	zr, err := openArchive(content)
	if err != nil {
		return "", fmt.Errorf("extract opendocument: not a zip: %w", err)
	}
	data, err := archiveFile(zr, odfContentEntry)
	if err != nil {
		return "", fmt.Errorf("extract opendocument: %w", err)
	}
	if data == nil {
		return "", fmt.Errorf("extract opendocument: %s not found", odfContentEntry)
	}
	return collectText(string(data), odfPara, odfSpan, odfHeading), nil
}
