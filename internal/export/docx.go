package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docFontName = "Calibri"
	docFontSize = 11
	headingSize = 14
	titleSize   = 18
)

// Minutes carries everything the local renderer puts into a document. It is
// deliberately decoupled from the pipeline's types so the renderer can be
// fed from any source.
type Minutes struct {
	Title      string
	Date       time.Time
	Transcript string
	Segments   []SegmentLine
	Summary    string
	Bullets    []string
	Items      []ItemLine
}

// SegmentLine is one timed line of the transcript.
type SegmentLine struct {
	Start float64
	End   float64
	Text  string
}

// ItemLine is one decision or action item.
type ItemLine struct {
	Text     string
	Assignee string
	Done     bool
}

// RenderDocx writes the minutes as a .docx file at outputPath. It is used
// when the caller wants a locally rendered document instead of the backend's
// export payload.
func RenderDocx(m Minutes, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = "Meeting Minutes"
	}
	addHeading(doc, title, titleSize)
	if !m.Date.IsZero() {
		addBody(doc, m.Date.Format("January 2, 2006"))
	}

	if strings.TrimSpace(m.Summary) != "" {
		addHeading(doc, "Summary", headingSize)
		addBody(doc, m.Summary)
		for _, bullet := range m.Bullets {
			addBody(doc, "• "+bullet)
		}
	}

	if len(m.Items) > 0 {
		addHeading(doc, "Decisions & Action Items", headingSize)
		for _, item := range m.Items {
			marker := "[ ]"
			if item.Done {
				marker = "[x]"
			}
			line := marker + " " + item.Text
			if item.Assignee != "" {
				line += " (" + item.Assignee + ")"
			}
			addBody(doc, line)
		}
	}

	if len(m.Segments) > 0 {
		addHeading(doc, "Transcript", headingSize)
		for _, segment := range m.Segments {
			addBody(doc, fmt.Sprintf("[%s - %s] %s", clock(segment.Start), clock(segment.End), segment.Text))
		}
	} else if strings.TrimSpace(m.Transcript) != "" {
		addHeading(doc, "Transcript", headingSize)
		addBody(doc, m.Transcript)
	}

	return doc.SaveTo(outputPath)
}

func addHeading(doc *docx.RootDoc, text string, size uint64) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(docFontName).Size(size).Color("000000").Bold(true)
}

func addBody(doc *docx.RootDoc, text string) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(docFontName).Size(docFontSize).Color("000000")
}

func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
