package pipeline

import "minuteminds/internal/gateway"

// Summary holds the summarize stage's output.
type Summary struct {
	Text         string   `json:"text"`
	BulletPoints []string `json:"bullet_points"`
}

// KeyItem is a decision or action item extracted from the transcript. The ID
// is assigned locally at extraction time and stays stable across reorderings,
// so callers can address an item without relying on its position.
type KeyItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status"`
}

// Done reports whether the item has been marked completed.
func (k KeyItem) Done() bool { return k.Status == StatusDone }

// Key item status values. Anything the backend returns that is not "done"
// normalizes to open.
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Document is the artifact the pipeline operates on. All fields derived from
// the transcript are cleared whenever a new transcript arrives.
type Document struct {
	ID           string            `json:"id"`
	Filename     string            `json:"filename"`
	Transcript   string            `json:"transcript"`
	Segments     []gateway.Segment `json:"segments,omitempty"`
	Summary      *Summary          `json:"summary,omitempty"`
	KeyItems     []KeyItem         `json:"key_items,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
	Exports      map[string]string `json:"exports,omitempty"`
}

// HasTranscript reports whether the transcribe stage has produced output.
func (d Document) HasTranscript() bool { return d.ID != "" }

func (d *Document) clone() Document {
	copied := *d
	if d.Segments != nil {
		copied.Segments = append([]gateway.Segment(nil), d.Segments...)
	}
	if d.Summary != nil {
		summary := *d.Summary
		summary.BulletPoints = append([]string(nil), d.Summary.BulletPoints...)
		copied.Summary = &summary
	}
	if d.KeyItems != nil {
		copied.KeyItems = append([]KeyItem(nil), d.KeyItems...)
	}
	if d.Translations != nil {
		copied.Translations = make(map[string]string, len(d.Translations))
		for lang, text := range d.Translations {
			copied.Translations[lang] = text
		}
	}
	if d.Exports != nil {
		copied.Exports = make(map[string]string, len(d.Exports))
		for format, label := range d.Exports {
			copied.Exports[format] = label
		}
	}
	return copied
}
