package export

import "time"

// Label names an exported minutes file. The name depends only on the date
// and the format, so exporting twice on the same day yields the same label.
func Label(t time.Time, format string) string {
	return "minutes_" + t.Format("2006-01-02") + "." + format
}
