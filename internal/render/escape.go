package render

import "html"

// Escape replaces the markup-significant characters & < > " ' with
// entities. Every piece of user or service text written into HTML goes
// through here.
func Escape(s string) string {
	return html.EscapeString(s)
}
