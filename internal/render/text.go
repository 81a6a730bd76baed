package render

import (
	"fmt"
	"strings"
)

// Text renders the card as plain text.
func (v View) Text() string {
	var b strings.Builder
	b.WriteString(v.Today)
	b.WriteString("\n\n")
	if v.ShowRefFirst {
		b.WriteString(v.Citation())
		b.WriteString("\n")
		b.WriteString(v.Passage)
		b.WriteString("\n")
	} else {
		b.WriteString(v.Passage)
		b.WriteString("\n— ")
		b.WriteString(v.Citation())
		b.WriteString("\n")
	}
	if v.TomorrowRef != "" {
		fmt.Fprintf(&b, "\nTomorrow: %s\n", v.TomorrowRef)
	}
	return b.String()
}

// Markdown renders the card for a markdown renderer.
func (v View) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", v.Today)
	cite := fmt.Sprintf("**%s** · %s", v.Ref, v.Translation)
	if v.ShowRefFirst {
		fmt.Fprintf(&b, "%s\n\n> %s\n", cite, v.Passage)
	} else {
		fmt.Fprintf(&b, "> %s\n\n— %s\n", v.Passage, cite)
	}
	if v.TomorrowRef != "" {
		fmt.Fprintf(&b, "\nTomorrow: %s\n", v.TomorrowRef)
	}
	return b.String()
}
