package answer

import (
	"regexp"
	"strconv"

	"github.com/jackzampolin/kaidan/internal/retrieval"
)

// citePattern matches an inline citation marker: <cite idx="N">...</cite>.
// The inner text may span lines.
var citePattern = regexp.MustCompile(`(?s)<cite idx="(\d+)">(.*?)</cite>`)

// Segment is a run of reply text, optionally linked to the evidence item the
// generation service cited for it.
type Segment struct {
	Text   string                  `json:"text"`
	Source *retrieval.EvidenceItem `json:"source,omitempty"`
}

// ResolveCitations splits reply into segments, attaching the referenced
// evidence item to each cited span. Marker indices are 1-based; an index
// outside the evidence range keeps the span's text but links nothing.
func ResolveCitations(reply string, evidence []retrieval.EvidenceItem) []Segment {
	var segments []Segment
	last := 0

	for _, m := range citePattern.FindAllStringSubmatchIndex(reply, -1) {
		if m[0] > last {
			segments = append(segments, Segment{Text: reply[last:m[0]]})
		}

		inner := reply[m[4]:m[5]]
		seg := Segment{Text: inner}
		if idx, err := strconv.Atoi(reply[m[2]:m[3]]); err == nil && idx >= 1 && idx <= len(evidence) {
			seg.Source = &evidence[idx-1]
		}
		segments = append(segments, seg)
		last = m[1]
	}

	if last < len(reply) {
		segments = append(segments, Segment{Text: reply[last:]})
	}
	return segments
}
