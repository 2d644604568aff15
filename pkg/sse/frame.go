package sse

import "strings"

// ParseFrame decodes a single frame, as returned by Assembler.Absorb, into an
// Event. Every "data:" line contributes its value, trimmed of surrounding
// whitespace, and the values are joined with "\n" in their original order.
//
// Frames without any data line (keep-alives, comments, bare "event:" lines)
// yield false and should be ignored.
func ParseFrame(frame string) (*Event, bool) {
	var (
		ev   Event
		data []string
	)

	for line := range strings.SplitSeq(frame, "\n") {
		line = strings.TrimSuffix(line, "\r")

		// Lines starting with ':' are comments and lines without a colon carry
		// no value. Both fall through the switch below.
		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch field {
		case "data":
			data = append(data, strings.TrimSpace(value))
		case "event":
			ev.Type = strings.TrimSpace(value)
		case "id":
			ev.ID = strings.TrimSpace(value)
		default:
			// "retry" and unknown fields are ignored, as browsers do.
		}
	}

	if len(data) == 0 {
		return nil, false
	}

	ev.Data = strings.Join(data, "\n")
	return &ev, true
}
