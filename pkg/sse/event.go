// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame assembler and decoder for consuming a long-lived notification stream.
//
// Raw body chunks are fed to an Assembler which reassembles them into frames
// delimited by a blank line. Each frame is then parsed with ParseFrame into an
// Event carrying the joined "data:" payload.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// each trimmed of surrounding whitespace and joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
