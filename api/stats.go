package api

import (
	"time"

	"github.com/papercomputeco/replybot/bot/worker"
	"github.com/papercomputeco/replybot/pkg/reply"
	"github.com/papercomputeco/replybot/pkg/stream"
)

// Stats aggregates the counters of every pipeline stage.
type Stats struct {
	Instance  string              `json:"instance"`
	StartedAt time.Time           `json:"started_at"`
	Stream    stream.Stats        `json:"stream"`
	Dispatch  reply.DispatchStats `json:"dispatch"`
	Workers   worker.Stats        `json:"workers"`

	// Replies is filled from the ledger at request time.
	Replies int `json:"replies"`
}
