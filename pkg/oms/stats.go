package oms

import "sync/atomic"

type counters struct {
	submitted    atomic.Int64
	processed    atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
	dropped      atomic.Int64
	matches      atomic.Int64
	matchedQty   atomic.Int64
}

type Stats struct {
	Submitted    int64 `json:"submitted"`
	Processed    int64 `json:"processed"`
	Retried      int64 `json:"retried"`
	DeadLettered int64 `json:"dead_lettered"`
	Dropped      int64 `json:"dropped"`
	Matches      int64 `json:"matches"`
	MatchedQty   int64 `json:"matched_qty"`
	Queued       int   `json:"queued"`
	InFlight     int   `json:"in_flight"`
}

func (s *OMS) Stats() Stats {
	return Stats{
		Submitted:    s.stats.submitted.Load(),
		Processed:    s.stats.processed.Load(),
		Retried:      s.stats.retried.Load(),
		DeadLettered: s.stats.deadLettered.Load(),
		Dropped:      s.stats.dropped.Load(),
		Matches:      s.stats.matches.Load(),
		MatchedQty:   s.stats.matchedQty.Load(),
		Queued:       s.submissions.Len(),
		InFlight:     s.inFlightCount(),
	}
}
