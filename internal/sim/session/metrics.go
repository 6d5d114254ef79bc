package session

import "time"

// Metrics is a point-in-time view published by the session goroutine and read
// lock-free by the HTTP layer.
type Metrics struct {
	Tick         uint64  `json:"tick"`
	DecidedCells int     `json:"decided_cells"`
	VisibleCells int     `json:"visible_cells"`
	Held         uint16  `json:"held"`
	Score        int     `json:"score"`
	Won          bool    `json:"won"`
	Clients      int     `json:"clients"`
	ActsApplied  int     `json:"acts_applied"`
	InboxDepth   int     `json:"inbox_depth"`
	StepMS       float64 `json:"step_ms"`
}

func (s *Session) Metrics() Metrics {
	if m := s.metrics.Load(); m != nil {
		return *m
	}
	return Metrics{}
}

func (s *Session) publishMetrics(tick uint64, applied int, dur time.Duration) {
	s.metrics.Store(&Metrics{
		Tick:         tick,
		DecidedCells: s.cells.Len(),
		VisibleCells: s.win.Size(),
		Held:         s.held,
		Score:        s.score,
		Won:          s.won,
		Clients:      len(s.clients),
		ActsApplied:  applied,
		InboxDepth:   len(s.acts),
		StepMS:       float64(dur.Microseconds()) / 1000.0,
	})
}
