package session

// HandleRestart returns the session to its initial lifecycle: the origin
// re-anchors to the player's current position, the store empties, score and
// hand reset. This is the only operation that invalidates the meaning of
// previously generated cell keys, and the only one that forgets player
// changes.
func (s *Session) HandleRestart() {
	for _, k := range s.win.Drop() {
		s.emitReleased(k)
	}

	s.origin = s.pos
	s.cells.Clear()
	s.held = 0
	s.score = 0
	s.won = false

	s.journalEntry("RESTART", s.PlayerCell(), 0)
	s.refreshWindow()
}
