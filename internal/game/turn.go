package game

import "minigames/internal/model"

// ActivePlayers returns the turn-order subset still eligible to act:
// neither eliminated nor already won.
func ActivePlayers(s *model.GameSession) []string {
	if s.Word == nil {
		return nil
	}
	active := make([]string, 0, len(s.TurnOrder))
	for _, id := range s.TurnOrder {
		if p := s.Word.Players[id]; p != nil && !p.Eliminated && !p.Won {
			active = append(active, id)
		}
	}
	return active
}

// NextTurn picks the active player strictly after current in rotation
// order, wrapping. When current is absent from the order the scan starts
// at the front. Returns false when nobody is active.
func NextTurn(order []string, current string, active []string) (string, bool) {
	if len(active) == 0 {
		return "", false
	}
	isActive := make(map[string]bool, len(active))
	for _, id := range active {
		isActive[id] = true
	}

	start := 0
	for i, id := range order {
		if id == current {
			start = i + 1
			break
		}
	}
	for i := 0; i < len(order); i++ {
		id := order[(start+i)%len(order)]
		if isActive[id] {
			return id, true
		}
	}
	return "", false
}
