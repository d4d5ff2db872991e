package game

import (
	"sort"

	"minigames/internal/model"
)

// Rank computes the standings for a session snapshot. It is pure: the
// same snapshot always yields the same ordering, so it serves both live
// broadcasts and the final persisted record.
//
// Order: higher score first; among completed players the earlier
// completion first; a completed player beats an incomplete one at equal
// score; name then player ID break exact ties. Tied players (equal score
// and identical completion status/instant) share a rank number and the
// next distinct player takes their 1-based position.
func Rank(s *model.GameSession) []model.RankEntry {
	entries := make([]model.RankEntry, 0, len(s.TurnOrder))
	for _, id := range participantsForRanking(s) {
		p := s.Players[id]
		if p == nil {
			continue
		}
		e := model.RankEntry{PlayerID: id, Name: p.Name}
		switch {
		case s.Word != nil:
			e.Score = WordScore(s.Word, id)
			if wp := s.Word.Players[id]; wp != nil {
				e.CompletedAt = wp.WonAt
			}
		case s.Numbers != nil:
			e.Score = NumberScore(s.Numbers, id)
			if np := s.Numbers.Players[id]; np != nil {
				e.CompletedAt = np.CompletedAt
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.CompletedAt != nil && b.CompletedAt != nil:
			if !a.CompletedAt.Equal(*b.CompletedAt) {
				return a.CompletedAt.Before(*b.CompletedAt)
			}
		case a.CompletedAt != nil:
			return true
		case b.CompletedAt != nil:
			return false
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})

	for i := range entries {
		if i > 0 && tied(entries[i-1], entries[i]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

func tied(a, b model.RankEntry) bool {
	if a.Score != b.Score {
		return false
	}
	if (a.CompletedAt == nil) != (b.CompletedAt == nil) {
		return false
	}
	if a.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt) {
		return false
	}
	return true
}

// participantsForRanking prefers the fixed turn order when one exists
// (word game); the number game ranks all participants by join order.
func participantsForRanking(s *model.GameSession) []string {
	if len(s.TurnOrder) > 0 {
		return s.TurnOrder
	}
	return s.ParticipantIDs()
}
