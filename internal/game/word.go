package game

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"minigames/internal/model"
)

// DefaultAttempts is how many wrong guesses eliminate a player.
const DefaultAttempts = 6

var (
	ErrInvalidLetter  = errors.New("game: guess must be a single letter")
	ErrInvalidWord    = errors.New("game: word guess must be alphabetic")
	ErrAlreadyGuessed = errors.New("game: letter already guessed")
	ErrNotPlaying     = errors.New("game: player is not an active participant")
)

// NewWordState initializes word-game state for the given participants.
func NewWordState(word, category string, participants []string) *model.WordGameState {
	ws := &model.WordGameState{
		Word:     strings.ToLower(strings.TrimSpace(word)),
		Category: category,
		Players:  make(map[string]*model.WordPlayer, len(participants)),
	}
	for _, id := range participants {
		ws.Players[id] = &model.WordPlayer{
			Correct:      []string{},
			Wrong:        []string{},
			AttemptsLeft: DefaultAttempts,
		}
	}
	return ws
}

// revealed is the union of every player's correct letters.
func revealed(ws *model.WordGameState) map[rune]bool {
	set := make(map[rune]bool)
	for _, p := range ws.Players {
		for _, l := range p.Correct {
			for _, r := range l {
				set[r] = true
			}
		}
	}
	return set
}

// MaskedWord blanks letters nobody has guessed yet.
func MaskedWord(ws *model.WordGameState) string {
	set := revealed(ws)
	var b strings.Builder
	for _, r := range ws.Word {
		if set[r] || !unicode.IsLetter(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// MaskComplete reports whether the masked word has no blanks left.
func MaskComplete(ws *model.WordGameState) bool {
	return !strings.ContainsRune(MaskedWord(ws), '_')
}

// LetterResult describes the effect of an accepted letter guess.
type LetterResult struct {
	Correct      bool
	Eliminated   bool
	MaskComplete bool
}

// ApplyLetter validates and applies a single-letter guess. A wrong guess
// consumes an attempt and may eliminate the player; a timeout never goes
// through here.
func ApplyLetter(ws *model.WordGameState, playerID, letter string) (LetterResult, error) {
	p := ws.Players[playerID]
	if p == nil || p.Eliminated || p.Won {
		return LetterResult{}, ErrNotPlaying
	}

	letter = strings.ToLower(strings.TrimSpace(letter))
	runes := []rune(letter)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return LetterResult{}, ErrInvalidLetter
	}
	if revealed(ws)[runes[0]] {
		return LetterResult{}, ErrAlreadyGuessed
	}
	for _, w := range p.Wrong {
		if w == letter {
			return LetterResult{}, ErrAlreadyGuessed
		}
	}

	res := LetterResult{Correct: strings.ContainsRune(ws.Word, runes[0])}
	if res.Correct {
		p.Correct = append(p.Correct, letter)
		res.MaskComplete = MaskComplete(ws)
	} else {
		p.Wrong = append(p.Wrong, letter)
		p.AttemptsLeft--
		if p.AttemptsLeft <= 0 {
			p.Eliminated = true
			res.Eliminated = true
		}
	}
	return res, nil
}

// ApplyWord validates and applies a full-word guess. An exact match wins
// outright; a miss costs an attempt like a wrong letter.
func ApplyWord(ws *model.WordGameState, playerID, word string, now time.Time) (won bool, eliminated bool, err error) {
	p := ws.Players[playerID]
	if p == nil || p.Eliminated || p.Won {
		return false, false, ErrNotPlaying
	}

	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false, false, ErrInvalidWord
	}

	if word == ws.Word {
		p.Won = true
		p.WonAt = &now
		return true, false, nil
	}

	p.Wrong = append(p.Wrong, word)
	p.AttemptsLeft--
	if p.AttemptsLeft <= 0 {
		p.Eliminated = true
		return false, true, nil
	}
	return false, false, nil
}

// MarkCollectiveWin flags every non-eliminated participant as a winner,
// used when the shared mask runs out of blanks.
func MarkCollectiveWin(ws *model.WordGameState, now time.Time) {
	for _, p := range ws.Players {
		if !p.Eliminated && !p.Won {
			p.Won = true
			t := now
			p.WonAt = &t
		}
	}
}

// WordScore is the player's count of correct letter guesses.
func WordScore(ws *model.WordGameState, playerID string) int {
	if p := ws.Players[playerID]; p != nil {
		return len(p.Correct)
	}
	return 0
}
