package game

import (
	"errors"
	"math/rand"
	"sort"

	"minigames/internal/model"
)

const (
	ticketAttempts = 500 // full-ticket attempts
	layoutAttempts = 100 // per-row layout attempts within one ticket attempt
)

// ErrTicketGeneration means no valid ticket layout was found within the
// attempt budget. A partially valid ticket is never returned.
var ErrTicketGeneration = errors.New("game: ticket generation exhausted attempts")

// GenerateTicket produces a valid 3x9 ticket: 15 filled cells, 5 per row,
// 1-3 per column, no run of three filled cells in a row, exactly one
// double run in each of the two double rows and none in the single row.
func GenerateTicket(rng *rand.Rand) (*model.Ticket, error) {
	for i := 0; i < ticketAttempts; i++ {
		layout, ok := buildLayout(rng)
		if !ok {
			continue
		}
		t := assignNumbers(rng, layout)
		if !validTicket(t) {
			continue
		}
		return t, nil
	}
	return nil, ErrTicketGeneration
}

// buildLayout places the filled cells for all three rows. One row is the
// "single" row (no adjacent fills), the other two are "double" rows (one
// adjacent pair each).
func buildLayout(rng *rand.Rand) ([3][9]bool, bool) {
	var layout [3][9]bool
	single := rng.Intn(3)

	for r := 0; r < 3; r++ {
		var row [9]bool
		var ok bool
		if r == single {
			row, ok = buildSingleRow(rng)
		} else {
			row, ok = buildDoubleRow(rng)
		}
		if !ok {
			return layout, false
		}
		layout[r] = row
	}

	for c := 0; c < 9; c++ {
		n := 0
		for r := 0; r < 3; r++ {
			if layout[r][c] {
				n++
			}
		}
		if n < 1 || n > 3 {
			return layout, false
		}
	}
	return layout, true
}

func buildDoubleRow(rng *rand.Rand) ([9]bool, bool) {
	for i := 0; i < layoutAttempts; i++ {
		var row [9]bool
		pair := rng.Intn(8)
		row[pair] = true
		row[pair+1] = true

		rest := make([]int, 0, 7)
		for c := 0; c < 9; c++ {
			if !row[c] {
				rest = append(rest, c)
			}
		}
		rng.Shuffle(len(rest), func(a, b int) { rest[a], rest[b] = rest[b], rest[a] })
		for _, c := range rest[:3] {
			row[c] = true
		}

		if validDoubleRow(row) {
			return row, true
		}
	}
	return [9]bool{}, false
}

func buildSingleRow(rng *rand.Rand) ([9]bool, bool) {
	cols := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	for i := 0; i < layoutAttempts; i++ {
		var row [9]bool
		rng.Shuffle(len(cols), func(a, b int) { cols[a], cols[b] = cols[b], cols[a] })
		for _, c := range cols[:5] {
			row[c] = true
		}
		if validSingleRow(row) {
			return row, true
		}
	}
	return [9]bool{}, false
}

// validDoubleRow: five fills, no run of three, exactly one run of exactly two.
func validDoubleRow(row [9]bool) bool {
	fills, doubles, run := 0, 0, 0
	for c := 0; c <= 9; c++ {
		if c < 9 && row[c] {
			fills++
			run++
			continue
		}
		if run >= 3 {
			return false
		}
		if run == 2 {
			doubles++
		}
		run = 0
	}
	return fills == 5 && doubles == 1
}

// validSingleRow: five fills, no two adjacent.
func validSingleRow(row [9]bool) bool {
	fills := 0
	for c := 0; c < 9; c++ {
		if !row[c] {
			continue
		}
		fills++
		if c > 0 && row[c-1] {
			return false
		}
	}
	return fills == 5
}

// columnRange is the inclusive value range for a column: 1-9, 10-19, ...,
// 80-90.
func columnRange(col int) (int, int) {
	lo := col * 10
	if col == 0 {
		lo = 1
	}
	hi := col*10 + 9
	if col == 8 {
		hi = 90
	}
	return lo, hi
}

// assignNumbers draws unique values per column, sorted ascending
// top-to-bottom into that column's filled rows.
func assignNumbers(rng *rand.Rand, layout [3][9]bool) *model.Ticket {
	t := &model.Ticket{}
	for c := 0; c < 9; c++ {
		need := 0
		for r := 0; r < 3; r++ {
			if layout[r][c] {
				need++
			}
		}
		if need == 0 {
			continue
		}

		lo, hi := columnRange(c)
		span := hi - lo + 1
		vals := make([]int, 0, need)
		for _, off := range rng.Perm(span)[:need] {
			vals = append(vals, lo+off)
		}
		sort.Ints(vals)

		i := 0
		for r := 0; r < 3; r++ {
			if layout[r][c] {
				v := vals[i]
				t.Rows[r][c] = &v
				i++
			}
		}
	}
	return t
}

// validTicket is the final sanity check: five numbers per row and every
// number inside its column's range, no duplicates.
func validTicket(t *model.Ticket) bool {
	seen := make(map[int]bool, 15)
	for r := 0; r < 3; r++ {
		fills := 0
		for c := 0; c < 9; c++ {
			cell := t.Rows[r][c]
			if cell == nil {
				continue
			}
			fills++
			lo, hi := columnRange(c)
			if *cell < lo || *cell > hi || seen[*cell] {
				return false
			}
			seen[*cell] = true
		}
		if fills != 5 {
			return false
		}
	}
	return true
}
