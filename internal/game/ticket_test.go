package game

import (
	"math/rand"
	"testing"
)

func TestGenerateTicketValidity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		ticket, err := GenerateTicket(rng)
		if err != nil {
			t.Fatalf("generation failed on ticket %d: %v", i, err)
		}

		seen := map[int]bool{}
		colCounts := [9]int{}

		for r := 0; r < 3; r++ {
			fills := 0
			for c := 0; c < 9; c++ {
				cell := ticket.Rows[r][c]
				if cell == nil {
					continue
				}
				fills++
				colCounts[c]++

				lo, hi := columnRange(c)
				if *cell < lo || *cell > hi {
					t.Fatalf("ticket %d: value %d out of range [%d,%d] for column %d", i, *cell, lo, hi, c)
				}
				if seen[*cell] {
					t.Fatalf("ticket %d: duplicate value %d", i, *cell)
				}
				seen[*cell] = true
			}
			if fills != 5 {
				t.Fatalf("ticket %d: row %d has %d filled cells, want 5", i, r, fills)
			}
		}

		for c, n := range colCounts {
			if n < 1 || n > 3 {
				t.Fatalf("ticket %d: column %d has %d filled cells, want 1-3", i, c, n)
			}
		}
		if len(seen) != 15 {
			t.Fatalf("ticket %d: %d numbers, want 15", i, len(seen))
		}

		// Columns are sorted ascending top to bottom.
		for c := 0; c < 9; c++ {
			last := 0
			for r := 0; r < 3; r++ {
				if cell := ticket.Rows[r][c]; cell != nil {
					if *cell <= last {
						t.Fatalf("ticket %d: column %d not ascending", i, c)
					}
					last = *cell
				}
			}
		}
	}
}

func TestGenerateTicketRunConstraints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		ticket, err := GenerateTicket(rng)
		if err != nil {
			t.Fatalf("generation failed: %v", err)
		}

		singles, doubles := 0, 0
		for r := 0; r < 3; r++ {
			var row [9]bool
			for c := 0; c < 9; c++ {
				row[c] = ticket.Rows[r][c] != nil
			}
			maxRun, pairRuns := rowRuns(row)
			if maxRun >= 3 {
				t.Fatalf("ticket %d row %d: run of %d filled cells", i, r, maxRun)
			}
			switch pairRuns {
			case 0:
				singles++
			case 1:
				doubles++
			default:
				t.Fatalf("ticket %d row %d: %d double runs, want at most 1", i, r, pairRuns)
			}
		}
		if singles != 1 || doubles != 2 {
			t.Fatalf("ticket %d: got %d single rows and %d double rows, want 1 and 2", i, singles, doubles)
		}
	}
}

func rowRuns(row [9]bool) (maxRun, pairRuns int) {
	run := 0
	for c := 0; c <= 9; c++ {
		if c < 9 && row[c] {
			run++
			continue
		}
		if run > maxRun {
			maxRun = run
		}
		if run == 2 {
			pairRuns++
		}
		run = 0
	}
	return maxRun, pairRuns
}

func TestValidDoubleRow(t *testing.T) {
	cases := []struct {
		name string
		cols []int
		want bool
	}{
		{"one pair spread out", []int{0, 1, 3, 5, 7}, true},
		{"triple run", []int{0, 1, 2, 4, 6}, false},
		{"two pairs", []int{0, 1, 3, 4, 6}, false},
		{"no pair", []int{0, 2, 4, 6, 8}, false},
		{"four cells", []int{0, 1, 3, 5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var row [9]bool
			for _, c := range tc.cols {
				row[c] = true
			}
			if got := validDoubleRow(row); got != tc.want {
				t.Fatalf("validDoubleRow(%v) = %v, want %v", tc.cols, got, tc.want)
			}
		})
	}
}

func TestValidSingleRow(t *testing.T) {
	cases := []struct {
		name string
		cols []int
		want bool
	}{
		{"alternating", []int{0, 2, 4, 6, 8}, true},
		{"adjacent pair", []int{0, 1, 4, 6, 8}, false},
		{"four cells", []int{0, 2, 4, 6}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var row [9]bool
			for _, c := range tc.cols {
				row[c] = true
			}
			if got := validSingleRow(row); got != tc.want {
				t.Fatalf("validSingleRow(%v) = %v, want %v", tc.cols, got, tc.want)
			}
		})
	}
}

func TestColumnRange(t *testing.T) {
	lo, hi := columnRange(0)
	if lo != 1 || hi != 9 {
		t.Fatalf("column 0 range = [%d,%d], want [1,9]", lo, hi)
	}
	lo, hi = columnRange(4)
	if lo != 40 || hi != 49 {
		t.Fatalf("column 4 range = [%d,%d], want [40,49]", lo, hi)
	}
	lo, hi = columnRange(8)
	if lo != 80 || hi != 90 {
		t.Fatalf("column 8 range = [%d,%d], want [80,90]", lo, hi)
	}
}
