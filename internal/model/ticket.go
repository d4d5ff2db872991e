package model

// Ticket is a 3x9 number-matching grid: 15 filled cells, 5 per row, 1-3
// per column. Nil cells are blanks.
type Ticket struct {
	Rows [3][9]*int `json:"rows"`
}

// Numbers returns every number on the ticket, row by row.
func (t *Ticket) Numbers() []int {
	nums := make([]int, 0, 15)
	for r := 0; r < 3; r++ {
		for c := 0; c < 9; c++ {
			if t.Rows[r][c] != nil {
				nums = append(nums, *t.Rows[r][c])
			}
		}
	}
	return nums
}

// Has reports whether n appears on the ticket.
func (t *Ticket) Has(n int) bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 9; c++ {
			if t.Rows[r][c] != nil && *t.Rows[r][c] == n {
				return true
			}
		}
	}
	return false
}
