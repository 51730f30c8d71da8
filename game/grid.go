package game

// WinningStreak is the run length required to win.
const WinningStreak = 4

// Coord is a grid cell position, row 0 at the top.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a rows x cols board. 0 means empty, any other value is the id of
// the team occupying the cell.
type Grid [][]int64

func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]int64, cols)
	}
	return g
}

func (g Grid) Rows() int {
	return len(g)
}

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// DropRow returns the lowest empty row in col, or -1 if the column is full.
func (g Grid) DropRow(col int) int {
	for row := len(g) - 1; row >= 0; row-- {
		if g[row][col] == 0 {
			return row
		}
	}
	return -1
}

// Full reports whether every cell is occupied.
func (g Grid) Full() bool {
	for _, row := range g {
		for _, cell := range row {
			if cell == 0 {
				return false
			}
		}
	}
	return true
}

// DetectWin scans for a run of WinningStreak cells owned by owner and returns
// its coordinates in run order, or nil if none exists. The scan order is
// fixed: horizontal runs row by row, then vertical, then both diagonals; the
// first qualifying run wins the tie-break when several exist at once.
func DetectWin(g Grid, owner int64) []Coord {
	rows := g.Rows()
	cols := g.Cols()

	// Horizontal
	for row := 0; row < rows; row++ {
		for col := 0; col <= cols-WinningStreak; col++ {
			if g[row][col] == owner &&
				g[row][col+1] == owner &&
				g[row][col+2] == owner &&
				g[row][col+3] == owner {
				return []Coord{
					{row, col},
					{row, col + 1},
					{row, col + 2},
					{row, col + 3},
				}
			}
		}
	}

	// Vertical
	for col := 0; col < cols; col++ {
		for row := 0; row <= rows-WinningStreak; row++ {
			if g[row][col] == owner &&
				g[row+1][col] == owner &&
				g[row+2][col] == owner &&
				g[row+3][col] == owner {
				return []Coord{
					{row, col},
					{row + 1, col},
					{row + 2, col},
					{row + 3, col},
				}
			}
		}
	}

	// Diagonal, top-left to bottom-right
	for row := 0; row <= rows-WinningStreak; row++ {
		for col := 0; col <= cols-WinningStreak; col++ {
			if g[row][col] == owner &&
				g[row+1][col+1] == owner &&
				g[row+2][col+2] == owner &&
				g[row+3][col+3] == owner {
				return []Coord{
					{row, col},
					{row + 1, col + 1},
					{row + 2, col + 2},
					{row + 3, col + 3},
				}
			}
		}
	}

	// Diagonal, bottom-left to top-right
	for row := WinningStreak - 1; row < rows; row++ {
		for col := 0; col <= cols-WinningStreak; col++ {
			if g[row][col] == owner &&
				g[row-1][col+1] == owner &&
				g[row-2][col+2] == owner &&
				g[row-3][col+3] == owner {
				return []Coord{
					{row, col},
					{row - 1, col + 1},
					{row - 2, col + 2},
					{row - 3, col + 3},
				}
			}
		}
	}

	return nil
}
