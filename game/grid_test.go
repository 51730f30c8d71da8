package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGridDimensions(t *testing.T) {
	assert := assert.New(t)

	g := NewGrid(6, 7)
	assert.Equal(6, g.Rows())
	assert.Equal(7, g.Cols())
	for _, row := range g {
		for _, cell := range row {
			assert.Equal(int64(0), cell)
		}
	}
}

func TestDetectWinEmptyGrid(t *testing.T) {
	g := NewGrid(6, 7)
	assert.Nil(t, DetectWin(g, 1))
}

func TestDetectWinHorizontal(t *testing.T) {
	g := NewGrid(6, 7)
	for col := 2; col < 6; col++ {
		g[3][col] = 9
	}

	cells := DetectWin(g, 9)
	assert.Equal(t, []Coord{{3, 2}, {3, 3}, {3, 4}, {3, 5}}, cells)
}

func TestDetectWinVertical(t *testing.T) {
	g := NewGrid(6, 7)
	for row := 1; row < 5; row++ {
		g[row][4] = 2
	}

	cells := DetectWin(g, 2)
	assert.Equal(t, []Coord{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, cells)
}

func TestDetectWinDiagonalDown(t *testing.T) {
	g := NewGrid(6, 7)
	for i := 0; i < 4; i++ {
		g[1+i][2+i] = 5
	}

	cells := DetectWin(g, 5)
	assert.Equal(t, []Coord{{1, 2}, {2, 3}, {3, 4}, {4, 5}}, cells)
}

func TestDetectWinDiagonalUp(t *testing.T) {
	g := NewGrid(6, 7)
	for i := 0; i < 4; i++ {
		g[5-i][1+i] = 5
	}

	cells := DetectWin(g, 5)
	assert.Equal(t, []Coord{{5, 1}, {4, 2}, {3, 3}, {2, 4}}, cells)
}

func TestDetectWinIgnoresOtherOwners(t *testing.T) {
	g := NewGrid(6, 7)
	for col := 0; col < 4; col++ {
		g[5][col] = 1
	}

	assert.Nil(t, DetectWin(g, 2))
	assert.NotNil(t, DetectWin(g, 1))
}

func TestDetectWinThreeIsNotEnough(t *testing.T) {
	g := NewGrid(6, 7)
	g[5][0], g[5][1], g[5][2] = 1, 1, 1
	g[2][3], g[3][3], g[4][3] = 1, 1, 1

	assert.Nil(t, DetectWin(g, 1))
}

func TestDetectWinScanOrderTieBreak(t *testing.T) {
	// Both a horizontal run (row 2, cols 0-3) and a vertical run
	// (col 0, rows 2-5) exist; the horizontal one must be reported.
	g := NewGrid(6, 7)
	for col := 0; col < 4; col++ {
		g[2][col] = 7
	}
	for row := 2; row < 6; row++ {
		g[row][0] = 7
	}

	cells := DetectWin(g, 7)
	assert.Equal(t, []Coord{{2, 0}, {2, 1}, {2, 2}, {2, 3}}, cells)
}

func TestDetectWinMinimalGrid(t *testing.T) {
	assert := assert.New(t)

	// Smallest legal board; exercises every scan direction at the bounds.
	g := NewGrid(4, 4)
	for i := 0; i < 4; i++ {
		g[i][i] = 3
	}
	assert.Equal([]Coord{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, DetectWin(g, 3))

	g = NewGrid(4, 4)
	for i := 0; i < 4; i++ {
		g[3-i][i] = 3
	}
	assert.Equal([]Coord{{3, 0}, {2, 1}, {1, 2}, {0, 3}}, DetectWin(g, 3))
}

func TestDropRow(t *testing.T) {
	assert := assert.New(t)

	g := NewGrid(6, 7)
	assert.Equal(5, g.DropRow(0))

	g[5][0] = 1
	assert.Equal(4, g.DropRow(0))

	for row := 0; row < 6; row++ {
		g[row][3] = 2
	}
	assert.Equal(-1, g.DropRow(3))
}

func TestGridFull(t *testing.T) {
	assert := assert.New(t)

	g := NewGrid(4, 4)
	assert.False(g.Full())

	for row := range g {
		for col := range g[row] {
			g[row][col] = 1
		}
	}
	assert.True(g.Full())

	g[0][3] = 0
	assert.False(g.Full())
}
