package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"fourline/store"
)

var (
	ErrGameExists       = errors.New("game already exists")
	ErrGameNotFound     = errors.New("game not found")
	ErrAlreadyInGame    = errors.New("already on a team")
	ErrTeamNotFound     = errors.New("team not found")
	ErrAlreadyOnTeam    = errors.New("already on that team")
	ErrNotOnTeam        = errors.New("not on a team")
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrColumnFull       = errors.New("column is full")
	ErrGameWon          = errors.New("game already won")
	ErrNoCurrentTeam    = errors.New("game has not started")
	ErrNotYourTurn      = errors.New("not your team's turn")
	ErrTableNotFull     = errors.New("table is not full")
	ErrNoWinner         = errors.New("game has no winner")

	// ErrNoOpposingTeam means the two-teams invariant was broken. It is a
	// defect, not a user error, and is surfaced rather than swallowed.
	ErrNoOpposingTeam = errors.New("no opposing team for this game")
)

// teamLabels is the pool team display labels are drawn from, without
// replacement, when a game is created.
var teamLabels = []string{"😀", "😃", "😎", "🤖", "👻", "🐸", "🐙", "🦊"}

// Engine is the team/game state machine: game creation, team assignment,
// turn advancement, win recording and restarts. Every operation runs as one
// atomic transaction and re-reads the state it validates against.
type Engine struct {
	store store.Store
	rng   Rand
	rows  int
	cols  int
}

func NewEngine(s store.Store, rng Rand, rows, cols int) *Engine {
	if rows < WinningStreak {
		rows = WinningStreak
	}
	if cols < WinningStreak {
		cols = WinningStreak
	}
	return &Engine{store: s, rng: rng, rows: rows, cols: cols}
}

// CreateGame creates the room's game with an empty grid and two teams with
// distinct labels, puts the caller on the first team and randomizes the
// starting turn.
func (e *Engine) CreateGame(userID int64) (*Event, error) {
	var event *Event
	err := e.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrNotInRoom
		}

		teamMembership, err := tx.GetTeamMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if teamMembership != nil {
			return ErrAlreadyInGame
		}

		existing, err := tx.GetGameByRoom(membership.RoomID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrGameExists
		}

		grid, err := encodeGrid(NewGrid(e.rows, e.cols))
		if err != nil {
			return err
		}
		if err := tx.CreateGame(&store.Game{
			RoomID: membership.RoomID,
			Grid:   grid,
			Rows:   e.rows,
			Cols:   e.cols,
		}); err != nil {
			return err
		}

		first, second := e.drawLabels()
		firstTeam, err := tx.CreateTeam(membership.RoomID, first)
		if err != nil {
			return err
		}
		secondTeam, err := tx.CreateTeam(membership.RoomID, second)
		if err != nil {
			return err
		}

		if err := tx.CreateTeamMembership(player.ID, firstTeam, membership.RoomID); err != nil {
			return err
		}

		starting := firstTeam
		if e.rng.IntN(2) == 1 {
			starting = secondTeam
		}
		if err := tx.SetCurrentTeam(membership.RoomID, starting); err != nil {
			return err
		}

		state, err := gameState(tx, membership.RoomID)
		if err != nil {
			return err
		}
		event = &Event{Type: "game_created", RoomID: membership.RoomID, Payload: state}
		return nil
	})
	return event, err
}

// JoinTeam puts the caller on the given team. A caller already on the other
// team of the same game is moved; joining the team they are already on fails.
func (e *Engine) JoinTeam(userID, teamID int64) (*Event, error) {
	var event *Event
	err := e.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrNotInRoom
		}

		team, err := tx.GetTeam(teamID)
		if err != nil {
			return err
		}
		if team == nil || team.GameID != membership.RoomID {
			return ErrTeamNotFound
		}

		teamMembership, err := tx.GetTeamMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		switch {
		case teamMembership == nil:
			err = tx.CreateTeamMembership(player.ID, teamID, membership.RoomID)
		case teamMembership.TeamID == teamID:
			err = ErrAlreadyOnTeam
		default:
			err = tx.UpdateTeamMembership(player.ID, teamID)
		}
		if err != nil {
			return err
		}

		event = &Event{
			Type:    "team_joined",
			RoomID:  membership.RoomID,
			Payload: TeamJoinedPayload{PlayerID: player.ID, TeamID: teamID},
		}
		return nil
	})
	return event, err
}

// DropPiece drops a piece for the caller's team into column. The piece lands
// in the lowest empty row; a win makes the game terminal, otherwise the turn
// flips to the opposing team.
func (e *Engine) DropPiece(userID int64, column int) (*Event, error) {
	var event *Event
	err := e.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		teamMembership, err := tx.GetTeamMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if teamMembership == nil {
			return ErrNotOnTeam
		}

		record, err := tx.GetGameByRoom(teamMembership.RoomID)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrGameNotFound
		}

		grid, err := decodeGrid(record.Grid)
		if err != nil {
			return err
		}
		if column < 0 || column >= grid.Cols() {
			return ErrColumnOutOfRange
		}
		if record.WinnerTeam != nil {
			return ErrGameWon
		}

		current, err := tx.GetCurrentTeam(record.RoomID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNoCurrentTeam
		}
		if *current != teamMembership.TeamID {
			return ErrNotYourTurn
		}

		row := grid.DropRow(column)
		if row < 0 {
			return ErrColumnFull
		}

		grid[row][column] = teamMembership.TeamID
		lastRow, lastCol := int64(row), int64(column)
		record.LastRow = &lastRow
		record.LastCol = &lastCol

		eventType := "piece_dropped"
		if cells := DetectWin(grid, teamMembership.TeamID); cells != nil {
			winner := teamMembership.TeamID
			record.WinnerTeam = &winner
			record.WinnerCells, err = json.Marshal(cells)
			if err != nil {
				return fmt.Errorf("failed to encode winner cells: %w", err)
			}
			eventType = "game_won"
		} else {
			teams, err := tx.ListTeamsByGame(record.RoomID)
			if err != nil {
				return err
			}
			var other *store.Team
			for _, team := range teams {
				if team.ID != teamMembership.TeamID {
					other = team
					break
				}
			}
			if other == nil {
				return ErrNoOpposingTeam
			}
			if err := tx.SetCurrentTeam(record.RoomID, other.ID); err != nil {
				return err
			}
		}

		record.Grid, err = encodeGrid(grid)
		if err != nil {
			return err
		}
		if err := tx.UpdateGame(record); err != nil {
			return err
		}

		state, err := gameState(tx, record.RoomID)
		if err != nil {
			return err
		}
		event = &Event{Type: eventType, RoomID: record.RoomID, Payload: state}
		return nil
	})
	return event, err
}

// RestartTableFull restarts a game whose grid filled up without a winner.
func (e *Engine) RestartTableFull(userID int64) (*Event, error) {
	return e.restart(userID, func(record *store.Game, grid Grid) error {
		if record.WinnerTeam != nil || !grid.Full() {
			return ErrTableNotFull
		}
		return nil
	})
}

// RestartHasWinner restarts a decided game.
func (e *Engine) RestartHasWinner(userID int64) (*Event, error) {
	return e.restart(userID, func(record *store.Game, grid Grid) error {
		if record.WinnerTeam == nil {
			return ErrNoWinner
		}
		return nil
	})
}

func (e *Engine) restart(userID int64, precondition func(*store.Game, Grid) error) (*Event, error) {
	var event *Event
	err := e.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}

		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrGameNotFound
		}

		record, err := tx.GetGameByRoom(membership.RoomID)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrGameNotFound
		}

		grid, err := decodeGrid(record.Grid)
		if err != nil {
			return err
		}
		if err := precondition(record, grid); err != nil {
			return err
		}

		record.Grid, err = encodeGrid(NewGrid(record.Rows, record.Cols))
		if err != nil {
			return err
		}
		record.WinnerTeam = nil
		record.WinnerCells = nil
		record.LastRow = nil
		record.LastCol = nil
		if err := tx.UpdateGame(record); err != nil {
			return err
		}

		teams, err := tx.ListTeamsByGame(record.RoomID)
		if err != nil {
			return err
		}
		if len(teams) != 2 {
			return ErrNoOpposingTeam
		}
		if err := tx.SetCurrentTeam(record.RoomID, teams[e.rng.IntN(2)].ID); err != nil {
			return err
		}

		state, err := gameState(tx, record.RoomID)
		if err != nil {
			return err
		}
		event = &Event{Type: "game_restarted", RoomID: record.RoomID, Payload: state}
		return nil
	})
	return event, err
}

// State returns the game snapshot for the caller's room.
func (e *Engine) State(userID int64) (*GameState, error) {
	var state *GameState
	err := e.store.Atomic(func(tx *store.Tx) error {
		player, err := requirePlayer(tx, userID)
		if err != nil {
			return err
		}
		membership, err := tx.GetMembershipByPlayer(player.ID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrNotInRoom
		}
		record, err := tx.GetGameByRoom(membership.RoomID)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrGameNotFound
		}
		state, err = gameState(tx, membership.RoomID)
		return err
	})
	return state, err
}

// leaveTeam removes the player's team membership and, when both teams end up
// empty, deletes the game with its teams and turn pointer. The turn pointer
// is otherwise left untouched: a turn held by a team that just lost a member
// stays with that team.
func leaveTeam(tx *store.Tx, playerID int64) error {
	teamMembership, err := tx.GetTeamMembershipByPlayer(playerID)
	if err != nil || teamMembership == nil {
		return err
	}

	if err := tx.DeleteTeamMembership(playerID); err != nil {
		return err
	}

	remaining, err := tx.CountTeamMembersByRoom(teamMembership.RoomID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	record, err := tx.GetGameByRoom(teamMembership.RoomID)
	if err != nil || record == nil {
		return err
	}
	if err := tx.DeleteCurrentTeam(record.RoomID); err != nil {
		return err
	}
	if err := tx.DeleteTeamsByGame(record.RoomID); err != nil {
		return err
	}
	return tx.DeleteGame(record.RoomID)
}

// drawLabels draws two distinct labels from the pool without replacement.
func (e *Engine) drawLabels() (string, string) {
	pool := make([]string, len(teamLabels))
	copy(pool, teamLabels)

	i := e.rng.IntN(len(pool))
	first := pool[i]
	pool = append(pool[:i], pool[i+1:]...)
	second := pool[e.rng.IntN(len(pool))]
	return first, second
}

func gameState(tx *store.Tx, roomID int64) (*GameState, error) {
	record, err := tx.GetGameByRoom(roomID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrGameNotFound
	}

	grid, err := decodeGrid(record.Grid)
	if err != nil {
		return nil, err
	}

	state := &GameState{RoomID: roomID, Grid: grid}

	teams, err := tx.ListTeamsByGame(roomID)
	if err != nil {
		return nil, err
	}
	memberships, err := tx.ListTeamMembershipsByRoom(roomID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		ts := TeamState{ID: team.ID, Label: team.Label}
		for _, m := range memberships {
			if m.TeamID == team.ID {
				ts.Members = append(ts.Members, m.PlayerID)
			}
		}
		state.Teams = append(state.Teams, ts)
	}

	current, err := tx.GetCurrentTeam(roomID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		state.CurrentTeamID = *current
	}

	if record.WinnerTeam != nil {
		var cells []Coord
		if err := json.Unmarshal(record.WinnerCells, &cells); err != nil {
			return nil, fmt.Errorf("failed to decode winner cells: %w", err)
		}
		state.Winner = &Winner{TeamID: *record.WinnerTeam, Cells: cells}
	}
	if record.LastRow != nil && record.LastCol != nil {
		state.LastMove = &Coord{Row: int(*record.LastRow), Col: int(*record.LastCol)}
	}
	return state, nil
}

func encodeGrid(g Grid) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}
	return data, nil
}

func decodeGrid(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode grid: %w", err)
	}
	return g, nil
}
