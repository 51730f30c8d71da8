package store

import (
	"database/sql"
	"fmt"
)

// Tx exposes the entity operations available inside one atomic operation.
// Lookups follow the (nil, nil) convention for missing rows.
type Tx struct {
	tx *sql.Tx
}

// Players

func (t *Tx) GetPlayerByUserID(userID int64) (*Player, error) {
	return t.scanPlayer(t.tx.QueryRow(
		"SELECT id, user_id, name, online FROM players WHERE user_id = ?", userID,
	))
}

func (t *Tx) GetPlayerByID(playerID int64) (*Player, error) {
	return t.scanPlayer(t.tx.QueryRow(
		"SELECT id, user_id, name, online FROM players WHERE id = ?", playerID,
	))
}

func (t *Tx) scanPlayer(row *sql.Row) (*Player, error) {
	player := &Player{}
	var name sql.NullString
	var online int
	err := row.Scan(&player.ID, &player.UserID, &name, &online)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	player.Name = name.String
	player.Named = name.Valid && name.String != ""
	player.Online = online == 1
	return player, nil
}

func (t *Tx) CreatePlayer(userID int64, online bool) (int64, error) {
	result, err := t.tx.Exec(
		"INSERT INTO players (user_id, online) VALUES (?, ?)",
		userID, boolToInt(online),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create player: %w", err)
	}
	return result.LastInsertId()
}

// SetPlayerOnline reports whether a player row was actually updated, so the
// disconnect path can warn about unknown players instead of failing.
func (t *Tx) SetPlayerOnline(userID int64, online bool) (bool, error) {
	result, err := t.tx.Exec(
		"UPDATE players SET online = ? WHERE user_id = ?",
		boolToInt(online), userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set player online: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to set player online: %w", err)
	}
	return n > 0, nil
}

func (t *Tx) SetPlayerName(playerID int64, name string) error {
	if _, err := t.tx.Exec(
		"UPDATE players SET name = ? WHERE id = ?", name, playerID,
	); err != nil {
		return fmt.Errorf("failed to set player name: %w", err)
	}
	return nil
}

// Rooms

func (t *Tx) CreateRoom(title string, ownerID int64) (int64, error) {
	result, err := t.tx.Exec(
		"INSERT INTO rooms (title, owner_id) VALUES (?, ?)", title, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create room: %w", err)
	}
	return result.LastInsertId()
}

func (t *Tx) GetRoom(roomID int64) (*Room, error) {
	room := &Room{}
	err := t.tx.QueryRow(
		"SELECT id, title, owner_id, created_at FROM rooms WHERE id = ?", roomID,
	).Scan(&room.ID, &room.Title, &room.OwnerID, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (t *Tx) UpdateRoomOwner(roomID, ownerID int64) error {
	if _, err := t.tx.Exec(
		"UPDATE rooms SET owner_id = ? WHERE id = ?", ownerID, roomID,
	); err != nil {
		return fmt.Errorf("failed to update room owner: %w", err)
	}
	return nil
}

func (t *Tx) DeleteRoom(roomID int64) error {
	if _, err := t.tx.Exec("DELETE FROM rooms WHERE id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (t *Tx) ListRoomIDs() ([]int64, error) {
	rows, err := t.tx.Query("SELECT id FROM rooms ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list room ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *Tx) ListRooms() ([]*RoomListing, error) {
	rows, err := t.tx.Query(`
		SELECT r.id, r.title, r.owner_id, COUNT(rm.player_id)
		FROM rooms r
		LEFT JOIN room_members rm ON rm.room_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var listings []*RoomListing
	for rows.Next() {
		l := &RoomListing{}
		if err := rows.Scan(&l.ID, &l.Title, &l.OwnerID, &l.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan room listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Room memberships

func (t *Tx) GetMembershipByPlayer(playerID int64) (*RoomMembership, error) {
	m := &RoomMembership{}
	err := t.tx.QueryRow(
		"SELECT room_id, player_id, joined_at FROM room_members WHERE player_id = ?",
		playerID,
	).Scan(&m.RoomID, &m.PlayerID, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (t *Tx) CreateMembership(roomID, playerID int64) error {
	if _, err := t.tx.Exec(
		"INSERT INTO room_members (room_id, player_id) VALUES (?, ?)",
		roomID, playerID,
	); err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (t *Tx) DeleteMembership(playerID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM room_members WHERE player_id = ?", playerID,
	); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

// ListRoomMembers orders by join time then player id, so the next-owner pick
// on leave is deterministic for a given membership set.
func (t *Tx) ListRoomMembers(roomID int64) ([]*RoomMembership, error) {
	rows, err := t.tx.Query(
		"SELECT room_id, player_id, joined_at FROM room_members WHERE room_id = ? ORDER BY joined_at, player_id",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	defer rows.Close()

	var members []*RoomMembership
	for rows.Next() {
		m := &RoomMembership{}
		if err := rows.Scan(&m.RoomID, &m.PlayerID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (t *Tx) DeleteRoomMemberships(roomID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM room_members WHERE room_id = ?", roomID,
	); err != nil {
		return fmt.Errorf("failed to delete room memberships: %w", err)
	}
	return nil
}

func (t *Tx) CountOnlineMembers(roomID int64) (int, error) {
	var n int
	err := t.tx.QueryRow(`
		SELECT COUNT(*)
		FROM room_members rm
		JOIN players p ON p.id = rm.player_id
		WHERE rm.room_id = ? AND p.online = 1
	`, roomID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count online members: %w", err)
	}
	return n, nil
}

// Games

func (t *Tx) CreateGame(game *Game) error {
	if _, err := t.tx.Exec(
		"INSERT INTO games (room_id, grid, rows, cols) VALUES (?, ?, ?, ?)",
		game.RoomID, game.Grid, game.Rows, game.Cols,
	); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (t *Tx) GetGameByRoom(roomID int64) (*Game, error) {
	game := &Game{}
	err := t.tx.QueryRow(
		"SELECT room_id, grid, winner_team, winner_cells, last_row, last_col, rows, cols FROM games WHERE room_id = ?",
		roomID,
	).Scan(&game.RoomID, &game.Grid, &game.WinnerTeam, &game.WinnerCells,
		&game.LastRow, &game.LastCol, &game.Rows, &game.Cols)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (t *Tx) UpdateGame(game *Game) error {
	if _, err := t.tx.Exec(
		"UPDATE games SET grid = ?, winner_team = ?, winner_cells = ?, last_row = ?, last_col = ? WHERE room_id = ?",
		game.Grid, game.WinnerTeam, game.WinnerCells, game.LastRow, game.LastCol, game.RoomID,
	); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}

func (t *Tx) DeleteGame(roomID int64) error {
	if _, err := t.tx.Exec("DELETE FROM games WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// Teams

func (t *Tx) CreateTeam(gameID int64, label string) (int64, error) {
	result, err := t.tx.Exec(
		"INSERT INTO teams (game_id, label) VALUES (?, ?)", gameID, label,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create team: %w", err)
	}
	return result.LastInsertId()
}

func (t *Tx) GetTeam(teamID int64) (*Team, error) {
	team := &Team{}
	err := t.tx.QueryRow(
		"SELECT id, game_id, label FROM teams WHERE id = ?", teamID,
	).Scan(&team.ID, &team.GameID, &team.Label)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

func (t *Tx) ListTeamsByGame(gameID int64) ([]*Team, error) {
	rows, err := t.tx.Query(
		"SELECT id, game_id, label FROM teams WHERE game_id = ? ORDER BY id", gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(&team.ID, &team.GameID, &team.Label); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (t *Tx) DeleteTeamsByGame(gameID int64) error {
	if _, err := t.tx.Exec("DELETE FROM teams WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("failed to delete teams: %w", err)
	}
	return nil
}

// Team memberships

func (t *Tx) GetTeamMembershipByPlayer(playerID int64) (*TeamMembership, error) {
	m := &TeamMembership{}
	err := t.tx.QueryRow(
		"SELECT player_id, team_id, room_id FROM team_members WHERE player_id = ?",
		playerID,
	).Scan(&m.PlayerID, &m.TeamID, &m.RoomID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team membership: %w", err)
	}
	return m, nil
}

func (t *Tx) CreateTeamMembership(playerID, teamID, roomID int64) error {
	if _, err := t.tx.Exec(
		"INSERT INTO team_members (player_id, team_id, room_id) VALUES (?, ?, ?)",
		playerID, teamID, roomID,
	); err != nil {
		return fmt.Errorf("failed to create team membership: %w", err)
	}
	return nil
}

func (t *Tx) UpdateTeamMembership(playerID, teamID int64) error {
	if _, err := t.tx.Exec(
		"UPDATE team_members SET team_id = ? WHERE player_id = ?", teamID, playerID,
	); err != nil {
		return fmt.Errorf("failed to update team membership: %w", err)
	}
	return nil
}

func (t *Tx) DeleteTeamMembership(playerID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM team_members WHERE player_id = ?", playerID,
	); err != nil {
		return fmt.Errorf("failed to delete team membership: %w", err)
	}
	return nil
}

func (t *Tx) ListTeamMembershipsByRoom(roomID int64) ([]*TeamMembership, error) {
	rows, err := t.tx.Query(
		"SELECT player_id, team_id, room_id FROM team_members WHERE room_id = ? ORDER BY player_id",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list team memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*TeamMembership
	for rows.Next() {
		m := &TeamMembership{}
		if err := rows.Scan(&m.PlayerID, &m.TeamID, &m.RoomID); err != nil {
			return nil, fmt.Errorf("failed to scan team membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (t *Tx) CountTeamMembersByRoom(roomID int64) (int, error) {
	var n int
	err := t.tx.QueryRow(
		"SELECT COUNT(*) FROM team_members WHERE room_id = ?", roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return n, nil
}

func (t *Tx) DeleteTeamMembershipsByRoom(roomID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM team_members WHERE room_id = ?", roomID,
	); err != nil {
		return fmt.Errorf("failed to delete team memberships: %w", err)
	}
	return nil
}

// Current team pointer

func (t *Tx) SetCurrentTeam(gameID, teamID int64) error {
	if _, err := t.tx.Exec(
		"INSERT INTO current_team (game_id, team_id) VALUES (?, ?) ON CONFLICT(game_id) DO UPDATE SET team_id = excluded.team_id",
		gameID, teamID,
	); err != nil {
		return fmt.Errorf("failed to set current team: %w", err)
	}
	return nil
}

// GetCurrentTeam returns nil when no turn owner is set yet.
func (t *Tx) GetCurrentTeam(gameID int64) (*int64, error) {
	var teamID int64
	err := t.tx.QueryRow(
		"SELECT team_id FROM current_team WHERE game_id = ?", gameID,
	).Scan(&teamID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current team: %w", err)
	}
	return &teamID, nil
}

func (t *Tx) DeleteCurrentTeam(gameID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM current_team WHERE game_id = ?", gameID,
	); err != nil {
		return fmt.Errorf("failed to delete current team: %w", err)
	}
	return nil
}

// Messages

func (t *Tx) AppendMessage(roomID, senderID int64, text string) error {
	if _, err := t.tx.Exec(
		"INSERT INTO messages (room_id, sender_id, text) VALUES (?, ?, ?)",
		roomID, senderID, text,
	); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (t *Tx) ListMessages(roomID int64, limit int) ([]*Message, error) {
	rows, err := t.tx.Query(
		"SELECT id, room_id, sender_id, sent_at, text FROM messages WHERE room_id = ? ORDER BY sent_at, id LIMIT ?",
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SentAt, &m.Text); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (t *Tx) DeleteMessagesByRoom(roomID int64) error {
	if _, err := t.tx.Exec(
		"DELETE FROM messages WHERE room_id = ?", roomID,
	); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
