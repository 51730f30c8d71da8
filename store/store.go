package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store interface {
	Atomic(fn func(tx *Tx) error) error
	CreateUser(username, passwordHash string) (int64, error)
	GetUserByUsername(username string) (*User, error)
	GetUserByID(userID int64) (*User, error)
	Close() error
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    string
}

type Player struct {
	ID     int64
	UserID int64
	Name   string
	Named  bool
	Online bool
}

type Room struct {
	ID        int64
	Title     string
	OwnerID   int64
	CreatedAt string
}

type RoomListing struct {
	ID          int64
	Title       string
	OwnerID     int64
	MemberCount int
}

type RoomMembership struct {
	RoomID   int64
	PlayerID int64
	JoinedAt string
}

// Game holds the raw grid and winner cells as JSON; the game package owns
// their shape.
type Game struct {
	RoomID      int64
	Grid        []byte
	WinnerTeam  *int64
	WinnerCells []byte
	LastRow     *int64
	LastCol     *int64
	Rows        int
	Cols        int
}

type Team struct {
	ID     int64
	GameID int64
	Label  string
}

type TeamMembership struct {
	PlayerID int64
	TeamID   int64
	RoomID   int64
}

type Message struct {
	ID       int64
	RoomID   int64
	SenderID int64
	SentAt   string
	Text     string
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One connection: every operation runs as a single serialized
	// transaction, which is the room-state consistency model.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Atomic runs fn inside a transaction. A nil return commits, any error rolls
// back; partial effects are never visible to other operations.
func (s *SQLiteStore) Atomic(fn func(tx *Tx) error) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: dbTx}); err != nil {
		dbTx.Rollback()
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateUser(username, passwordHash string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetUserByUsername(username string) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByID(userID int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
