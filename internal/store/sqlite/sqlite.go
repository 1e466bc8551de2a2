package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/chatsync/internal/store"
)

//go:embed schema.sql
var schema string

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Tests use it with ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ApplySchema creates missing tables and indexes.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

const userColumns = `id, fullname, email, password_hash, profile_pic, created_at`

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, fullName, email, passwordHash string) (*store.User, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO users (id, fullname, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, fullName, email, passwordHash, s.now()); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user: %w", store.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersExcept lists every user but id, ordered by name.
func (s *SQLiteStore) ListUsersExcept(ctx context.Context, id string) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id != ? ORDER BY fullname, id`, id)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateProfilePic sets the user's picture.
func (s *SQLiteStore) UpdateProfilePic(ctx context.Context, id, pic string) (*store.User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET profile_pic = ? WHERE id = ?`, pic, id)
	if err != nil {
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return s.GetUserByID(ctx, id)
}

// ==== GroupStore implementation ====

// CreateGroup creates a group with its members in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, name, adminID string, members []string) (*store.Group, error) {
	id := uuid.NewString()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_groups (id, name, admin_id, created_at) VALUES (?, ?, ?, ?)`,
			id, name, adminID, s.now(),
		); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		return insertMembers(ctx, tx, id, adminID, members)
	})
	if err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, id)
}

// GetGroup retrieves a group with its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*store.Group, error) {
	var g store.Group
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, admin_id, created_at FROM chat_groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.AdminID, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query group: %w", err)
	}

	members, err := s.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return &g, nil
}

// ListGroupsForUser lists groups where userID is admin or member, newest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*store.Group, error) {
	query := `
		SELECT g.id
		FROM chat_groups g
		WHERE g.admin_id = ?
		   OR EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = ?)
		ORDER BY g.created_at DESC, g.rowid DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	groups := make([]*store.Group, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// RenameGroup changes the group name.
func (s *SQLiteStore) RenameGroup(ctx context.Context, id, name string) (*store.Group, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE chat_groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("group %s: %w", id, store.ErrNotFound)
	}
	return s.GetGroup(ctx, id)
}

// AddMembers adds users to the group; existing members and the admin are skipped.
func (s *SQLiteStore) AddMembers(ctx context.Context, id string, userIDs []string) (*store.Group, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		return insertMembers(ctx, tx, id, g.AdminID, userIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, id)
}

// RemoveMembers removes users from the group.
func (s *SQLiteStore) RemoveMembers(ctx context.Context, id string, userIDs []string) (*store.Group, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, uid := range userIDs {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, id, uid,
			); err != nil {
				return fmt.Errorf("delete member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, id)
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// ==== MessageStore implementation ====

const messageColumns = `id, sender_id, COALESCE(receiver_id, ''), COALESCE(group_id, ''), text, image, created_at`

// SaveMessage persists a message. A missing ID or timestamp is filled in.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, group_id, text, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, nullable(msg.ReceiverID), nullable(msg.GroupID), msg.Text, msg.Image, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListDirect returns messages exchanged between a and b.
func (s *SQLiteStore) ListDirect(ctx context.Context, a, b string) ([]*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE group_id IS NULL
		  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		ORDER BY rowid`
	return s.queryMessages(ctx, query, a, b, b, a)
}

// ListGroup returns messages posted to groupID.
func (s *SQLiteStore) ListGroup(ctx context.Context, groupID string) ([]*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE group_id = ? ORDER BY rowid`
	return s.queryMessages(ctx, query, groupID)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.Message{}
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.GroupID, &m.Text, &m.Image, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// ==== helpers ====

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID, adminID string, userIDs []string) error {
	for _, uid := range userIDs {
		uid = strings.TrimSpace(uid)
		if uid == "" || uid == adminID {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`, groupID, uid,
		); err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
