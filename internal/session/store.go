// Package session persists the signed-in identity and UI state across runs:
// access token, user profile, device id, and the last-viewed conversation.
// Backed by a small SQLite key-value table under the state directory.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	keyAccessToken = "access_token"
	keyUserID      = "user_id"
	keyEmail       = "email"
	keyDisplayName = "display_name"
	keyPictureURL  = "picture_url"
	keyLoggedIn    = "logged_in"
	keyDeviceID    = "device_id"
	keyLastConvID  = "last_conversation_id"
)

// Credential is everything the auth exchange hands back that must survive a
// restart.
type Credential struct {
	AccessToken string
	UserID      string
	Email       string
	DisplayName string
	PictureURL  string
}

// Store is the on-disk session. Safe for concurrent use; all access funnels
// through a single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the session database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	path := filepath.Join(dir, "session.db")

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	// SQLite serializes writers anyway; a single connection avoids
	// SQLITE_BUSY churn entirely.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SaveCredential stores the auth result and flips the logged-in flag, all in
// one transaction so a crash cannot leave a half-written session.
func (s *Store) SaveCredential(c Credential) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyAccessToken: c.AccessToken,
		keyUserID:      c.UserID,
		keyEmail:       c.Email,
		keyDisplayName: c.DisplayName,
		keyPictureURL:  c.PictureURL,
		keyLoggedIn:    "true",
	}
	for key, value := range pairs {
		if _, err := tx.Exec(`INSERT INTO session (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Credential returns the stored credential. Zero-valued when signed out.
func (s *Store) Credential() (Credential, error) {
	var c Credential
	var err error
	if c.AccessToken, err = s.get(keyAccessToken); err != nil {
		return Credential{}, err
	}
	if c.UserID, err = s.get(keyUserID); err != nil {
		return Credential{}, err
	}
	if c.Email, err = s.get(keyEmail); err != nil {
		return Credential{}, err
	}
	if c.DisplayName, err = s.get(keyDisplayName); err != nil {
		return Credential{}, err
	}
	if c.PictureURL, err = s.get(keyPictureURL); err != nil {
		return Credential{}, err
	}
	return c, nil
}

// AccessToken implements api.CredentialSource.
func (s *Store) AccessToken() (string, error) {
	return s.get(keyAccessToken)
}

// LoggedIn reports whether a credential is stored.
func (s *Store) LoggedIn() (bool, error) {
	v, err := s.get(keyLoggedIn)
	return v == "true", err
}

// DeviceID returns the stable per-install device id, generating and
// persisting one on first call.
func (s *Store) DeviceID() (string, error) {
	id, err := s.get(keyDeviceID)
	if err != nil || id != "" {
		return id, err
	}
	id = uuid.NewString()
	if err := s.set(keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

// SetActiveConversation records the last-viewed conversation id so the next
// run can reopen it.
func (s *Store) SetActiveConversation(id string) error {
	return s.set(keyLastConvID, id)
}

// ActiveConversation returns the last-viewed conversation id, if any.
func (s *Store) ActiveConversation() (string, error) {
	return s.get(keyLastConvID)
}

// Clear wipes the session atomically. The device id survives a sign-out.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE key != ?`, keyDeviceID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
