package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"time"

	uuid "github.com/satori/go.uuid"

	"mingle/internal/common"
	"mingle/internal/db"
)

const sessionTTL = 24 * time.Hour

type Service struct {
	db *sql.DB
}

func NewService(d *sql.DB) *Service {
	return &Service{
		db: d,
	}
}

var (
	userCol    = "id, name, email, password, created_at"
	sessionCol = "session_key, user_id, expired_at"
)

func (s *Service) Register(u User) (User, error) {
	if err := validateUser(u); err != nil {
		return User{}, err
	}
	u.generateID()
	u.hashPassword()
	u.CreatedAt = time.Now()

	query := fmt.Sprintf("INSERT INTO users (%s) VALUES ($1, $2, $3, $4, $5)", userCol)
	if _, err := s.db.Exec(query, u.ID, u.Name, u.Email, u.Password, u.CreatedAt); err != nil {
		if db.IsDuplicate(err) {
			return User{}, common.ConflictError(nil, "user with this email already exists")
		}
		common.ErrorLogger.Println(err)
		return User{}, common.DataBaseError(err)
	}
	common.InfoLogger.Printf("New user %s registered", u.Email)
	u.cleanUp()
	return u, nil
}

// NewSession verifies the credentials and issues a fresh bearer token in the
// form "<key>|<userID>". Any previous session for the user is replaced.
func (s *Service) NewSession(email, pwd string) (string, error) {
	u, err := s.findByEmail(email)
	if err != nil {
		return "", err
	}
	if !u.comparePassword(u.Password, pwd) {
		return "", common.UnauthorizedError(nil, "wrong email or password")
	}
	key := generateSessionKey()
	if err := s.createSession(u.ID, key); err != nil {
		return "", err
	}
	return key + "|" + u.ID, nil
}

func (s *Service) findByEmail(email string) (User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email=$1", userCol)
	row := s.db.QueryRow(query, email)

	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return User{}, common.UnauthorizedError(nil, "wrong email or password")
	}
	return u, nil
}

func (s *Service) createSession(userID, key string) error {
	query := fmt.Sprintf("INSERT INTO sessions (%s) VALUES ($1, $2, $3)", sessionCol)
	expires := time.Now().Add(sessionTTL)
	if _, err := s.db.Exec(query, key, userID, expires); err != nil {
		if db.IsDuplicate(err) {
			query := "UPDATE sessions SET session_key=$1, expired_at=$2 WHERE user_id=$3"
			if _, err := s.db.Exec(query, key, expires, userID); err != nil {
				return common.DataBaseError(err)
			}
			return nil
		}
		return common.DataBaseError(err)
	}
	return nil
}

func generateSessionKey() string {
	h := hmac.New(sha256.New, sessionSecret())
	h.Write(uuid.NewV4().Bytes())
	return fmt.Sprintf("%x", h.Sum(nil))
}

func sessionSecret() []byte {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("mingle-session-secret")
}

// CheckSession resolves a bearer token back to its user. It fails for unknown
// keys and for sessions past their expiry.
func (s *Service) CheckSession(key, userID string) (User, error) {
	query := `SELECT u.id, u.name, u.email, s.expired_at
		FROM sessions s INNER JOIN users u ON u.id = s.user_id
		WHERE s.session_key=$1 AND s.user_id=$2`
	row := s.db.QueryRow(query, key, userID)

	var u User
	var expiredAt time.Time
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &expiredAt); err != nil {
		return User{}, common.UnauthorizedError(err, "no current session")
	}
	if time.Now().After(expiredAt) {
		return User{}, common.UnauthorizedError(nil, "session expired")
	}
	return u, nil
}

func (s *Service) LogOut(userID string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE user_id=$1", userID); err != nil {
		return common.DataBaseError(err)
	}
	return nil
}
