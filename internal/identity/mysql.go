package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barber-queue/internal/config"
	"barber-queue/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const mysqlDuplicateEntry = 1062

// Schema creates the tables MySQLProvider reads and writes.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           CHAR(36)     NOT NULL PRIMARY KEY,
		email        VARCHAR(255) NULL UNIQUE,
		password     VARCHAR(255) NULL,
		is_anonymous CHAR(1)      NOT NULL DEFAULT 'n',
		created_at   DATETIME     NOT NULL,
		updated_at   DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id    CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		surname    VARCHAR(255) NOT NULL,
		address    VARCHAR(512) NOT NULL,
		phone      VARCHAR(64)  NOT NULL,
		email      VARCHAR(255) NOT NULL,
		created_at DATETIME     NOT NULL,
		updated_at DATETIME     NOT NULL,
		CONSTRAINT fk_profiles_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
}

type MySQLProvider struct {
	db     *sql.DB
	tokens *config.TokenIssuer
	cost   int
	newID  func() string
}

func NewMySQLProvider(db *sql.DB, tokens *config.TokenIssuer) *MySQLProvider {
	return &MySQLProvider{
		db:     db,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		newID:  uuid.NewString,
	}
}

func (p *MySQLProvider) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	if err := validation.Validate(email, is.EmailFormat); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (p *MySQLProvider) CreateAccount(ctx context.Context, email, password string) (models.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return models.Identity{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	id := p.newID()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, is_anonymous, created_at, updated_at)
		VALUES (?, ?, ?, 'n', NOW(), NOW())
	`, id, email, string(hash))
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return models.Identity{}, ErrEmailInUse
		}
		return models.Identity{}, fmt.Errorf("insert user: %w", err)
	}

	return p.issue(id, email, false)
}

func (p *MySQLProvider) SignIn(ctx context.Context, email, password string) (models.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Identity{}, err
	}

	var id, hash string
	err = p.db.QueryRowContext(ctx,
		"SELECT id, password FROM users WHERE email = ? AND is_anonymous = 'n'",
		email,
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, ErrUserNotFound
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("select user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.Identity{}, ErrWrongPassword
	}

	return p.issue(id, email, false)
}

func (p *MySQLProvider) SignInAnonymous(ctx context.Context) (models.Identity, error) {
	id := p.newID()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, is_anonymous, created_at, updated_at)
		VALUES (?, NULL, NULL, 'y', NOW(), NOW())
	`, id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("insert anonymous user: %w", err)
	}

	return p.issue(id, "", true)
}

func (p *MySQLProvider) WriteProfile(ctx context.Context, id models.Identity, profile models.Profile) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, surname, address, phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), surname = VALUES(surname), address = VALUES(address),
			phone = VALUES(phone), email = VALUES(email), updated_at = NOW()
	`, id.UserID, profile.Name, profile.Surname, profile.Address, profile.Phone, profile.Email)
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func (p *MySQLProvider) ReadProfile(ctx context.Context, id models.Identity) (models.Profile, bool, error) {
	var profile models.Profile
	err := p.db.QueryRowContext(ctx,
		"SELECT name, surname, address, phone, email FROM profiles WHERE user_id = ?",
		id.UserID,
	).Scan(&profile.Name, &profile.Surname, &profile.Address, &profile.Phone, &profile.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("read profile: %w", err)
	}
	return profile, true, nil
}

func (p *MySQLProvider) issue(userID, email string, anonymous bool) (models.Identity, error) {
	token, err := p.tokens.GenerateToken(userID, email, anonymous)
	if err != nil {
		return models.Identity{}, fmt.Errorf("generate token: %w", err)
	}
	return models.Identity{UserID: userID, Token: token, Anonymous: anonymous}, nil
}
