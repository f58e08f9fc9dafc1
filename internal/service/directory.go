package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/repository"
	"github.com/iliyamo/telehealth-core/internal/utils"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// AccountStore is the persistence Directory and Workflow need; it is
// satisfied by *repository.AccountRepo.
type AccountStore interface {
	Create(ctx context.Context, a model.Account) error
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	SetLoggedIn(ctx context.Context, username string, loggedIn bool) error
	ListLoggedIn(ctx context.Context, role model.Role) ([]string, error)
	ListLoggedInTx(ctx context.Context, tx *sql.Tx, role model.Role) ([]string, error)
}

// Directory owns accounts and presence.  Presence is the is_logged_in
// column; there is no in-memory list of online users.
type Directory struct {
	accounts   AccountStore
	bcryptCost int
	timeout    time.Duration
	clock      *clock
	log        *slog.Logger
}

func NewDirectory(accounts AccountStore, bcryptCost int, timeout time.Duration, log *slog.Logger) *Directory {
	return &Directory{accounts: accounts, bcryptCost: bcryptCost, timeout: timeout, clock: newClock(nil), log: log}
}

// Register creates an account with a bcrypt hash of password.  The
// SystemSender name is reserved.
func (d *Directory) Register(ctx context.Context, username, password string, role model.Role) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" || len(password) > maxPasswordBytes || !role.Valid() {
		return ErrInvalidInput
	}
	if model.IsSystemName(username) {
		return ErrInvalidInput
	}
	hash, err := utils.HashPassword(password, d.bcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := bounded(ctx, d.timeout)
	defer cancel()
	err = d.accounts.Create(ctx, model.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    d.clock.Now(),
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateUsername
	case err != nil:
		return storeError(err)
	}
	d.log.Info("account registered", slog.String("username", username), slog.String("role", string(role)))
	return nil
}

// Authenticate verifies the password and marks the account present.  A
// wrong password leaves presence untouched.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	ctx, cancel := bounded(ctx, d.timeout)
	defer cancel()

	acc, err := d.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Account{}, ErrNotFound
	case err != nil:
		return model.Account{}, storeError(err)
	}
	ok, err := utils.VerifyPassword(acc.PasswordHash, password)
	if err != nil {
		d.log.Error("stored password hash unreadable", slog.String("username", acc.Username), slog.Any("err", err))
		return model.Account{}, ErrInvalidCredentials
	}
	if !ok {
		return model.Account{}, ErrInvalidCredentials
	}
	if err := d.accounts.SetLoggedIn(ctx, acc.Username, true); err != nil {
		return model.Account{}, storeError(err)
	}
	acc.IsLoggedIn = true
	return acc, nil
}

// Logout clears presence.  Logging out twice, or logging out an unknown
// user, is not an error.
func (d *Directory) Logout(ctx context.Context, username string) error {
	ctx, cancel := bounded(ctx, d.timeout)
	defer cancel()
	return storeError(d.accounts.SetLoggedIn(ctx, username, false))
}

// ListPresent returns the logged-in usernames holding role, sorted.
func (d *Directory) ListPresent(ctx context.Context, role model.Role) ([]string, error) {
	if !role.Valid() {
		return nil, ErrInvalidInput
	}
	ctx, cancel := bounded(ctx, d.timeout)
	defer cancel()
	names, err := d.accounts.ListLoggedIn(ctx, role)
	if err != nil {
		return nil, storeError(err)
	}
	return names, nil
}

// Lookup returns the account for username.
func (d *Directory) Lookup(ctx context.Context, username string) (model.Account, error) {
	ctx, cancel := bounded(ctx, d.timeout)
	defer cancel()
	acc, err := d.accounts.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Account{}, ErrNotFound
	case err != nil:
		return model.Account{}, storeError(err)
	}
	return acc, nil
}
