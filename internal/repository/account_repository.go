package repository

import (
	"context"
	"database/sql"
	"sort"

	"github.com/iliyamo/telehealth-core/internal/model"
)

// AccountRepo persists accounts and their presence flag.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = "username, password_hash, role, is_logged_in, created_at"

// Create inserts a new account.  It returns ErrDuplicate when the username
// is taken; the existing row is left untouched.
func (r *AccountRepo) Create(ctx context.Context, a model.Account) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts ("+accountColumns+") VALUES (?,?,?,?,?)",
		a.Username, a.PasswordHash, string(a.Role), a.IsLoggedIn, a.CreatedAt.UTC())
	return translate(err)
}

// GetByUsername fetches a single account.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	var (
		a    model.Account
		role string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username=? LIMIT 1",
		username).Scan(&a.Username, &a.PasswordHash, &role, &a.IsLoggedIn, &a.CreatedAt)
	if err != nil {
		return model.Account{}, translate(err)
	}
	a.Role = model.Role(role)
	return a, nil
}

// SetLoggedIn flips the presence flag.  Updating an unknown username is not
// an error; it simply affects no rows.
func (r *AccountRepo) SetLoggedIn(ctx context.Context, username string, loggedIn bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET is_logged_in=? WHERE username=?", loggedIn, username)
	return translate(err)
}

// ListLoggedIn returns the usernames of present accounts with the given
// role, sorted alphabetically.
func (r *AccountRepo) ListLoggedIn(ctx context.Context, role model.Role) ([]string, error) {
	return listLoggedIn(ctx, r.db, role)
}

// ListLoggedInTx is ListLoggedIn inside a transaction, so the presence
// snapshot is consistent with the writes that depend on it.
func (r *AccountRepo) ListLoggedInTx(ctx context.Context, tx *sql.Tx, role model.Role) ([]string, error) {
	return listLoggedIn(ctx, tx, role)
}

func listLoggedIn(ctx context.Context, q querier, role model.Role) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT username FROM accounts WHERE role=? AND is_logged_in=?", string(role), true)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		names = append(names, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
