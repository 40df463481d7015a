package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/storage/database"
)

var accountUniques = map[string]error{
	"accounts_username_key": account.ErrUsernameExists,
	"accounts_email_key":    account.ErrEmailExists,
}

type accountRow struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	LastLogin    null.Time `db:"last_login"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r accountRow) toModel() account.Account {
	return account.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		Role:         core.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		LastLogin:    r.LastLogin,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type accountRepository struct {
	store
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *database.DB) account.Repository {
	return &accountRepository{store{db: db}}
}

func (repo *accountRepository) CheckUniqueness(ctx context.Context, username, email string) error {
	var taken []accountRow
	q := psql.Select("*").From("accounts").
		Where(sq.Or{sq.Eq{"username": username}, sq.Eq{"email": email}}).
		OrderBy("id")
	if err := repo.selectAll(ctx, &taken, q); err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "checking account uniqueness")
	}
	for _, r := range taken {
		if r.Username == username {
			return account.ErrUsernameExists
		}
	}
	if len(taken) > 0 {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	var r accountRow
	q := psql.Insert("accounts").
		Columns("username", "email", "role", "is_active", "password_hash", "last_login", "created_at", "updated_at").
		Values(acc.Username, acc.Email, string(acc.Role), acc.IsActive, acc.PasswordHash, acc.LastLogin, acc.CreatedAt, acc.UpdatedAt).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return account.Account{}, errors.Wrap(database.TranslateError(err, accountUniques), "inserting account")
	}
	return r.toModel(), nil
}

func (repo *accountRepository) getBy(ctx context.Context, where sq.Eq) (account.Account, error) {
	var r accountRow
	if err := repo.get(ctx, &r, psql.Select("*").From("accounts").Where(where)); err != nil {
		return account.Account{}, database.TrapNoRows(err, account.ErrNotFound, "getting account")
	}
	return r.toModel(), nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *accountRepository) GetAccountByUsername(ctx context.Context, username string) (account.Account, error) {
	return repo.getBy(ctx, sq.Eq{"username": username})
}

// UpdateAccount never changes the username, email or role.
func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	var r accountRow
	q := psql.Update("accounts").
		SetMap(map[string]interface{}{
			"is_active":     acc.IsActive,
			"password_hash": acc.PasswordHash,
			"last_login":    acc.LastLogin,
			"updated_at":    acc.UpdatedAt,
		}).
		Where(sq.Eq{"id": acc.ID}).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return account.Account{}, database.TrapNoRows(err, account.ErrNotFound, "updating account")
	}
	return r.toModel(), nil
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id int) error {
	if _, err := repo.exec(ctx, psql.Delete("accounts").Where(sq.Eq{"id": id})); err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "deleting account")
	}
	return nil
}
