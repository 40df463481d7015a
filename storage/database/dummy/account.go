package dummydb

import (
	"context"

	"github.com/trezcool/academia/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

// checkUniqueness reports a taken username before a taken email, whichever accounts hold them.
func (repo *accountRepository) checkUniqueness(username, email string) error {
	for _, acc := range repo.db.data.accounts {
		if acc.Username == username {
			return account.ErrUsernameExists
		}
	}
	for _, acc := range repo.db.data.accounts {
		if acc.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CheckUniqueness(ctx context.Context, username, email string) error {
	defer repo.db.lock(ctx)()
	return repo.checkUniqueness(username, email)
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	defer repo.db.lock(ctx)()

	if err := repo.checkUniqueness(acc.Username, acc.Email); err != nil {
		return account.Account{}, err
	}
	acc.ID = repo.db.data.nextID("accounts")
	repo.db.data.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	defer repo.db.lock(ctx)()

	if acc, ok := repo.db.data.accounts[id]; ok {
		return acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByUsername(ctx context.Context, username string) (account.Account, error) {
	defer repo.db.lock(ctx)()

	for _, acc := range repo.db.data.accounts {
		if acc.Username == username {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.data.accounts[acc.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	// only mutable fields
	if acc.PasswordHash != nil {
		orig.PasswordHash = acc.PasswordHash
	}
	orig.IsActive = acc.IsActive
	orig.LastLogin = acc.LastLogin
	orig.UpdatedAt = acc.UpdatedAt

	repo.db.data.accounts[acc.ID] = orig
	return orig, nil
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()
	delete(repo.db.data.accounts, id)
	return nil
}
