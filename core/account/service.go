package account

import (
	"context"
	"net/mail"
	texttmpl "text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("account")
	ErrEmailExists    = core.NewDuplicateKeyError("email", "an account with this email already exists")
	ErrUsernameExists = core.NewDuplicateKeyError("username", "an account with this username already exists")

	errInvalidRole = core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role"})

	welcomeTmpl = texttmpl.Must(texttmpl.New("welcome").Parse(
		"Hello {{.Username}},\n\n" +
			"An account has been created for you.\n" +
			"Username: {{.Username}}\n" +
			"Role: {{.Role}}\n\n" +
			"Please sign in and change your password.\n",
	))
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when taken.
		CheckUniqueness(ctx context.Context, username, email string) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccountByID(ctx context.Context, id int) (Account, error)
		GetAccountByUsername(ctx context.Context, username string) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		// DeleteAccount is a no-op when the account does not exist.
		DeleteAccount(ctx context.Context, id int) error
	}

	Service struct {
		tx   core.Transactor
		repo Repository
	}
)

func NewService(tx core.Transactor, repo Repository) *Service {
	return &Service{tx: tx, repo: repo}
}

// Create registers a new enabled Account. It joins the caller's transaction if any.
func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	na.Clean()
	if !na.Role.IsValid() {
		return Account{}, errInvalidRole
	}

	var acc Account
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := svc.repo.CheckUniqueness(ctx, na.Username, na.Email); err != nil {
			return err
		}

		now := time.Now().UTC()
		acc = Account{
			Username:  na.Username,
			Email:     na.Email,
			Role:      na.Role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := acc.SetPassword(na.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}

		var err error
		acc, err = svc.repo.CreateAccount(ctx, acc)
		return err
	})
	if err != nil {
		return Account{}, errors.Wrap(err, "creating account")
	}
	return acc, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Account, error) {
	return svc.repo.GetAccountByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// Delete removes the account; deleting a missing account is a no-op.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		return svc.repo.DeleteAccount(ctx, id)
	})
}

// Authenticate checks the credentials and records the login.
// Unknown usernames, disabled accounts and wrong passwords all fail with core.ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (Account, error) {
	var acc Account
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = svc.GetByUsername(ctx, uname)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.ErrInvalidCredentials
			}
			return errors.Wrap(err, "finding account by username")
		}
		if !acc.IsActive {
			return core.ErrInvalidCredentials
		}
		if err = acc.CheckPassword(pwd); err != nil {
			return core.ErrInvalidCredentials
		}

		now := time.Now().UTC()
		acc.LastLogin = null.TimeFrom(now)
		acc.UpdatedAt = now
		acc, err = svc.repo.UpdateAccount(ctx, acc)
		return errors.Wrap(err, "setting last login")
	})
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// ChangePassword replaces the caller's own password.
func (svc *Service) ChangePassword(ctx context.Context, caller core.Identity, np NewPassword) error {
	return svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		acc, err := svc.repo.GetAccountByID(ctx, caller.AccountID)
		if err != nil {
			return errors.Wrap(err, "finding caller account")
		}
		if err = acc.SetPassword(np.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		acc.UpdatedAt = time.Now().UTC()
		_, err = svc.repo.UpdateAccount(ctx, acc)
		return errors.Wrap(err, "updating account")
	})
}

// SetPassword replaces the password of any account. Only the admin CLI uses it.
func (svc *Service) SetPassword(ctx context.Context, id int, pwd string) error {
	return svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		acc, err := svc.repo.GetAccountByID(ctx, id)
		if err != nil {
			return err
		}
		if err = acc.SetPassword(pwd); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		acc.UpdatedAt = time.Now().UTC()
		_, err = svc.repo.UpdateAccount(ctx, acc)
		return errors.Wrap(err, "updating account")
	})
}

// WelcomeMessage is sent once a profile and its account are registered.
func WelcomeMessage(acc Account) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Address: acc.Email}},
		Subject:      "Welcome",
		Template:     welcomeTmpl,
		TemplateData: acc,
	}
}
