package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
)

// Account holds the login credentials of a Student or Teacher profile.
type Account struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         core.Role `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	LastLogin    null.Time `json:"last_login"` // UTC
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a Account) Identity() core.Identity {
	return core.Identity{AccountID: a.ID, Username: a.Username, Role: a.Role}
}

// NewAccount contains the credentials needed to register a profile.
// Role is never read from requests: it is fixed by the kind of profile being registered.
type NewAccount struct {
	Username        string    `json:"username" validate:"required,min=3,max=150,alphanum_"`
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required"`
	PasswordConfirm string    `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            core.Role `json:"-"`
}

func (na *NewAccount) Clean() {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Clean()
	return validate.Struct(na)
}

type NewPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	attrs []string // account attributes the password must not resemble
}

func (np *NewPassword) Validate(validate *validator.Validate, acc Account) error {
	np.attrs = []string{acc.Username, acc.Email}
	return validate.Struct(np)
}
