package account_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/tests"
)

func newAccount(uname, email string) account.NewAccount {
	return account.NewAccount{
		Username:        uname,
		Email:           email,
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
		Role:            core.RoleStudent,
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	acc, err := env.Accounts.Create(ctx, newAccount("  Ada ", "ADA@academia.test"))
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.Equal(t, "ada", acc.Username)
	assert.Equal(t, "ada@academia.test", acc.Email)
	assert.True(t, acc.IsActive)
	assert.NoError(t, acc.CheckPassword(testutil.Password))
	_, err = env.Accounts.Create(ctx, newAccount("bob", "bob@academia.test"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    account.NewAccount
		wantErr error
	}{
		{name: "duplicate username", data: newAccount("ada", "other@academia.test"), wantErr: account.ErrUsernameExists},
		{name: "duplicate username, other case", data: newAccount("ADA", "other@academia.test"), wantErr: account.ErrUsernameExists},
		{name: "duplicate email", data: newAccount("carl", "ada@academia.test"), wantErr: account.ErrEmailExists},
		{name: "username taken, email of another account", data: newAccount("ada", "bob@academia.test"), wantErr: account.ErrUsernameExists},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Accounts.Create(ctx, tc.data)
			assert.True(t, errors.Is(err, tc.wantErr), err)
			assert.True(t, errors.Is(err, core.ErrDuplicateKey), err)
		})
	}

	t.Run("username is reported before email", func(t *testing.T) {
		// map iteration order must not matter
		for i := 0; i < 50; i++ {
			err := env.AccountRepo.CheckUniqueness(ctx, "ada", "bob@academia.test")
			require.True(t, errors.Is(err, account.ErrUsernameExists), err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		data := newAccount("carl", "carl@academia.test")
		data.Role = "ADMIN"
		_, err := env.Accounts.Create(ctx, data)
		assert.Error(t, err)
	})
}

func TestService_Authenticate(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	acc, err := env.Accounts.Create(ctx, newAccount("ada", "ada@academia.test"))
	require.NoError(t, err)
	disabled, err := env.Accounts.Create(ctx, newAccount("bob", "bob@academia.test"))
	require.NoError(t, err)
	disabled.IsActive = false
	_, err = env.AccountRepo.UpdateAccount(ctx, disabled)
	require.NoError(t, err)

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr error
	}{
		{name: "unknown username", uname: "nobody", pwd: testutil.Password, wantErr: core.ErrInvalidCredentials},
		{name: "wrong password", uname: "ada", pwd: "wrong-password", wantErr: core.ErrInvalidCredentials},
		{name: "disabled account", uname: "bob", pwd: testutil.Password, wantErr: core.ErrInvalidCredentials},
		{name: "success", uname: "ada", pwd: testutil.Password},
		{name: "success, untrimmed username", uname: " ADA ", pwd: testutil.Password},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.Accounts.Authenticate(ctx, tc.uname, tc.pwd)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)
			assert.True(t, got.LastLogin.Valid)
		})
	}
}

func TestService_Delete(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	acc, err := env.Accounts.Create(ctx, newAccount("ada", "ada@academia.test"))
	require.NoError(t, err)

	require.NoError(t, env.Accounts.Delete(ctx, acc.ID))
	_, err = env.Accounts.GetByID(ctx, acc.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	// deleting a missing account is a no-op
	assert.NoError(t, env.Accounts.Delete(ctx, acc.ID))
}

func TestService_ChangePassword(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	acc, err := env.Accounts.Create(ctx, newAccount("ada", "ada@academia.test"))
	require.NoError(t, err)

	newPwd := "n3w-Passw0rd"
	err = env.Accounts.ChangePassword(ctx, acc.Identity(), account.NewPassword{Password: newPwd, PasswordConfirm: newPwd})
	require.NoError(t, err)

	_, err = env.Accounts.Authenticate(ctx, "ada", testutil.Password)
	assert.True(t, errors.Is(err, core.ErrInvalidCredentials), err)
	_, err = env.Accounts.Authenticate(ctx, "ada", newPwd)
	assert.NoError(t, err)

	require.NoError(t, env.Accounts.SetPassword(ctx, acc.ID, testutil.Password))
	_, err = env.Accounts.Authenticate(ctx, "ada", testutil.Password)
	assert.NoError(t, err)
}
