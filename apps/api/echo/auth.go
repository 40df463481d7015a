package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
)

const (
	tokenContextKey  = "accountToken"
	callerContextKey = "caller"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the account ID.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Username     string    `json:"username,omitempty"`
	Role         core.Role `json:"role,omitempty"`
}

func NewClaims(acc account.Account, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(acc.ID),
			Audience:  conf.AppName,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     acc.Username,
		Role:         acc.Role,
	}
}

// Identity turns the claims into the caller of core operations.
func (c Claims) Identity() (core.Identity, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || !c.Role.IsValid() {
		return core.Identity{}, errUnauthorized
	}
	return core.Identity{AccountID: id, Username: c.Username, Role: c.Role}, nil
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// identifyCaller loads the account behind a valid token.
// Deleted and disabled accounts are rejected; the role comes from the stored account, not the claims.
func identifyCaller(svc *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			caller, err := claims.Identity()
			if err != nil {
				return err
			}

			acc, err := svc.GetByID(ctx.Request().Context(), caller.AccountID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding caller account")
			}
			if !acc.IsActive {
				return errUnauthorized
			}

			ctx.Set(callerContextKey, acc.Identity())
			return next(ctx)
		}
	}
}

// callerIdentity is the Identity every handler hands to the core services.
func callerIdentity(ctx echo.Context) (core.Identity, error) {
	if caller, ok := ctx.Get(callerContextKey).(core.Identity); ok {
		return caller, nil
	}
	return core.Identity{}, errUnauthorized
}

func refreshToken(ctx echo.Context, svc *account.Service, conf *core.Config) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	caller, err := claims.Identity()
	if err != nil {
		return "", err
	}

	acc, err := svc.GetByID(ctx.Request().Context(), caller.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", errUnauthorized
		}
		return "", errors.Wrap(err, "finding account by ID")
	}

	// check if account is still active
	if !acc.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(NewClaims(acc, conf, claims.OrigIssuedAt), conf.SecretKey)
	return token, errors.Wrap(err, "generating token")
}
