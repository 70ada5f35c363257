package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller with capability flags
// derived once from the closed role enum.
type Principal struct {
	User               *domain.User
	MustChangePassword bool
}

// IsAttendant reports whether the caller may claim and work tickets.
func (p *Principal) IsAttendant() bool { return p.User.Role.CanAttend() }

// IsAdmin reports whether the caller is an administrator.
func (p *Principal) IsAdmin() bool { return p.User.Role == domain.RoleAdmin }

// IsDirector reports whether the caller is a director.
func (p *Principal) IsDirector() bool { return p.User.Role == domain.RoleDirector }

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens      *TokenManager
	users       repository.UserRepository
	credentials repository.CredentialRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, credentials repository.CredentialRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, credentials: credentials}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("user inactive")
	}
	// Unknown role strings fail closed rather than defaulting.
	if !user.Role.Valid() {
		return apperrors.NewUnauthorized("unrecognized role")
	}

	// An admin password reset flips must_change_password in the database
	// while the target still holds a token without the claim, so the flag
	// is read fresh each request. The claim only covers accounts whose
	// credential row is missing.
	mustChange := claims.MustChangePassword
	if user.CredentialID != nil {
		cred, err := m.credentials.GetByID(c.Context(), *user.CredentialID)
		switch {
		case err == nil:
			mustChange = cred.MustChangePassword
		case errors.Is(err, pgx.ErrNoRows):
			// stale link; fall back to the claim
		default:
			return apperrors.MapError(err)
		}
	}

	c.Locals(principalKey, &Principal{
		User:               user,
		MustChangePassword: mustChange,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
