package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenLeeway = 10 * time.Second

	localsUserID   = "userID"
	localsIdentity = "identity"
)

// Claims are the JWT claims issued for a user. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.JWTTTL,
		now:      time.Now,
	}
}

// Issue signs a token for userID with a fresh jti.
func (m *TokenManager) Issue(userID uint) (string, *Claims, error) {
	now := m.now().UTC().Truncate(time.Second)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    m.issuer,
		Audience:  jwt.ClaimStrings{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		ID:        uuid.NewString(),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature, algorithm, issuer, audience and time claims.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no jti")
	}
	return claims, nil
}

// UserLoader resolves the user named by a token.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// RevocationChecker reports whether a token ID was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// IdentityStatus is the outcome of authenticating a request.
type IdentityStatus int

const (
	Anonymous IdentityStatus = iota
	Authenticated
	Rejected
)

func (s IdentityStatus) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// Identity is the request-scoped result of authentication.
type Identity struct {
	Status IdentityStatus
	User   *models.User
	Claims *Claims
	// Message and Reason describe a rejection.
	Message string
	Reason  string
}

func rejected(message, reason string) Identity {
	return Identity{Status: Rejected, Message: message, Reason: reason}
}

// Authenticator turns bearer tokens into identities.
type Authenticator struct {
	tokens  *TokenManager
	users   UserLoader
	revoked RevocationChecker
}

// NewAuthenticator builds an Authenticator. revoked may be nil.
func NewAuthenticator(tokens *TokenManager, users UserLoader, revoked RevocationChecker) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, revoked: revoked}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", true
	}
	return strings.TrimSpace(token), true
}

// Identify authenticates the request without writing a response.
func (a *Authenticator) Identify(c *fiber.Ctx) Identity {
	token, present := bearerToken(c)
	if !present {
		return Identity{Status: Anonymous}
	}
	if token == "" {
		return rejected("Authentication failed", "Invalid authorization header")
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		return rejected("Authentication failed", "Invalid or expired token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return rejected("Authentication failed", "Invalid or expired token")
	}

	ctx := c.UserContext()
	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			Logger.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
		} else if revoked {
			return rejected("Authentication failed", "Token has been revoked")
		}
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil || user == nil || !user.IsActive {
		return rejected("User not found or inactive", "Invalid user")
	}
	return Identity{Status: Authenticated, User: user, Claims: claims}
}

func (a *Authenticator) attach(c *fiber.Ctx, id Identity) {
	c.Locals(localsIdentity, id)
	if id.Status == Authenticated {
		c.Locals(localsUserID, id.User.ID)
		c.SetUserContext(WithUserID(c.UserContext(), id.User.ID))
	}
}

// Required rejects every request that is not Authenticated with 401.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := a.Identify(c)
		if id.Status == Anonymous {
			id = rejected("Authentication failed", "Missing authorization token")
		}
		if id.Status != Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Response{
				Message: id.Message,
				Errors:  map[string]string{"auth": id.Reason},
			})
		}
		a.attach(c, id)
		return c.Next()
	}
}

// Optional attaches the identity when a valid token is sent and treats a
// rejected token as anonymous.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := a.Identify(c)
		if id.Status == Rejected {
			Logger.DebugContext(c.UserContext(), "optional auth downgraded to anonymous", slog.String("reason", id.Reason))
			id = Identity{Status: Anonymous}
		}
		a.attach(c, id)
		return c.Next()
	}
}

// CurrentIdentity returns the identity attached by Required or Optional.
func CurrentIdentity(c *fiber.Ctx) Identity {
	if id, ok := c.Locals(localsIdentity).(Identity); ok {
		return id
	}
	return Identity{Status: Anonymous}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	id := CurrentIdentity(c)
	return id.User, id.Status == Authenticated
}
