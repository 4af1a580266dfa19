// Package signin is a reference sign-in server for the kemal wire format.
//
// POST <sign-in path> takes {"name": ..., "auth": ...} and answers with
// {"token": ..., "errors": [...]}. GET /whoami requires a valid X-Token.
package signin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenHeader is the request header carrying the token.
	TokenHeader = "X-Token"
	// UserContextKey is the key used to store the user name in Gin context
	UserContextKey = "user"
)

// ErrUnauthorized is returned for tokens that fail validation.
var ErrUnauthorized = errors.New("unauthorized")

// Config configures a Server.
type Config struct {
	SignInPath string
	JWTSecret  string
	TokenTTL   time.Duration
	Issuer     string
}

// Server authenticates users and issues signed tokens.
type Server struct {
	cfg    Config
	secret []byte
	users  map[string]User
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// loginRequest mirrors the client's request body.
type loginRequest struct {
	Name string `json:"name"`
	Auth string `json:"auth"`
}

// loginResponse mirrors the client's response body.
type loginResponse struct {
	Token  string   `json:"token,omitempty"`
	Errors []string `json:"errors"`
}

// New creates a server for users.
func New(cfg Config, users []User) *Server {
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/sign_in"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "kemal"
	}

	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[u.Name] = u
	}
	return &Server{cfg: cfg, secret: []byte(cfg.JWTSecret), users: byName}
}

// Router returns the Gin engine serving the sign-in and whoami routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST(s.cfg.SignInPath, s.Login)
	r.GET("/whoami", s.Middleware(), s.WhoAmI)
	return r
}

// Login handles the sign-in request.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, loginResponse{Errors: []string{"invalid request body"}})
		return
	}
	if req.Name == "" && req.Auth == "" {
		c.JSON(http.StatusBadRequest, loginResponse{Errors: []string{"no credentials supplied"}})
		return
	}

	user, ok := s.users[req.Name]
	if !ok || !VerifyPassword(user.PasswordHash, req.Auth) {
		slog.Warn("Login attempt with bad credentials", "username", req.Name)
		c.JSON(http.StatusUnauthorized, loginResponse{Errors: []string{"bad credentials"}})
		return
	}

	token, err := s.IssueToken(user.Name)
	if err != nil {
		slog.Error("Failed to issue token", "username", user.Name, "error", err)
		c.JSON(http.StatusInternalServerError, loginResponse{Errors: []string{"internal server error"}})
		return
	}

	notices := user.Notices
	if notices == nil {
		notices = []string{}
	}
	slog.Info("User logged in successfully", "username", user.Name)
	c.JSON(http.StatusOK, loginResponse{Token: token, Errors: notices})
}

// WhoAmI reports the authenticated user.
func (s *Server) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": c.GetString(UserContextKey)})
}

// IssueToken creates a signed token for username.
func (s *Server) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns its claims.
func (s *Server) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrUnauthorized
}

// Middleware rejects requests without a valid X-Token header.
func (s *Server) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader(TokenHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			slog.Warn("Invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserContextKey, claims.Username)
		c.Next()
	}
}
