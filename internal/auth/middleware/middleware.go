package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/n2s-efficiency/internal/rbac"
)

const (
	issuer   = "n2s-efficiency"
	tokenTTL = 8 * time.Hour
)

type AuthService struct {
	hmac []byte

	adminUser string
	adminHash []byte
	// devLogins accepts user==password for non-admin roles (offline mode).
	devLogins bool
}

type Options struct {
	AdminUser     string
	AdminPassHash string // bcrypt
	DevLogins     bool
}

func NewAuthService(secret string, opts Options) *AuthService {
	return &AuthService{
		hmac:      []byte(secret),
		adminUser: opts.AdminUser,
		adminHash: []byte(opts.AdminPassHash),
		devLogins: opts.DevLogins,
	}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // viewer|analyst|admin
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// Authenticate returns the role for a username/password pair. The admin
// account is checked against its bcrypt hash; with dev logins enabled any
// user whose password equals the username may sign in as viewer or analyst.
func (a *AuthService) Authenticate(username, password, role string) (string, bool) {
	if a.adminUser != "" && username == a.adminUser {
		if bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) != nil {
			return "", false
		}
		return rbac.RoleAdmin, true
	}
	if !a.devLogins || username == "" || username != password {
		return "", false
	}
	switch role {
	case "":
		return rbac.RoleViewer, true
	case rbac.RoleViewer, rbac.RoleAnalyst:
		return role, true
	}
	return "", false
}

// POST /auth/login  { "username": "...", "password": "...", "role": "viewer|analyst" }
func LoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role, ok := a.Authenticate(req.Username, req.Password, req.Role)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware verifies the bearer token and puts its subject and role in
// the request context for rbac.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(rbac.WithRole(r.Context(), c.Role), c.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
