package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"expense_backend/internal/feature/auth/domain/entity"
	"expense_backend/internal/platform/http/middleware"
)

// ContextPrincipal はGinコンテキストに認証済みユーザーを格納するキーです。
const ContextPrincipal = "principal"

// unauthorizedMessage は理由を問わず401応答で返す固定メッセージです。
const unauthorizedMessage = "Could not validate credentials"

// Authenticator はBearerトークンをユーザーに解決します。
// auth usecaseが実装します。
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Principal はリクエストを送ったユーザーです。
type Principal struct {
	UserID uint
	Email  string
}

// AuthRequired returns a Gin middleware that resolves the bearer token to a
// user and stores the resulting Principal in the context. Every failure is
// answered with the same 401 body and a WWW-Authenticate challenge.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// スキーム名は大文字小文字を区別しない（RFC 7235）
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortUnauthorized(c)
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			slog.Warn("bearer authentication failed", "error", err, "remote_addr", c.ClientIP(),
				"request_id", middleware.RequestIDFrom(c))
			abortUnauthorized(c)
			return
		}

		c.Set(ContextPrincipal, Principal{UserID: user.ID, Email: user.Email})
		c.Next()
	}
}

// PrincipalFrom はAuthRequiredが格納したPrincipalを返します。
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
}
