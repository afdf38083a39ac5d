package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ActorHeader carries the resolved actor identity into handlers.
const ActorHeader = "X-Actor-ID"

// Actor resolves the acting user for mutation attribution. With a secret
// configured it requires a bearer token and reads the actor claim; with
// no secret (development) it trusts the X-Actor-ID header as-is.
// Authentication decisions beyond identity extraction live elsewhere.
func Actor(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if secret == "" {
				if len(ctx.Request.Header.Peek(ActorHeader)) == 0 {
					ctx.SetStatusCode(fasthttp.StatusUnauthorized)
					return
				}
				next(ctx)
				return
			}

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			actor := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if v, ok := claims["actor"].(string); ok {
					actor = v
				} else if v, ok := claims["sub"].(string); ok {
					actor = v
				}
			}
			if actor == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(ActorHeader, actor)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
