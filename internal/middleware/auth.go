package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/pkg/tokens"
)

const principalKey = "principal"

// UserAuth returns a middleware that authenticates requests with a bearer
// access token and sets the resolved Principal in the context. It also tags
// the current span with the user id for telemetry filtering.
func UserAuth(issuer *tokens.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		principal, err := issuer.VerifyAccess(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", principal.UserID.String()))
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Principal extracts the authenticated identity set by UserAuth.
func Principal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
