package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/response"
)

// Signed rejects requests whose path and query were not produced by signer,
// or whose expires parameter has passed.
func Signed(signer *helpers.URLSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := signer.Verify(c.Request.URL.Path, c.Request.URL.Query())
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, helpers.ErrLinkExpired):
			response.Abort(c, http.StatusForbidden, "This link has expired.")
		default:
			response.Abort(c, http.StatusForbidden, "Invalid signature.")
		}
	}
}
