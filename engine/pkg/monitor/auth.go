package monitor

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// basicAuth accounts为空时不校验
func basicAuth(accounts map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(accounts) == 0 {
			c.Next()
			return
		}
		auth := strings.SplitN(strings.TrimSpace(c.GetHeader("Authorization")), " ", 2)
		if len(auth) != 2 || auth[0] != "Basic" {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted Content\"")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		payload, _ := base64.StdEncoding.DecodeString(auth[1])
		pair := strings.SplitN(string(payload), ":", 2)

		if len(pair) != 2 || accounts[pair[0]] != pair[1] {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
