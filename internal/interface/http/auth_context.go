package http

import "github.com/gin-gonic/gin"

const principalKey = "auth_principal"

// principal identifies the caller that passed authentication.
type principal struct {
	Subject string
	Method  string
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalKey, p)
}

func getPrincipal(c *gin.Context) (principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return principal{}, false
	}
	p, ok := value.(principal)
	return p, ok
}
