package httpapi

import "github.com/gin-gonic/gin"

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
