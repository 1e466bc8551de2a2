package http

import (
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/chatsync/internal/proto"
)

const msgInternal = "Internal server error"

func respond[T any](c *gin.Context, status int, data T, message string) {
	c.JSON(status, proto.Response[T]{Data: data, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, proto.Response[any]{Error: true, Message: message})
}
