package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uuidParam parses a UUID path parameter.
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
