package router

import "github.com/gin-gonic/gin"

// Module registers one resource's routes on the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
