//go:build !release
// +build !release

package main

import (
	"github.com/gin-gonic/gin"
)

// initializeGin sets up Gin in debug mode for development builds
func initializeGin() *gin.Engine {
	// Gin will be in debug mode by default
	return gin.New()
}
