//go:build release
// +build release

package main

import (
	"github.com/gin-gonic/gin"
)

// initializeGin sets up Gin in release mode for production builds
func initializeGin() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// The control API binds to loopback; don't trust any proxies.
	router.SetTrustedProxies(nil)

	return router
}
