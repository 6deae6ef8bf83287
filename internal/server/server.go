// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package server exposes resolved hosts over a small read-only HTTP API.
package server // import "github.com/toeirei/keychain/internal/server"

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/internal/model"
)

// New builds the router for src.
func New(src *Source) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/hosts", func(c *gin.Context) {
		hosts := model.FromKeychains(src.Keychains())
		c.JSON(http.StatusOK, gin.H{
			"source":    src.Path(),
			"loaded_at": src.LoadedAt(),
			"count":     len(hosts),
			"hosts":     hosts,
		})
	})

	r.GET("/hosts/:name", func(c *gin.Context) {
		name := c.Param("name")
		kc, ok := src.Keychains().Find(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "host not found", "host": name})
			return
		}
		c.JSON(http.StatusOK, model.FromKeychain(kc))
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debugf("http %s %s status=%d latency=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
