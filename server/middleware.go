package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var snowNode *snowflake.Node

func init() {
	var err error
	snowNode, err = snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}
}

// uniqueID returns a process-unique request identifier.
func uniqueID() string {
	return fmt.Sprintf("%d", snowNode.Generate())
}

const requestIDKey = "request_id"

// requestID tags each request with an identifier, honoring one supplied
// by the caller, and echoes it in the response headers.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uniqueID()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// accessLog writes one structured line per handled request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			requestIDKey:  c.GetString(requestIDKey),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
		}).Info("request handled")
	}
}

// recovery converts handler panics into the failure envelope.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logrus.WithFields(logrus.Fields{
			requestIDKey: c.GetString(requestIDKey),
			"panic":      fmt.Sprintf("%v", recovered),
		}).Error("handler panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	})
}
