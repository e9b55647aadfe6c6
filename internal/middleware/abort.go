package middleware

import (
	"fmt"
	"html"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/sportify-web/pkg/response"
)

// UIPrefix marks the JSON endpoints used by the browser shell
const UIPrefix = "/ui/"

// WantsJSON reports whether the caller expects the JSON envelope
func WantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, UIPrefix) ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// abort stops the chain with a JSON envelope or a minimal HTML page
func abort(c *gin.Context, status int, code, message string) {
	if WantsJSON(c) {
		response.Error(c, status, code, message, "")
		return
	}
	page := fmt.Sprintf(`<!doctype html><html><body><h1>%d</h1><p>%s</p><p><a href="/">Back home</a></p></body></html>`,
		status, html.EscapeString(message))
	c.Data(status, "text/html; charset=utf-8", []byte(page))
	c.Abort()
}
