package http

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// tailParam is the name of the catch-all segment on every file route.
const tailParam = "tail"

// rawTail returns the still-escaped path below the route prefix so that the
// sanitizer performs the one and only percent-decode.
func rawTail(c *gin.Context) string {
	prefix := strings.TrimSuffix(c.FullPath(), "*"+tailParam)
	if rest, ok := strings.CutPrefix(c.Request.URL.EscapedPath(), prefix); ok {
		return rest
	}
	// The prefix itself was percent-encoded; gin already decoded the tail once,
	// so escape it back.
	return escape(strings.TrimPrefix(c.Param(tailParam), "/"))
}

// escape turns an already-decoded path back into its escaped form.
func escape(decoded string) string {
	return (&url.URL{Path: decoded}).EscapedPath()
}
