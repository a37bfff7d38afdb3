package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ProblemContentType = "application/problem+json"

// ProblemDetails is an RFC 7807 error body.
type ProblemDetails struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Problem writes a problem+json response and aborts the chain.
func Problem(c *gin.Context, status int, detail string) {
	body := ProblemDetails{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		RequestID: RequestIDFrom(c),
	}
	c.Header("Content-Type", ProblemContentType)
	c.AbortWithStatusJSON(status, body)
}
