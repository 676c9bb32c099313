package web

import (
	"html/template"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>TribeBot API</title></head>
<body>
<h1>🤖 TribeBot API</h1>
<p>All endpoints are read-only and return JSON. Errors use <code>{"error": true, "message": "...", "code": 404}</code>.</p>
<ul>
{{range .}}<li><code>{{.Method}} {{.Path}}</code></li>
{{end}}</ul>
</body>
</html>`))

// docs lists every registered route
func (s *Server) docs(c *gin.Context) {
	routes := s.engine.Routes()
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := docsTemplate.Execute(c.Writer, routes); err != nil {
		_ = c.Error(err)
	}
}
