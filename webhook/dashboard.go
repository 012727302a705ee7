package webhook

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hupe1980/callmesh/core"
)

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"upper": func(r core.Role) string { return strings.ToUpper(string(r)) },
}).Parse(`<html>
<head>
<title>AI Voice Agent Dashboard</title>
<style>
body { font-family: sans-serif; padding: 20px; background: #f4f4f9; }
.card { background: white; padding: 15px; margin-bottom: 10px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
h1 { color: #333; }
.meta { color: #666; font-size: 0.8em; }
.msg { margin: 5px 0; }
.user { color: blue; }
.assistant { color: green; }
</style>
</head>
<body>
<h1>Active Session Logs</h1>
{{- if not . }}
<p>No active sessions.</p>
{{- end }}
{{- range . }}
<div class="card">
<div class="meta">Call SID: {{ .CallID }}</div>
<hr>
{{- range .Messages }}
<div class="msg {{ .Role }}"><strong>{{ upper .Role }}:</strong> {{ .Content }}</div>
{{- end }}
</div>
{{- end }}
</body>
</html>
`))

func (s *Server) handleDashboard(c echo.Context) error {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, s.sessions.List()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
