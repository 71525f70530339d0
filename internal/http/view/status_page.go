package view

import (
	"bytes"
	"html/template"
)

// StatusPageData fills the page shown to browsers for links that cannot be followed.
type StatusPageData struct {
	Status  int
	Title   string
	Message string
	Code    string
}

var statusPageTmpl = template.Must(template.New("status_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--bg: #f8fafc;
			--card: #ffffff;
			--border: #e2e8f0;
			--text: #0f172a;
			--muted: #64748b;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: var(--bg);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 16px;
			padding: 32px;
			width: min(480px, 92vw);
			text-align: center;
		}
		.status { font-size: 3rem; font-weight: 700; margin: 0; }
		p { color: var(--muted); line-height: 1.5; }
		code { background: var(--bg); padding: 2px 6px; border-radius: 6px; }
	</style>
</head>
<body>
	<div class="card">
		<p class="status">{{.Status}}</p>
		<h1>{{.Title}}</h1>
		<p>{{.Message}}</p>
		{{if .Code}}<p><code>/{{.Code}}</code></p>{{end}}
	</div>
</body>
</html>
`))

// RenderStatusPage expands the status page template with the provided data.
func RenderStatusPage(data StatusPageData) (string, error) {
	if data.Title == "" {
		data.Title = "Link unavailable"
	}
	var buf bytes.Buffer
	if err := statusPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
