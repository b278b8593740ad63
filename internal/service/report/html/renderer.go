package html

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dataservice/chat2query/internal/service/report/types"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatHTML
}

type templateData struct {
	CSS           template.CSS
	Question      string
	Task          string
	SQL           string
	Columns       []string
	Rows          [][]string
	Empty         bool
	EmptyMessage  string
	GeneratedDate string
}

func (r *Renderer) Render(data *types.ReportData) ([]byte, error) {
	return r.executeTemplate(answerTemplate, templateData{
		CSS:           template.CSS(css),
		Question:      data.Question,
		Task:          data.Task,
		SQL:           data.SQL,
		Columns:       data.Columns,
		Rows:          data.Rows,
		Empty:         data.Empty(),
		EmptyMessage:  types.EmptyResultMessage,
		GeneratedDate: data.Generated.UTC().Format("January 2, 2006 at 15:04 MST"),
	})
}

func (r *Renderer) executeTemplate(templateStr string, data interface{}) ([]byte, error) {
	tmpl, err := template.New("report").Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

const css = `
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; color: #222; }
        h1 { font-size: 22px; }
        .task { font-style: italic; margin-bottom: 16px; }
        pre { background: #f6f8fa; padding: 12px; border-radius: 6px; overflow-x: auto; }
        table { border-collapse: collapse; margin-top: 16px; }
        th, td { border: 1px solid #d0d7de; padding: 6px 12px; text-align: left; }
        th { background: #f6f8fa; }
        .empty { color: #57606a; margin-top: 16px; }
        footer { margin-top: 32px; font-size: 12px; color: #57606a; }
`

const answerTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{ .Question }}</title>
    <style>{{ .CSS }}</style>
</head>
<body>
    <h1>{{ .Question }}</h1>
    {{ if .Task }}<div class="task">{{ .Task }}</div>{{ end }}
    <pre><code>{{ .SQL }}</code></pre>
    {{ if .Empty }}
    <div class="empty">{{ .EmptyMessage }}</div>
    {{ else }}
    <table>
        <thead>
            <tr>{{ range .Columns }}<th>{{ . }}</th>{{ end }}</tr>
        </thead>
        <tbody>
            {{ range .Rows }}<tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
            {{ end }}
        </tbody>
    </table>
    {{ end }}
    <footer>Generated {{ .GeneratedDate }}</footer>
</body>
</html>
`
