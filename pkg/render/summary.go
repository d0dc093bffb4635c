package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/richard-senior/refstats/pkg/refstats"
)

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"pct":    func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"signed": func(v int) string { return fmt.Sprintf("%+d", v) },
	"mean":   func(v float64) string { return fmt.Sprintf("%+.2f", v) },
}).Parse(`<h2>{{.Team}}: matches by referee</h2>
{{if .Empty}}<p>` + NoDataMessage + `</p>{{else}}<table class="summary">
<thead><tr><th>Referee</th><th>Matches</th><th>W</th><th>D</th><th>L</th><th>Win rate</th><th>Goal diff</th><th>Mean goal diff</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Referee}}</td><td>{{.Matches}}</td><td>{{.Wins}}</td><td>{{.Draws}}</td><td>{{.Losses}}</td><td>{{pct .WinRate}}</td><td>{{signed .GoalDifferential}}</td><td>{{mean .MeanGoalDifferential}}</td></tr>
{{end}}</tbody>
</table>{{end}}
`))

// SummaryHTML renders the referee table for r, most used referee first
func SummaryHTML(r *refstats.Report) (string, error) {
	var buf bytes.Buffer
	err := summaryTemplate.Execute(&buf, struct {
		Team  string
		Empty bool
		Rows  []refstats.RefereeStat
	}{r.Team, r.Empty, r.MatchCountView()})
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// SummaryMarkdown is SummaryHTML converted to a Markdown table for MCP clients
func SummaryMarkdown(r *refstats.Report) (string, error) {
	html, err := SummaryHTML(r)
	if err != nil {
		return "", err
	}
	md, err := markdownConverter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert summary to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
