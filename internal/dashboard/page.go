package dashboard

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Team}}: referee stats</title>
<style>
body { font-family: sans-serif; margin: 1em 2em; }
form { display: flex; gap: 1em; align-items: flex-start; }
select { min-width: 12em; }
.charts img { display: block; max-width: 100%; margin: 1em 0; }
table.summary { border-collapse: collapse; }
table.summary td, table.summary th { border: 1px solid #ccc; padding: 0.2em 0.6em; }
.empty { color: #c62828; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Team}}</h1>
<form method="get" action="/">
<input type="hidden" name="filtered" value="1">
<label>Team<br><input name="team" value="{{.Team}}"></label>
<label>Seasons<br><select name="season" multiple size="10">
{{range .Seasons}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select></label>
<label>Referees<br><select name="referee" multiple size="10">
{{range .Referees}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select></label>
<div><button type="submit">Update</button><br><br>
<button type="button" onclick="fetch('/api/reload', {method: 'POST'}).then(() => location.reload())">Reload data</button></div>
</form>
{{if .Empty}}<p class="empty">{{.Message}}</p>{{else}}<p>{{.Matches}} matches selected</p>{{end}}
<div class="charts">
{{range .Charts}}<img src="{{.URL}}" alt="{{.Name}}">
{{end}}</div>
{{.Summary}}
</body>
</html>
`))
