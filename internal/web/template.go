package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/board-buttons/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hex": func(v uint32) string { return fmt.Sprintf("0x%08x", v) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Buttons: {{.Config.Board}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Buttons: {{.Config.Board}}</h1>

<h2>State</h2>
<table>
<tr><th>Status</th><td>{{hex .Status}}</td></tr>
{{range .Buttons}}<tr><th>{{.Name}} ({{hex .Mask}})</th><td class="{{if .Pressed}}pressed{{else}}released{{end}}">{{if .Pressed}}PRESSED{{else}}released{{end}} ({{.Presses}} presses)</td></tr>
{{end}}<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}} (port {{.Config.Port}})</td></tr>
{{if .GPIOError}}<tr><th>GPIO error</th><td class="disconnected">{{.GPIOError}}</td></tr>
{{end}}
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

type buttonRow struct {
	Name    string
	Mask    uint32
	Pressed bool
	Presses int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	rows := make([]buttonRow, 0, len(snap.Config.Buttons))
	for _, b := range snap.Config.Buttons {
		rows = append(rows, buttonRow{
			Name:    b.Name,
			Mask:    b.Mask,
			Pressed: snap.Pressed(b.Name),
			Presses: snap.Counts.Pressed[b.Name],
		})
	}
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Buttons []buttonRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Buttons:  rows,
	}
	indexTmpl.Execute(w, data)
}
