package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/traffic-light/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		case h > 0:
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		case m > 0:
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"lamp": func(on bool) string {
		if on {
			return "lit"
		}
		return "dark"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1">
<title>Traffic Light</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.light { display: inline-block; background: #222; padding: 8px; border-radius: 8px; }
.lamp { width: 40px; height: 40px; border-radius: 50%; margin: 6px; background: #444; }
.red.lit { background: #e22; }
.yellow.lit { background: #eb2; }
.green.lit { background: #2c4; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Traffic Light</h1>

<div class="light">
<div id="lamp-red" class="lamp red {{lamp .Lamps.Red}}"></div>
<div id="lamp-yellow" class="lamp yellow {{lamp .Lamps.Yellow}}"></div>
<div id="lamp-green" class="lamp green {{lamp .Lamps.Green}}"></div>
</div>

<h2>State</h2>
<table>
<tr><th>Phase</th><td id="phase">{{.Phase}}</td></tr>
<tr><th>Transitions</th><td>{{.Transitions}}</td></tr>
<tr><th>Heartbeats</th><td>{{.Heartbeats}}</td></tr>
</table>

<h2>Phase Counts</h2>
<table>
<tr><th>Red</th><td>{{.Counts.Red}}</td></tr>
<tr><th>Yellow</th><td>{{.Counts.Yellow}}</td></tr>
<tr><th>Green</th><td>{{.Counts.Green}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{else}}<tr><th>MQTT</th><td>disabled</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><th>GPIO</th><td>{{.Config.Chip}} R={{.Config.PinRed}} Y={{.Config.PinYellow}} G={{.Config.PinGreen}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// The template needs plain fields for the computed values.
	data := struct {
		status.Snapshot
		Phase  string
		Uptime time.Duration
	}{
		Snapshot: snap,
		Phase:    snap.LitName(),
		Uptime:   snap.Uptime(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("render index: %v", err)
	}
}
