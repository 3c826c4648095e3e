package stat

import (
	"encoding/json"
	"html/template"
	"net/http"

	"k8s.io/klog/v2"

	"github.com/fossnova/nio/config"
)

// StartDashboard serves the stats page and its JSON feed in the background.
func StartDashboard(dc *config.Dashboard) {
	if dc == nil {
		dc = &config.Dashboard{BindAddr: "127.0.0.1:8080"}
	}

	go func() {
		klog.Infof("[dashboard] running at http://%s", dc.BindAddr)
		if err := http.ListenAndServe(dc.BindAddr, NewDashboardHandler(dc)); err != nil {
			klog.Errorf("[dashboard] stopped: %v", err)
		}
	}()
}

// NewDashboardHandler returns the dashboard routes, behind basic auth when credentials are set.
func NewDashboardHandler(dc *config.Dashboard) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/api/stats", statsAPI)
	if dc.HttpPassword != "" && dc.HttpUser != "" {
		return basicAuth(mux, dc.HttpUser, dc.HttpPassword)
	}
	return mux
}

func basicAuth(next http.Handler, user, pwd string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		basicUser, basicPass, ok := r.BasicAuth()
		if !ok || basicUser != user || basicPass != pwd {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func statsAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GlobalStats.Snapshot())
}

var dashboardTpl = template.Must(template.New("dash").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>YARP Dashboard</title>
<style>
body { font-family: sans-serif; margin: 40px; background: #fafafa; }
#lastUpdated { position: fixed; top: 10px; right: 20px; font-size: 14px; }
table { border-collapse: collapse; width: 100%; background: white; margin-top: 50px; }
th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
th { background: #eee; }
</style>
<script>
function formatBytes(n) {
	const units = ['B','KB','MB','GB','TB'];
	let i = 0;
	while (n >= 1024 && i < units.length - 1) { n /= 1024; i++; }
	return n.toFixed(2) + ' ' + units[i];
}

async function refresh() {
	let snapshot = await (await fetch('/api/stats')).json();
	let rows = Object.entries(snapshot.ruleStats).sort(([a], [b]) => a.localeCompare(b));
	let html = '<table><tr><th>Rule</th><th>Conn</th><th>BytesIn</th><th>BytesOut</th>' +
		'<th>RateIn(KB/s)</th><th>RateOut(KB/s)</th><th>SniffFailures</th></tr>';
	for (let [rule, v] of rows) {
		html += '<tr><td>' + rule + '</td><td>' + v.ConnCount + '</td><td>' + formatBytes(v.BytesIn) +
			'</td><td>' + formatBytes(v.BytesOut) + '</td><td>' + v.RateInKBps.toFixed(2) +
			'</td><td>' + v.RateOutKBps.toFixed(2) + '</td><td>' + v.SniffFailures + '</td></tr>';
	}
	document.getElementById('statsTable').innerHTML = html + '</table>';
	document.getElementById('lastUpdated').innerText =
		'Last Updated: ' + new Date(snapshot.lastUpdateTime).toLocaleString();
}

setInterval(refresh, 1000);
window.onload = refresh;
</script>
</head>
<body>
<div id="lastUpdated">Loading...</div>
<div id="statsTable">Loading...</div>
</body>
</html>
`))

func dashboardHandler(w http.ResponseWriter, _ *http.Request) {
	_ = dashboardTpl.Execute(w, nil)
}
