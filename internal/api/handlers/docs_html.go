package handlers

const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>API Documentation Login - US Market Hours</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  min-height: 100vh; display: flex; align-items: center; justify-content: center;
}
.card {
  background: white; border-radius: 16px; padding: 40px;
  box-shadow: 0 20px 60px rgba(0,0,0,0.3); width: min(400px, 90vw);
}
h1 { font-size: 1.4em; margin-bottom: 8px; color: #333; }
p { color: #666; margin-bottom: 24px; }
input[type=password] {
  width: 100%; padding: 12px; border: 1px solid #ddd; border-radius: 8px;
  margin-bottom: 16px; font-size: 1em;
}
button {
  width: 100%; padding: 12px; border: none; border-radius: 8px;
  background: #667eea; color: white; font-size: 1em; cursor: pointer;
}
button:hover { background: #5a6fd6; }
</style>
</head>
<body>
<div class="card">
  <h1>US Market Hours API</h1>
  <p>Enter the documentation password to continue.</p>
  <form method="POST" action="/documentation/verify">
    <input type="password" name="password" placeholder="Password" autofocus required>
    <button type="submit">Sign in</button>
  </form>
</div>
</body>
</html>`

const documentationHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>API Documentation - US Market Hours</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  max-width: 860px; margin: 0 auto; padding: 40px 20px; color: #222;
}
h1 { margin-bottom: 4px; }
.sub { color: #666; margin-bottom: 32px; }
h2 { margin: 28px 0 8px; font-size: 1.1em; }
code { background: #f4f4f4; padding: 2px 6px; border-radius: 4px; }
table { border-collapse: collapse; width: 100%; margin: 12px 0; }
th, td { border: 1px solid #ddd; padding: 8px 10px; text-align: left; font-size: 0.95em; }
th { background: #fafafa; }
a.logout { float: right; color: #667eea; }
</style>
</head>
<body>
<a class="logout" href="/documentation/logout">Log out</a>
<h1>US Market Hours API</h1>
<p class="sub">NYSE/NASDAQ trading-hours service. All timestamps are UTC, dates are <code>YYYY-MM-DD</code>.</p>

<h2>Authentication</h2>
<p>When API auth is enabled, pass your key in the <code>X-API-Key</code> header on every <code>/api/market-hours</code> request.</p>

<h2>Endpoints</h2>
<table>
<tr><th>Method</th><th>Path</th><th>Description</th></tr>
<tr><td>GET</td><td><code>/health</code></td><td>Service health</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/today</code></td><td>Today's session bounds and status</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/date/{date}</code></td><td>Session bounds for a specific date</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/week?start_date=</code></td><td>Seven-day schedule (start defaults to today)</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/next</code></td><td>Next open or close event within 30 days</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/is-open</code></td><td>Whether the market is open right now</td></tr>
<tr><td>GET</td><td><code>/api/market-hours/raw</code></td><td>Last calendar refresh run</td></tr>
<tr><td>GET</td><td><code>/api/news</code></td><td>Aggregated market news</td></tr>
<tr><td>GET</td><td><code>/ws/status</code></td><td>WebSocket market-status stream</td></tr>
</table>

<h2>Status values</h2>
<p><code>OPEN</code>, <code>CLOSED</code>, <code>EARLY_CLOSE</code>. Early-close days end at 13:00 ET instead of 16:00 ET.</p>
</body>
</html>`
