// Package web holds the embedded monitor page.
package web

// IndexHTML is the single-page timecode monitor served at /.
var IndexHTML = []byte(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>timewax</title>
<style>
  body { background: #111; color: #ddd; font-family: monospace; margin: 2em; }
  #tc { font-size: 4em; letter-spacing: 0.1em; }
  #tc.invalid { color: #f55; }
  .row { margin: 0.6em 0; }
  #qbar { width: 300px; height: 12px; background: #333; display: inline-block; }
  #qfill { height: 100%; width: 0; background: #5c5; }
</style>
</head>
<body>
<h1>timewax</h1>
<div class="row"><span id="tc" class="invalid">--.---</span></div>
<div class="row">rate <span id="fps">-</span> fps, drop-frame <span id="df">-</span>, volume <span id="vol">-</span> dBFS</div>
<div class="row">DVS speed <span id="speed">-</span>, position <span id="pos">-</span> s, quality <span id="qbar"><span id="qfill"></span></span></div>
<div class="row"><audio controls src="/stream"></audio></div>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const s = JSON.parse(ev.data);
  const tc = document.getElementById("tc");
  tc.textContent = s.decode.timecode.toFixed(3);
  tc.className = s.decode.valid ? "" : "invalid";
  document.getElementById("fps").textContent = s.decode.frame_rate;
  document.getElementById("df").textContent = s.decode.drop_frame;
  document.getElementById("vol").textContent = s.decode.volume_dbfs.toFixed(1);
  document.getElementById("speed").textContent = s.dvs.speed.toFixed(3);
  document.getElementById("pos").textContent = s.dvs.valid ? s.dvs.position_seconds.toFixed(3) : "-";
  document.getElementById("qfill").style.width = (s.dvs.quality * 100) + "%";
};
</script>
</body>
</html>
`)
