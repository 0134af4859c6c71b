package web

// chatPage is the single-file chat UI served at /. It keeps the
// session_id returned by the first /api/chat call so the conversation
// continues across messages.
const chatPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Personal Assistant</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f4f4f7; }
  .wrap { max-width: 680px; margin: 0 auto; padding: 16px; display: flex; flex-direction: column; height: 100vh; box-sizing: border-box; }
  h1 { font-size: 1.2rem; margin: 0 0 12px; }
  #log { flex: 1; overflow-y: auto; background: #fff; border: 1px solid #ddd; border-radius: 8px; padding: 12px; }
  .msg { margin: 8px 0; white-space: pre-wrap; line-height: 1.4; }
  .user { color: #1a4f8b; }
  .bot { color: #222; }
  form { display: flex; gap: 8px; margin-top: 12px; }
  input { flex: 1; padding: 10px; border: 1px solid #ccc; border-radius: 8px; font-size: 1rem; }
  button { padding: 10px 18px; border: 0; border-radius: 8px; background: #1a4f8b; color: #fff; font-size: 1rem; cursor: pointer; }
  button:disabled { opacity: .5; }
</style>
</head>
<body>
<div class="wrap">
  <h1>Personal Assistant</h1>
  <div id="log"></div>
  <form id="form">
    <input id="input" autocomplete="off" placeholder="Schedule a meeting, add a task, save a note..." autofocus>
    <button id="send" type="submit">Send</button>
  </form>
</div>
<script>
let sessionId = "";
const log = document.getElementById("log");
const form = document.getElementById("form");
const input = document.getElementById("input");
const send = document.getElementById("send");

function append(cls, who, text) {
  const div = document.createElement("div");
  div.className = "msg " + cls;
  div.textContent = who + ": " + text;
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}

form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const message = input.value.trim();
  if (!message) return;
  append("user", "You", message);
  input.value = "";
  send.disabled = true;
  try {
    const res = await fetch("/api/chat", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ message: message, session_id: sessionId })
    });
    const data = await res.json();
    if (data.session_id) sessionId = data.session_id;
    append("bot", "Assistant", data.response || data.error || "(no response)");
  } catch (err) {
    append("bot", "Assistant", "Request failed: " + err);
  } finally {
    send.disabled = false;
    input.focus();
  }
});
</script>
</body>
</html>
`
