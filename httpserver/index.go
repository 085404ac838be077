package httpserver

// indexHTML is the single-page form served at /. It posts the question to
// /query and renders the markdown answer as preformatted text.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>GlobalGuide Travel Planner</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.5rem; }
  textarea { width: 100%; min-height: 6rem; font: inherit; padding: 0.5rem; box-sizing: border-box; }
  button { margin-top: 0.5rem; padding: 0.5rem 1.5rem; font: inherit; cursor: pointer; }
  #answer { white-space: pre-wrap; background: #f6f6f6; padding: 1rem; border-radius: 4px; margin-top: 1rem; }
  .error { color: #b00020; }
</style>
</head>
<body>
<h1>GlobalGuide Travel Planner</h1>
<p>Describe your trip: destination, dates, budget, interests.</p>
<form id="form">
  <textarea id="question" placeholder="Plan a 5-day trip to Lisbon in October on a 1500 EUR budget."></textarea>
  <br>
  <button type="submit" id="submit">Plan my trip</button>
</form>
<div id="answer" hidden></div>
<script>
const form = document.getElementById('form');
const answer = document.getElementById('answer');
const submit = document.getElementById('submit');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const question = document.getElementById('question').value.trim();
  if (!question) return;
  submit.disabled = true;
  answer.hidden = false;
  answer.classList.remove('error');
  answer.textContent = 'Planning your trip…';
  try {
    const resp = await fetch('/query', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({question}),
    });
    const body = await resp.json();
    if (!resp.ok) {
      answer.classList.add('error');
      answer.textContent = body.error || 'Request failed.';
    } else {
      answer.textContent = body.answer;
    }
  } catch (err) {
    answer.classList.add('error');
    answer.textContent = 'Request failed: ' + err;
  } finally {
    submit.disabled = false;
  }
});
</script>
</body>
</html>
`
