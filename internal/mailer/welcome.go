package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type welcomeData struct {
	Name   string
	AppURL string
	Year   int
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<head>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f3f4f6; padding: 20px; }
.container { max-width: 600px; margin: 0 auto; background: white; padding: 40px; border-radius: 12px; }
h1 { color: #111827; font-size: 24px; }
p { color: #4b5563; font-size: 16px; line-height: 1.6; }
.btn { display: inline-block; background-color: #2563eb; color: white !important; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold; }
.footer { margin-top: 30px; font-size: 12px; color: #9ca3af; text-align: center; border-top: 1px solid #e5e7eb; padding-top: 20px; }
</style>
</head>
<body>
<div class="container">
<h1>Welcome to VentureMind.AI 🚀</h1>
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>You've just taken the first step towards building your next big venture. VentureMind is your 24/7 AI Co-Founder that turns rough ideas into actionable business plans in seconds.</p>
<h3>What you can do now:</h3>
<ul>
<li><strong>Generate Startup Packs:</strong> Get instant Pitch Decks, Financial Models, and Strategies.</li>
<li><strong>Design Brand Identity:</strong> Create professional logos and color palettes automatically.</li>
<li><strong>Understand Your Market:</strong> Get insights into your competitors.</li>
</ul>
<a href="{{.AppURL}}" class="btn">Launch App</a>
<br><br>
<p>Execution is everything, but a great plan is the spark. We're here to provide that spark.</p>
<p>Happy Building!</p>
<p><strong>The VentureMind Team</strong></p>
<div class="footer">&copy; {{.Year}} VentureMind.AI</div>
</div>
</body>
</html>
`))

func renderWelcome(data welcomeData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var b bytes.Buffer
	if err := welcomeTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering welcome email: %w", err)
	}
	return b.String(), nil
}
