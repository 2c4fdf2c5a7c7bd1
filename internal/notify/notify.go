// Package notify emails a summary of a published artifact.
package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/tour-stats/internal/publish"
)

// Mailer sends summaries through SendGrid.
type Mailer struct {
	From string
	send func(*mail.SGMailV3) (int, error)
}

func New(apiKey, from string) *Mailer {
	client := sendgrid.NewSendClient(apiKey)
	return &Mailer{
		From: from,
		send: func(m *mail.SGMailV3) (int, error) {
			resp, err := client.Send(m)
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		},
	}
}

// Send emails a summary of a to the given address.
func (m *Mailer) Send(to string, a publish.Artifact) error {
	subject, plain, body := Summary(a)
	message := mail.NewSingleEmail(
		mail.NewEmail("tour-stats", m.From),
		subject,
		mail.NewEmail(to, to),
		plain,
		body,
	)

	status, err := m.send(message)
	if err != nil {
		return fmt.Errorf("sending to %s: %w", to, err)
	}
	if status/100 != 2 {
		return fmt.Errorf("sending to %s: sendgrid returned status %d", to, status)
	}
	return nil
}

// Summary renders the subject, plain text and HTML bodies for a.
func Summary(a publish.Artifact) (subject, plain, body string) {
	subject = fmt.Sprintf("Tour stats for %s through %s", a.TourName, a.LatestShow)

	var p strings.Builder
	fmt.Fprintf(&p, "%s, updated %s\n\nLongest songs:\n", a.TourName, a.LastUpdated)
	for i, s := range a.LongestSongs {
		fmt.Fprintf(&p, "%d. %s (%s) - %s, %s\n", i+1, s.SongName, FormatDuration(s.DurationSeconds), s.ShowDate, s.Venue)
	}
	if len(a.LongestSongs) == 0 {
		p.WriteString("none\n")
	}
	p.WriteString("\nRarest songs:\n")
	for i, s := range a.RarestSongs {
		fmt.Fprintf(&p, "%d. %s (gap %d) - %s, %s\n", i+1, s.SongName, s.Gap, s.TourDate, s.TourVenue)
	}
	if len(a.RarestSongs) == 0 {
		p.WriteString("none\n")
	}

	b := `
<html>
  <body>
`
	b += fmt.Sprintf("<h2>%s</h2>\n<p>Updated %s</p>\n", html.EscapeString(a.TourName), html.EscapeString(a.LastUpdated))
	b += "<h3>Longest songs</h3>\n<ol>\n"
	for _, s := range a.LongestSongs {
		b += fmt.Sprintf("<li>%s (%s) - %s, %s</li>\n",
			html.EscapeString(s.SongName), FormatDuration(s.DurationSeconds), s.ShowDate, html.EscapeString(s.Venue))
	}
	b += "</ol>\n<h3>Rarest songs</h3>\n<ol>\n"
	for _, s := range a.RarestSongs {
		b += fmt.Sprintf("<li>%s (gap %d) - %s, %s</li>\n",
			html.EscapeString(s.SongName), s.Gap, s.TourDate, html.EscapeString(s.TourVenue))
	}
	b += `</ol>
  </body>
</html>
`
	return subject, p.String(), b
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
