package panel

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var pageTmpl = template.Must(template.New("panel").Parse(`<html>
<body>
  <h1>{{.Title}}</h1>
  {{- if .Class}}
  <p>{{.Class}}{{if .Document}} &middot; {{.Document}}{{end}}</p>
  {{- end}}
  <ul>
  {{- range .Methods}}
    <li>{{.}}</li>
  {{- end}}
  </ul>
</body>
</html>
`))

// HTMLRenderer renders the panel as an HTML page. Method names are escaped.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(c Content) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// TerminalRenderer renders the panel as a bordered box for a terminal.
type TerminalRenderer struct {
	// Plain disables styling, for non-TTY output.
	Plain bool
}

func (r TerminalRenderer) Render(c Content) (string, error) {
	if r.Plain {
		var b strings.Builder
		b.WriteString(c.Title)
		b.WriteString("\n")
		for _, m := range c.Methods {
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	lines := []string{titleStyle.Render(c.Title)}
	if c.Class != "" {
		lines = append(lines, metaStyle.Render(c.Class))
	}
	if len(c.Methods) == 0 {
		lines = append(lines, metaStyle.Render("(no methods found)"))
	}
	for _, m := range c.Methods {
		lines = append(lines, bulletStyle.Render("•")+" "+m)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n", nil
}
