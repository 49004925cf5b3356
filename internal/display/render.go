package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = sprig.TxtFuncMap()

// Expand renders a template string against data. Templates get the full
// sprig function map plus the color helpers below.
func Expand(tmplStr string, data any) (string, error) {
	funcs := template.FuncMap{}
	for k, v := range templateFuncs {
		funcs[k] = v
	}
	funcs["colorize"] = Colorize
	funcs["wrap"] = Wrap
	funcs["underlined"] = Underlined
	funcs["capitalize"] = Capitalize

	tmpl, err := template.New("").Funcs(funcs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// MustExpand is Expand for templates fixed at compile time. It panics on
// template errors, which are programming bugs.
func MustExpand(tmplStr string, data any) string {
	out, err := Expand(tmplStr, data)
	if err != nil {
		panic(err)
	}
	return out
}

const bannerTemplate = `{{ colorize .Title "\x1b[36m\x1b[1m" }}

{{ colorize .Tagline "\x1b[32m" }}
{{ colorize .Rule "\x1b[2m" }}
`

// Banner renders the welcome screen shown on connect.
func Banner() string {
	return MustExpand(bannerTemplate, map[string]string{
		"Title": "╦ ╦┌─┐┬ ┬┌─┐┌┬┐┌─┐┌┐┌┌─┐\n" +
			"║║║├─┤└┬┘└─┐ │ │ │││├┤\n" +
			"╚╩╝┴ ┴ ┴ └─┘ ┴ └─┘┘└┘└─┘",
		"Tagline": "A multi-user dungeon of waystones, wit, and ruinous curiosity",
		"Rule":    "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━",
	})
}

const roomTemplate = `
{{ underlined (colorize .Name "\x1b[1m") }}
{{ wrap .Description }}
{{- if .NPCs }}
{{ range .NPCs }}{{ colorize (printf "%s is here." (capitalize .)) "\x1b[36m" }}
{{ end }}{{- end }}
{{- if .Players }}
{{ range .Players }}{{ colorize (printf "%s is standing here." .) "\x1b[32m" }}
{{ end }}{{- end }}
{{ if .Exits }}{{ colorize (printf "[Exits: %s]" (join ", " .Exits)) "\x1b[2m" }}{{ else }}{{ colorize "[Exits: none]" "\x1b[2m" }}{{ end }}`

// RoomView is the data rendered by RenderRoom.
type RoomView struct {
	Name        string
	Description string
	Exits       []string
	NPCs        []string
	Players     []string
}

// RenderRoom formats a room description for delivery to a player.
func RenderRoom(v RoomView) string {
	return MustExpand(roomTemplate, v)
}
