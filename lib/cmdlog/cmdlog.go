// Package cmdlog pretty-prints instrument traffic while poking at a new
// device from a quick main().
package cmdlog

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/physlab/labkit"
)

func isAscii(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	RespStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// PrettyFuncs returns query/cmd helpers that log what they send and what
// came back, with binary responses hex-dumped instead of mangled.
func PrettyFuncs(in *labkit.Instrument) (
	query func(string) string,
	cmd func(string),
) {
	query = func(q string) string {
		s, err := in.Query(q)
		if err != nil {
			log.Printf("query %q: error %s", CmdStyle.Render(q), err)
			return s
		}
		a := strings.TrimSuffix(s, "\n")
		q = CmdStyle.Render(q)
		switch {
		case len(a) == 0:
			log.Print(RespStyle.Render("<no response>"))
		case isAscii(a):
			log.Printf("%s: [%d] %q", q, len(a), a)
		case len(a) < 32:
			log.Printf("%s: [%d] %q (% 2x)", q, len(a), a, []byte(a))
		default:
			log.Printf("%s: [%d] % 2x", q, len(a), []byte(a))
		}
		return s
	}

	cmd = func(c string) {
		if err := in.Command(c); err != nil {
			log.Printf("cmd %s: error %s", CmdStyle.Render(c), err)
		} else {
			log.Printf("%s()", CmdStyle.Render(c))
		}
	}
	return query, cmd
}
