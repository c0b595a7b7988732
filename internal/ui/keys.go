package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(recording bool) string {
	s := "v view  a dial fill  n norm  o colors  c clear"
	if recording {
		s += "  r rec start/stop  p pause"
	} else {
		s += "  space pause  ←/→ seek  drag to scrub"
	}
	s += "  q quit"
	return s
}
