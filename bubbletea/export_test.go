package bubbletea

// SetRunning puts the model into the running state with the given cancel
// function.
func SetRunning(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}

// Focus returns the index of the focused collapsible block.
func Focus(m Model) int { return m.focus }
