package backend

// MemorySink records applied commands for inspection in tests.
type MemorySink struct {
	Commands []Command
	Flushes  int
	ApplyErr error
	FlushErr error
}

func (m *MemorySink) Apply(cmd Command) error {
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	m.Commands = append(m.Commands, cmd)
	return nil
}

func (m *MemorySink) Flush() error {
	if m.FlushErr != nil {
		return m.FlushErr
	}
	m.Flushes++
	return nil
}

// Reset clears recorded state between test frames.
func (m *MemorySink) Reset() {
	m.Commands = m.Commands[:0]
	m.Flushes = 0
}

// OfKind returns recorded commands matching kind, in order.
func (m *MemorySink) OfKind(kind CommandKind) []Command {
	var out []Command
	for _, c := range m.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
