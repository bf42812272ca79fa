package symgo

// Close releases resources held by the engine, closing the journal if
// one is configured. Close is idempotent and safe on a nil engine; the
// in-memory store stays readable afterwards.
func (sg *Symgo) Close() error {
	if sg == nil {
		return nil
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()

	if sg.journal == nil {
		return nil
	}
	err := sg.journal.Close()
	sg.journal = nil
	return err
}
