package test

// KeyVerifierStub implements middleware.KeyVerifier.
type KeyVerifierStub struct {
	Err  error
	Keys []string
}

func (s *KeyVerifierStub) Verify(key string) error {
	s.Keys = append(s.Keys, key)
	return s.Err
}
