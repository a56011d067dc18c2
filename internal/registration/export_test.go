package registration

// SetPassIDGenerator replaces the pass ID source of s.
func (s *Service) SetPassIDGenerator(gen func() (string, error)) {
	s.newPassID = gen
}
