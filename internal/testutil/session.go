package testutil

// FixedSession reports the same session id for every runtime it is given
// to. Runtimes built with it record byte-identical logs for the same calls.
//
// Thread-safety: FixedSession is stateless and safe for concurrent use.
type FixedSession struct {
	id string
}

// NewFixedSession creates a fixed session generator. An empty id becomes
// "test-session".
func NewFixedSession(id string) *FixedSession {
	if id == "" {
		id = "test-session"
	}
	return &FixedSession{id: id}
}

// Generate returns the fixed session id.
//
// Implements runtime.SessionGenerator.
func (s *FixedSession) Generate() string {
	return s.id
}
