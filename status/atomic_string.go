package status

import "sync/atomic"

// maxStringLen bounds string metrics so the status table stays one line each
const maxStringLen = 32

// AtomicString holds a short string value; the zero value reads as ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncating to maxStringLen bytes
func (s *AtomicString) Store(val string) {
	if len(val) > maxStringLen {
		val = val[:maxStringLen]
	}
	s.ptr.Store(&val)
}

// Load returns the current value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
