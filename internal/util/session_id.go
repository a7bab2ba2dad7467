package util

// IsUUID checks whether s has the 8-4-4-4-12 hex shape of a UUID.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if i == 8 || i == 13 || i == 18 || i == 23 {
			if c != '-' {
				return false
			}
			continue
		}
		if !isHexDigit(c) {
			return false
		}
	}

	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// ResolveSessionID returns the first candidate that is a valid UUID.
// Candidates are ordered by precedence: payload-embedded id first, then the
// session context captured when a payload buffer was opened, then the id
// derived from the log file name. Returns false when no candidate is usable.
func ResolveSessionID(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if IsUUID(c) {
			return c, true
		}
	}
	return "", false
}
