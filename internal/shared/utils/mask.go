package utils

// MaskToken masks a secret token for safe logging.
// Example: "dGhpcyBpcyBh..." -> "dGhp***"
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "***"
}
