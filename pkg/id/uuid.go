package id

import (
	"github.com/google/uuid"
)

/**
 * @file: uuid.go
 * @description: request identifiers
 */

const maxRequestIDLen = 128

// RequestID keeps a caller supplied id when it is short and printable and
// mints a uuid otherwise, so a hostile header never reaches the logs verbatim.
func RequestID(incoming string) string {
	if incoming == "" || len(incoming) > maxRequestIDLen {
		return uuid.NewString()
	}
	for i := 0; i < len(incoming); i++ {
		if ch := incoming[i]; ch <= ' ' || ch > '~' {
			return uuid.NewString()
		}
	}
	return incoming
}
