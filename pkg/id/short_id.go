package id

import (
	"github.com/rs/xid"
	"github.com/teris-io/shortid"
)

// ShortID returns a compact file-name friendly id. An xid stands in when the
// shortid generator fails.
func ShortID() string {
	id, err := shortid.Generate()
	if err != nil || id == "" {
		return xid.New().String()
	}
	return id
}
