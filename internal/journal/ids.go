package journal

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// legacyNamespace seeds name-based ids for rows written before ids existed.
var legacyNamespace = uuid.MustParse("6f1c1f6e-3d4b-4a43-9a53-5b0f4c2a9d11")

// NewID returns a time-ordered identifier for a new entry.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// derivedID gives a row without an id the same identifier on every load, as
// long as its content and its rank among identical rows do not change.
func derivedID(e Entry, occurrence int) string {
	f := e.fields()[1:]
	name := strings.Join(f, "\x1f") + "\x1f" + strconv.Itoa(occurrence)
	return uuid.NewSHA1(legacyNamespace, []byte(name)).String()
}
