package journal

import "errors"

var (
	// ErrInvalidPosition indicates a position outside the table snapshot.
	ErrInvalidPosition = errors.New("position out of range")
	// ErrEntryNotFound is returned when no row carries the referenced id.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAmbiguousRef is returned when an id prefix matches several rows.
	ErrAmbiguousRef = errors.New("id prefix matches more than one entry")
	// ErrContentRequired rejects entries without content.
	ErrContentRequired = errors.New("content is required")
	// ErrUnknownEquipment rejects equipment labels outside the configured set.
	ErrUnknownEquipment = errors.New("unknown equipment")
	// ErrEmptyPatch rejects edits that change nothing.
	ErrEmptyPatch = errors.New("nothing to update")
)
