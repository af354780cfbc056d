package journal

import (
	"fmt"
	"strings"
)

// Entry is one row of the work journal.
type Entry struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Equipment  string `json:"equipment,omitempty"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	Note       string `json:"note"`
	Attachment string `json:"attachment,omitempty"`
}

// Column names of the fixed sheet header.
const (
	ColumnID         = "id"
	ColumnDate       = "date"
	ColumnEquipment  = "equipment"
	ColumnAuthor     = "author"
	ColumnContent    = "content"
	ColumnNote       = "note"
	ColumnAttachment = "attachment"
)

// Header is the column set every persisted sheet starts with.
var Header = []string{
	ColumnID,
	ColumnDate,
	ColumnEquipment,
	ColumnAuthor,
	ColumnContent,
	ColumnNote,
	ColumnAttachment,
}

func (e Entry) fields() []string {
	return []string{e.ID, e.Date, e.Equipment, e.Author, e.Content, e.Note, e.Attachment}
}

func entryFromFields(f []string) Entry {
	return Entry{
		ID:         f[0],
		Date:       f[1],
		Equipment:  f[2],
		Author:     f[3],
		Content:    f[4],
		Note:       f[5],
		Attachment: f[6],
	}
}

// Order decides where Append places new entries.
type Order uint8

const (
	// OrderInsertion keeps entries in the order they were added.
	OrderInsertion Order = iota
	// OrderDateDesc re-sorts by date, newest first, after each append.
	OrderDateDesc
)

// ParseOrder maps the config spelling onto an Order.
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "insertion":
		return OrderInsertion, nil
	case "date-desc":
		return OrderDateDesc, nil
	default:
		return OrderInsertion, fmt.Errorf("invalid order %q (expected insertion|date-desc)", value)
	}
}

func (o Order) String() string {
	if o == OrderDateDesc {
		return "date-desc"
	}
	return "insertion"
}

// Patch carries the fields an update overwrites; nil fields are left alone.
type Patch struct {
	Date       *string
	Equipment  *string
	Author     *string
	Content    *string
	Note       *string
	Attachment *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Date == nil && p.Equipment == nil && p.Author == nil &&
		p.Content == nil && p.Note == nil && p.Attachment == nil
}

// Apply returns e with the patched fields overwritten.
func (p Patch) Apply(e Entry) Entry {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Date, p.Date)
	set(&e.Equipment, p.Equipment)
	set(&e.Author, p.Author)
	set(&e.Content, p.Content)
	set(&e.Note, p.Note)
	set(&e.Attachment, p.Attachment)
	return normalizeEntry(e)
}
