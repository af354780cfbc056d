package journal

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Table is an in-memory snapshot of a sheet. Positions are 0-based and only
// meaningful for the snapshot they were read from. Token is the store's
// change token at load time and travels with every derived table so Persist
// can detect concurrent writers.
type Table struct {
	Entries []Entry
	Token   string
	Order   Order
}

// NewTable returns an empty table that has never been persisted.
func NewTable(order Order) Table {
	return Table{Order: order}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Entries)
}

func (t Table) clone() Table {
	t.Entries = slices.Clone(t.Entries)
	return t
}

// Append returns a new table with entry added. Entries without an id get one.
// Under OrderDateDesc the result is re-sorted newest first; rows sharing a
// date keep their relative order.
func (t Table) Append(entry Entry) Table {
	entry = normalizeEntry(entry)
	if entry.ID == "" {
		entry.ID = NewID()
	}

	next := t.clone()
	next.Entries = append(next.Entries, entry)
	if next.Order == OrderDateDesc {
		slices.SortStableFunc(next.Entries, func(a, b Entry) int {
			return strings.Compare(b.Date, a.Date)
		})
	}
	return next
}

// Update returns a new table with patch applied to the row at position. Rows
// are never re-sorted by an update, so position keeps naming the same row.
func (t Table) Update(position int, patch Patch) (Table, error) {
	if position < 0 || position >= len(t.Entries) {
		return t, fmt.Errorf("update %d: %w", position, ErrInvalidPosition)
	}
	next := t.clone()
	next.Entries[position] = patch.Apply(next.Entries[position])
	return next, nil
}

// Delete returns a new table without the row at position.
func (t Table) Delete(position int) (Table, error) {
	if position < 0 || position >= len(t.Entries) {
		return t, fmt.Errorf("delete %d: %w", position, ErrInvalidPosition)
	}
	next := t.clone()
	next.Entries = slices.Delete(next.Entries, position, position+1)
	return next, nil
}

// UpdateID applies patch to the row carrying id.
func (t Table) UpdateID(id string, patch Patch) (Table, error) {
	position, err := t.Find(IDRef(id))
	if err != nil {
		return t, err
	}
	return t.Update(position, patch)
}

// DeleteID removes the row carrying id.
func (t Table) DeleteID(id string) (Table, error) {
	position, err := t.Find(IDRef(id))
	if err != nil {
		return t, err
	}
	return t.Delete(position)
}

// Ref names a row either by stable id (or unique id prefix) or by position.
type Ref struct {
	ID       string
	Position int
}

// IDRef references a row by id or id prefix.
func IDRef(id string) Ref {
	return Ref{ID: strings.TrimSpace(id)}
}

// PositionRef references a row by 0-based position.
func PositionRef(position int) Ref {
	return Ref{Position: position}
}

// ParseRef reads user input: all digits is a 1-based position, anything else
// an id or id prefix.
func ParseRef(input string) (Ref, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Ref{}, fmt.Errorf("empty reference: %w", ErrEntryNotFound)
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 {
			return Ref{}, fmt.Errorf("position %d: %w", n, ErrInvalidPosition)
		}
		return PositionRef(n - 1), nil
	}
	return IDRef(input), nil
}

func (r Ref) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Position + 1)
}

// Find resolves ref to a position in this snapshot. An exact id match wins
// over prefix matches.
func (t Table) Find(ref Ref) (int, error) {
	if ref.ID == "" {
		if ref.Position < 0 || ref.Position >= len(t.Entries) {
			return -1, fmt.Errorf("position %d: %w", ref.Position+1, ErrInvalidPosition)
		}
		return ref.Position, nil
	}

	match := -1
	for i, entry := range t.Entries {
		if entry.ID == ref.ID {
			return i, nil
		}
		if strings.HasPrefix(entry.ID, ref.ID) {
			if match >= 0 {
				return -1, fmt.Errorf("%q: %w", ref.ID, ErrAmbiguousRef)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%q: %w", ref.ID, ErrEntryNotFound)
	}
	return match, nil
}

// FromRecords builds a table from raw sheet records whose first row is the
// header. Columns are matched by name in any order; missing columns read as
// empty strings, unknown columns are dropped, blank rows are skipped.
func FromRecords(records [][]string, token string, order Order) Table {
	t := Table{Token: token, Order: order}
	if len(records) == 0 {
		return t
	}

	columns := mapColumns(records[0])
	var entries []Entry
	explicit := make(map[string]bool)
	for _, record := range records[1:] {
		if blankRecord(record) {
			continue
		}

		fields := make([]string, len(Header))
		for i, cell := range record {
			if i >= len(columns) || columns[i] < 0 {
				continue
			}
			fields[columns[i]] = cell
		}
		entry := normalizeEntry(entryFromFields(fields))
		if entry.ID != "" {
			explicit[entry.ID] = true
		}
		entries = append(entries, entry)
	}

	// Stored ids win; rows without one, or repeating an earlier row's id,
	// get a derived id that collides with no stored or assigned id.
	assigned := make(map[string]bool)
	occurrences := make(map[string]int)
	for _, entry := range entries {
		if entry.ID == "" || assigned[entry.ID] {
			key := strings.Join(entry.fields()[1:], "\x1f")
			for {
				entry.ID = derivedID(entry, occurrences[key])
				occurrences[key]++
				if !explicit[entry.ID] && !assigned[entry.ID] {
					break
				}
			}
		}
		assigned[entry.ID] = true
		t.Entries = append(t.Entries, entry)
	}
	return t
}

// Records serializes the table with the fixed header.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Entries)+1)
	records = append(records, slices.Clone(Header))
	for _, entry := range t.Entries {
		records = append(records, entry.fields())
	}
	return records
}

var columnAliases = map[string]string{
	"날짜":   ColumnDate,
	"장비":   ColumnEquipment,
	"작성자":  ColumnAuthor,
	"업무내용": ColumnContent,
	"내용":   ColumnContent,
	"비고":   ColumnNote,
	"첨부":   ColumnAttachment,
	"첨부파일": ColumnAttachment,
}

func canonicalColumn(name string) string {
	name = cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
	if alias, ok := columnAliases[name]; ok {
		return alias
	}
	return name
}

// mapColumns returns, per header cell, the index into Header or -1.
func mapColumns(header []string) []int {
	columns := make([]int, len(header))
	taken := make(map[int]bool)
	for i, name := range header {
		columns[i] = -1
		idx := slices.Index(Header, canonicalColumn(name))
		if idx >= 0 && !taken[idx] {
			columns[i] = idx
			taken[idx] = true
		}
	}
	return columns
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalizeEntry(e Entry) Entry {
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return norm.NFC.String(s)
	}
	e.ID = strings.TrimSpace(e.ID)
	e.Date = strings.TrimSpace(clean(e.Date))
	e.Equipment = strings.TrimSpace(clean(e.Equipment))
	e.Author = strings.TrimSpace(clean(e.Author))
	e.Content = clean(e.Content)
	e.Note = clean(e.Note)
	e.Attachment = strings.TrimSpace(clean(e.Attachment))
	return e
}
