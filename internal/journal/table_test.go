package journal

import (
	"errors"
	"testing"
)

func threeRows() Table {
	return Table{Entries: []Entry{
		{ID: "aaaa-1", Date: "2024-01-01", Author: "A", Content: "first"},
		{ID: "bbbb-2", Date: "2024-01-03", Author: "B", Content: "second"},
		{ID: "bbbc-3", Date: "2024-01-02", Author: "C", Content: "third"},
	}}
}

func TestAppendInsertionOrderAddsAtEnd(t *testing.T) {
	base := threeRows()
	next := base.Append(Entry{Date: "2023-12-31", Author: "D", Content: "fourth"})

	if base.Len() != 3 {
		t.Fatalf("Append mutated the source table: len = %d", base.Len())
	}
	if next.Len() != 4 {
		t.Fatalf("next.Len() = %d, want 4", next.Len())
	}
	last := next.Entries[3]
	if last.Content != "fourth" {
		t.Fatalf("last.Content = %q, want fourth", last.Content)
	}
	if last.ID == "" {
		t.Fatalf("appended entry has no id")
	}
}

func TestAppendDateDescendingSorts(t *testing.T) {
	base := threeRows()
	base.Order = OrderDateDesc

	next := base.Append(Entry{Date: "2024-01-02", Author: "D", Content: "same day"})

	want := []string{"second", "third", "same day", "first"}
	for i, content := range want {
		if next.Entries[i].Content != content {
			t.Fatalf("Entries[%d].Content = %q, want %q (got %#v)", i, next.Entries[i].Content, content, next.Entries)
		}
	}
}

func TestUpdateOverwritesSelectedFields(t *testing.T) {
	base := threeRows()
	content := "second, revised"
	note := "checked"

	next, err := base.Update(1, Patch{Content: &content, Note: &note})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := next.Entries[1]
	if got.Content != content || got.Note != note {
		t.Fatalf("updated entry = %#v", got)
	}
	if got.Author != "B" || got.ID != "bbbb-2" {
		t.Fatalf("untouched fields changed: %#v", got)
	}
	if base.Entries[1].Content != "second" {
		t.Fatalf("Update mutated the source table")
	}
}

func TestUpdateThenDeleteEqualsDelete(t *testing.T) {
	base := threeRows()
	content := "changed"

	for p := 0; p < base.Len(); p++ {
		updated, err := base.Update(p, Patch{Content: &content})
		if err != nil {
			t.Fatalf("Update(%d): %v", p, err)
		}
		viaUpdate, err := updated.Delete(p)
		if err != nil {
			t.Fatalf("Delete after update(%d): %v", p, err)
		}
		direct, err := base.Delete(p)
		if err != nil {
			t.Fatalf("Delete(%d): %v", p, err)
		}
		if len(viaUpdate.Entries) != len(direct.Entries) {
			t.Fatalf("position %d: lengths differ %d vs %d", p, len(viaUpdate.Entries), len(direct.Entries))
		}
		for i := range direct.Entries {
			if viaUpdate.Entries[i] != direct.Entries[i] {
				t.Fatalf("position %d: row %d differs: %#v vs %#v", p, i, viaUpdate.Entries[i], direct.Entries[i])
			}
		}
	}
}

func TestDeleteMiddleReindexes(t *testing.T) {
	next, err := threeRows().Delete(1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if next.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", next.Len())
	}
	if next.Entries[0].Content != "first" || next.Entries[1].Content != "third" {
		t.Fatalf("entries = %#v", next.Entries)
	}
}

func TestPositionOutOfRange(t *testing.T) {
	base := threeRows()
	if _, err := base.Delete(3); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("Delete(3) error = %v, want ErrInvalidPosition", err)
	}
	if _, err := base.Update(-1, Patch{}); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("Update(-1) error = %v, want ErrInvalidPosition", err)
	}
}

func TestFindByIDAndPrefix(t *testing.T) {
	base := threeRows()

	if p, err := base.Find(IDRef("bbbc-3")); err != nil || p != 2 {
		t.Fatalf("Find exact = %d, %v", p, err)
	}
	if p, err := base.Find(IDRef("aaaa")); err != nil || p != 0 {
		t.Fatalf("Find prefix = %d, %v", p, err)
	}
	if _, err := base.Find(IDRef("bbb")); !errors.Is(err, ErrAmbiguousRef) {
		t.Fatalf("Find ambiguous error = %v, want ErrAmbiguousRef", err)
	}
	if _, err := base.Find(IDRef("zzz")); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Find missing error = %v, want ErrEntryNotFound", err)
	}
}

func TestDeleteIDSurvivesReorder(t *testing.T) {
	base := threeRows()
	base.Order = OrderDateDesc
	grown := base.Append(Entry{Date: "2025-01-01", Content: "newest"})

	next, err := grown.DeleteID("bbbb-2")
	if err != nil {
		t.Fatalf("DeleteID: %v", err)
	}
	for _, e := range next.Entries {
		if e.ID == "bbbb-2" {
			t.Fatalf("entry bbbb-2 still present: %#v", next.Entries)
		}
	}
	if next.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", next.Len())
	}
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("2")
	if err != nil || ref.ID != "" || ref.Position != 1 {
		t.Fatalf("ParseRef(2) = %#v, %v", ref, err)
	}
	ref, err = ParseRef("0190f3a2-")
	if err != nil || ref.ID != "0190f3a2-" {
		t.Fatalf("ParseRef(id) = %#v, %v", ref, err)
	}
	if _, err := ParseRef("0"); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("ParseRef(0) error = %v, want ErrInvalidPosition", err)
	}
}

func TestFromRecordsNormalizesColumns(t *testing.T) {
	records := [][]string{
		{"Content", " DATE ", "author", "extra"},
		{"did X", "2024-01-01", "A", "dropped"},
		{"", "", "", ""},
		{"short row", "2024-01-02"},
	}

	table := FromRecords(records, "tok", OrderInsertion)
	if table.Token != "tok" {
		t.Fatalf("Token = %q, want tok", table.Token)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (blank row skipped)", table.Len())
	}
	first := table.Entries[0]
	if first.Date != "2024-01-01" || first.Author != "A" || first.Content != "did X" {
		t.Fatalf("first = %#v", first)
	}
	if first.Note != "" || first.Equipment != "" || first.Attachment != "" {
		t.Fatalf("missing columns should be empty: %#v", first)
	}
	if table.Entries[1].Author != "" {
		t.Fatalf("short row author = %q, want empty", table.Entries[1].Author)
	}

	header := table.Records()[0]
	if len(header) != len(Header) || header[5] != ColumnNote {
		t.Fatalf("Records header = %#v", header)
	}
}

func TestFromRecordsAcceptsKoreanHeaders(t *testing.T) {
	records := [][]string{
		{"날짜", "작성자", "업무내용", "비고"},
		{"2024-01-01", "민지", "설비 점검", "이상 없음"},
	}

	table := FromRecords(records, "", OrderInsertion)
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	got := table.Entries[0]
	if got.Author != "민지" || got.Content != "설비 점검" || got.Note != "이상 없음" {
		t.Fatalf("entry = %#v", got)
	}
}

func TestFromRecordsDerivesStableIDs(t *testing.T) {
	records := [][]string{
		{"date", "author", "content"},
		{"2024-01-01", "A", "same"},
		{"2024-01-01", "A", "same"},
	}

	first := FromRecords(records, "", OrderInsertion)
	second := FromRecords(records, "", OrderInsertion)

	if first.Entries[0].ID == "" || first.Entries[0].ID == first.Entries[1].ID {
		t.Fatalf("duplicate rows should get distinct ids: %#v", first.Entries)
	}
	for i := range first.Entries {
		if first.Entries[i].ID != second.Entries[i].ID {
			t.Fatalf("row %d id changed between loads: %q vs %q", i, first.Entries[i].ID, second.Entries[i].ID)
		}
	}
}

func TestFromRecordsRepairsDuplicateIDs(t *testing.T) {
	records := [][]string{
		{"id", "content"},
		{"dup", "one"},
		{"dup", "two"},
	}

	table := FromRecords(records, "", OrderInsertion)
	if table.Entries[0].ID != "dup" {
		t.Fatalf("first id = %q, want dup", table.Entries[0].ID)
	}
	if table.Entries[1].ID == "dup" {
		t.Fatalf("second row kept duplicate id")
	}
}

func TestFromRecordsDerivedIDsAvoidStoredIDs(t *testing.T) {
	legacy := [][]string{
		{"date", "author", "content"},
		{"2024-01-01", "A", "same"},
	}
	persisted := FromRecords(legacy, "", OrderInsertion).Records()
	storedID := persisted[1][0]

	// An id-less copy of the persisted row, placed before and after it.
	copyRow := append([]string{""}, persisted[1][1:]...)
	layouts := [][][]string{
		{persisted[0], persisted[1], copyRow},
		{persisted[0], copyRow, persisted[1]},
	}
	for i, records := range layouts {
		table := FromRecords(records, "", OrderInsertion)
		if table.Len() != 2 {
			t.Fatalf("layout %d: len = %d, want 2", i, table.Len())
		}
		if table.Entries[0].ID == table.Entries[1].ID {
			t.Fatalf("layout %d: duplicate id %q", i, table.Entries[0].ID)
		}
		if _, err := table.Find(IDRef(storedID)); err != nil {
			t.Fatalf("layout %d: stored id lost: %v", i, err)
		}
	}
}

func TestFromRecordsComposesHangul(t *testing.T) {
	records := [][]string{
		{"content"},
		{"\u1112\u1161\u11ab"},
	}
	table := FromRecords(records, "", OrderInsertion)
	if table.Entries[0].Content != "\ud55c" {
		t.Fatalf("Content = %q, want NFC form", table.Entries[0].Content)
	}
}

func TestSearchMatchesAnyFieldIgnoringCase(t *testing.T) {
	base := threeRows()
	base.Entries[2].Note = "Follow UP with vendor"

	matches := base.Search("follow up")
	if len(matches) != 1 || matches[0].Position != 2 {
		t.Fatalf("Search = %#v", matches)
	}
	if got := base.Search("  "); len(got) != 3 {
		t.Fatalf("blank search returned %d rows, want 3", len(got))
	}
	if got := base.Search("2024-01-0"); len(got) != 3 {
		t.Fatalf("date search returned %d rows, want 3", len(got))
	}
}
