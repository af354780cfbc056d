package journal

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestExportWritesBOMPrefixedCSV(t *testing.T) {
	table := Table{Entries: []Entry{
		{ID: "e1", Date: "2024-01-01", Author: "A", Content: "did X"},
		{ID: "e2", Date: "2024-01-02", Equipment: "CNC-1", Author: "민지", Content: "line1\nline2", Note: "a, b", Attachment: "/srv/files/report.pdf"},
	}}

	var buf bytes.Buffer
	if err := Export(&buf, table); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("export missing BOM: % x", buf.Bytes()[:3])
	}

	g := goldie.New(t)
	g.Assert(t, "export", buf.Bytes())
}

func TestExportEmptyTableHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, NewTable(OrderInsertion)); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "\xEF\xBB\xBFid,date,equipment,author,content,note,attachment\n"
	if buf.String() != want {
		t.Fatalf("Export = %q, want %q", buf.String(), want)
	}
}
