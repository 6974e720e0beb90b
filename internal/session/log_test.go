package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadLog_MissingFile(t *testing.T) {
	records, err := readLog(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("missing log should not error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestReadLog_SkipsBOMAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	content := "\ufeff" + `{"id":1,"name":"А","enterprise":10,"manager":111}` + "\n\n" +
		`{"id":2,"name":"Б","enterprise":20,"manager":222}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := readLog(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != 1 || records[0].Name != "А" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Manager != 222 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestReadLog_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	if err := os.WriteFile(path, []byte("{broken\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readLog(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAppendRecord_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	recs := []Record{
		{ID: 1, Name: "Перший", Enterprise: 10, Manager: 111},
		{ID: 2, Name: "Другий", Enterprise: 20, Manager: 222},
	}
	for _, rec := range recs {
		if err := appendRecord(path, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := readLog(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("records = %d, want %d", len(got), len(recs))
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], recs[i])
		}
	}
}
