package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndSearch(t *testing.T) {
	db := openTestDB(t)

	id, err := db.Record(Operation{
		Type:       OpTrash,
		Target:     "Local",
		SourcePath: "/home/u/AppData/Local/OldApp",
		DestPath:   "/home/u/.trash/OldApp",
		SizeBytes:  4096,
		Reversible: true,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	db.Record(Operation{Type: OpDelete, Target: "Roaming", SourcePath: "/home/u/AppData/Roaming/Other"})

	ops, err := db.Search("OldApp")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ops))
	}

	op := ops[0]
	if op.Type != OpTrash || op.Target != "Local" || op.SizeBytes != 4096 || !op.Reversible {
		t.Errorf("unexpected operation: %+v", op)
	}
	if op.DestPath != "/home/u/.trash/OldApp" {
		t.Errorf("unexpected dest: %s", op.DestPath)
	}
	if time.Since(op.Timestamp) > time.Minute {
		t.Errorf("timestamp not round-tripped: %v", op.Timestamp)
	}
}

func TestSearchMatchesLiterally(t *testing.T) {
	db := openTestDB(t)

	for _, src := range []string{"/r/a_b", "/r/axb", "/r/50%off", "/r/500ff", `/r/back\slash`} {
		if _, err := db.Record(Operation{Type: OpDelete, SourcePath: src}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  string
	}{
		{"a_b", "/r/a_b"},
		{"50%", "/r/50%off"},
		{`k\s`, `/r/back\slash`},
	}
	for _, tt := range tests {
		ops, err := db.Search(tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		if len(ops) != 1 || ops[0].SourcePath != tt.want {
			t.Errorf("search %q: expected only %s, got %+v", tt.query, tt.want, ops)
		}
	}
}

func TestSince(t *testing.T) {
	db := openTestDB(t)

	old := time.Now().Add(-48 * time.Hour)
	db.Record(Operation{Type: OpDelete, SourcePath: "/old", Timestamp: old})
	db.Record(Operation{Type: OpDelete, SourcePath: "/new"})

	ops, err := db.Since(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(ops) != 1 || ops[0].SourcePath != "/new" {
		t.Errorf("expected only the recent operation, got %+v", ops)
	}

	all, err := db.Since(old.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].SourcePath != "/new" {
		t.Errorf("expected both operations newest first, got %+v", all)
	}
}
