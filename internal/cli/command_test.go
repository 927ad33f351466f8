package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahulvramesh/appdata-cleaner/internal/history"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/utils"
)

type fixture struct {
	dir      string
	roaming  string
	local    string
	locallow string
	config   string
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		roaming:  filepath.Join(dir, "Roaming"),
		local:    filepath.Join(dir, "Local"),
		locallow: filepath.Join(dir, "LocalLow"),
		config:   filepath.Join(dir, "config.yaml"),
	}

	writeFile(t, filepath.Join(f.roaming, "A", "one.dat"), 100)
	writeFile(t, filepath.Join(f.roaming, "A", "nested", "two.dat"), 200)
	if err := os.MkdirAll(filepath.Join(f.roaming, "B"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(f.roaming, "C", "three.dat"), 100)
	writeFile(t, filepath.Join(f.local, "Cache", "blob"), 50)
	if err := os.MkdirAll(f.locallow, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`roots:
  roaming: '%s'
  local: '%s'
  locallow: '%s'
delete:
  trash_dir: '%s'
history:
  path: '%s'
log:
  level: error
`, f.roaming, f.local, f.locallow, filepath.Join(dir, "trash"), filepath.Join(dir, "history.db"))
	if err := os.WriteFile(f.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

// run executes the CLI with args plus --config and returns stdout
func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := New("test").Command()
	cmd.SetArgs(append(args, "--config", f.config))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), err
}

func decodeReports(t *testing.T, out string) []Report {
	t.Helper()
	var reports []Report
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r Report
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decoding %q: %v", sc.Text(), err)
		}
		reports = append(reports, r)
	}
	return reports
}

func TestScanJSON(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "roaming", "--json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	reports := decodeReports(t, out)
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.Label != "Roaming" || !r.Outcome.RootFound || r.Outcome.Cancelled {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.Outcome.Entries != 3 || len(r.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d/%d", r.Outcome.Entries, len(r.Entries))
	}

	want := []struct {
		name string
		size uint64
	}{{"A", 300}, {"C", 100}, {"B", 0}}
	for i, w := range want {
		if r.Entries[i].Name != w.name || r.Entries[i].SizeBytes != w.size {
			t.Errorf("position %d: expected %s/%d, got %s/%d",
				i, w.name, w.size, r.Entries[i].Name, r.Entries[i].SizeBytes)
		}
	}
}

func TestScanDefaultsToRoaming(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "--json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	reports := decodeReports(t, out)
	if len(reports) != 1 || reports[0].Root != f.roaming {
		t.Errorf("expected the roaming root, got %+v", reports)
	}
}

func TestScanTable(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "roaming", "--min-size", "50B")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	for _, want := range []string{"Roaming", "NAME", "A", "C", "Total:", utils.FormatFileSize(300)} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "  B ") {
		t.Errorf("empty folder should be hidden by --min-size:\n%s", out)
	}
}

func TestScanAll(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "--all", "--json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	reports := decodeReports(t, out)
	if len(reports) != len(types.AllTargets()) {
		t.Fatalf("expected %d reports, got %d", len(types.AllTargets()), len(reports))
	}
	for i, target := range types.AllTargets() {
		if reports[i].Label != target.String() {
			t.Errorf("report %d: expected %s, got %s", i, target, reports[i].Label)
		}
		if !reports[i].Outcome.RootFound {
			t.Errorf("%s root should be found", target)
		}
	}
	if len(reports[1].Entries) != 1 || reports[1].Entries[0].Name != "Cache" {
		t.Errorf("unexpected local entries: %+v", reports[1].Entries)
	}
	if len(reports[2].Entries) != 0 {
		t.Errorf("expected empty LocalLow, got %+v", reports[2].Entries)
	}
}

func TestScanRootFlag(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "--root", f.local, "--json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	reports := decodeReports(t, out)
	if len(reports) != 1 || reports[0].Root != f.local || len(reports[0].Entries) != 1 {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestScanMissingRoot(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "scan", "--root", filepath.Join(f.dir, "missing"))
	if err != nil {
		t.Fatalf("a missing root is not an error: %v", err)
	}
	if !strings.Contains(out, "not found") {
		t.Errorf("expected not found, got:\n%s", out)
	}
}

func TestScanArgumentErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown target", []string{"scan", "Temp"}},
		{"target with all", []string{"scan", "local", "--all"}},
		{"all with root", []string{"scan", "--all", "--root", f.local}},
		{"bad min size", []string{"scan", "--min-size", "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}

	_, err := f.run(t, "scan", "Temp")
	if !errors.Is(err, types.ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestDeleteWithRelativeRoot(t *testing.T) {
	f := newFixture(t)
	t.Chdir(f.dir)

	cfg := fmt.Sprintf("roots:\n  roaming: Roaming\nhistory:\n  path: '%s'\nlog:\n  level: error\n",
		filepath.Join(f.dir, "history.db"))
	if err := os.WriteFile(f.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := f.run(t, "scan", "--json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	reports := decodeReports(t, out)
	if len(reports) != 1 || !filepath.IsAbs(reports[0].Root) || len(reports[0].Entries) != 3 {
		t.Fatalf("expected an absolute root with 3 entries, got %+v", reports)
	}

	if _, err := f.run(t, "delete", "roaming", "B", "--yes"); err != nil {
		t.Fatalf("delete of a scanned folder failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.roaming, "B")); !os.IsNotExist(err) {
		t.Error("folder should be gone")
	}
}

func TestDeleteRequiresYes(t *testing.T) {
	f := newFixture(t)

	if _, err := f.run(t, "delete", "roaming", "A"); err == nil {
		t.Fatal("expected an error without --yes")
	}
	if _, err := os.Stat(filepath.Join(f.roaming, "A")); err != nil {
		t.Error("folder removed without confirmation")
	}
}

func TestDeleteAndHistory(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "delete", "roaming", "A", "--yes")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "Deleted") {
		t.Errorf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(f.roaming, "A")); !os.IsNotExist(err) {
		t.Fatal("folder should be gone")
	}

	out, err = f.run(t, "history", "--json")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var ops []history.Operation
	if err := json.Unmarshal([]byte(out), &ops); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Type != history.OpDelete || ops[0].Target != "Roaming" || ops[0].SizeBytes != 300 || filepath.Base(ops[0].SourcePath) != "A" {
		t.Errorf("unexpected operation: %+v", ops[0])
	}

	out, err = f.run(t, "history", "nothing-matches")
	if err != nil {
		t.Fatalf("history search failed: %v", err)
	}
	if !strings.Contains(out, "No operations found") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDeleteTrash(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "delete", "roaming", "C", "--yes", "--trash")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "Moved") {
		t.Errorf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "trash", "C", "three.dat")); err != nil {
		t.Errorf("folder should be in trash: %v", err)
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	f := newFixture(t)

	if _, err := f.run(t, "delete", "roaming", "..", "--yes"); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(f.roaming); err != nil {
		t.Error("root must survive")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	f := newFixture(t)

	if _, err := f.run(t, "scan", "--log-level", "loud"); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}
