package database

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
)

// validMeetingTypes must match the ENUM on meetings.type and the type
// constants in internal/plugins/meetings.
var validMeetingTypes = map[string]bool{
	"dates": true,
	"days":  true,
}

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_MeetingTypeEnum checks that every ENUM definition for the
// meetings.type column lists exactly the supported meeting types. A missing
// value makes inserts fail with "Data truncated for column 'type'".
func TestMigrations_MeetingTypeEnum(t *testing.T) {
	dir := migrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migration files found")
	}

	enumPattern := regexp.MustCompile(`(?i)\btype\s+ENUM\(([^)]*)\)`)
	valuePattern := regexp.MustCompile(`'([^']+)'`)

	found := false
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		for _, match := range enumPattern.FindAllStringSubmatch(string(data), -1) {
			found = true
			values := map[string]bool{}
			for _, v := range valuePattern.FindAllStringSubmatch(match[1], -1) {
				values[v[1]] = true
				if !validMeetingTypes[v[1]] {
					t.Errorf("%s: unexpected meeting type %q", filepath.Base(f), v[1])
				}
			}
			for want := range validMeetingTypes {
				if !values[want] {
					t.Errorf("%s: meeting type ENUM is missing %q", filepath.Base(f), want)
				}
			}
		}
	}
	if !found {
		t.Error("no meetings.type ENUM definition found")
	}
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}
