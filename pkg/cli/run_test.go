package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvql/pkg/catalog"
	"csvql/pkg/config"
	"csvql/pkg/types"
)

// setupDB materializes the users fixture and returns its configuration.
func setupDB(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{DataDir: dir, MetadataFile: "metadata.json", DefaultLimit: 100}

	meta := catalog.New("testdb", cfg.MetadataPath())
	meta.Database.Tables = []catalog.Table{
		{
			Name:   "users",
			File:   "users.csv",
			NextID: 3,
			Columns: []catalog.Column{
				{Name: catalog.IDColumn, Type: types.TypeInt},
				{Name: "name", Type: types.TypeStr},
				{Name: "age", Type: types.TypeInt},
			},
		},
	}
	if err := meta.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	users := "__id,name,age\n0,ana,30\n1,bo,17\n2,cy,42\n"
	if err := os.WriteFile(filepath.Join(dir, "users.csv"), []byte(users), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRunner_Select(t *testing.T) {
	cfg := setupDB(t)
	var out bytes.Buffer

	if err := NewRunner(cfg, &out).Run("SELECT name FROM users WHERE age >= 18"); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"| name |", "| ana", "| cy", "2 row(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "bo") {
		t.Errorf("output contains filtered-out row:\n%s", got)
	}
}

func TestRunner_Insert(t *testing.T) {
	cfg := setupDB(t)
	var out bytes.Buffer

	if err := NewRunner(cfg, &out).Run(`INSERT INTO users (name, age) VALUES ("dee", 25)`); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := out.String(); got != "Inserted row\n" {
		t.Errorf("output = %q, want \"Inserted row\\n\"", got)
	}
}

func TestRunner_UpdateMessages(t *testing.T) {
	cfg := setupDB(t)

	tests := []struct {
		query string
		want  string
	}{
		{`UPDATE users SET age = 99 WHERE name = 'nobody'`, "0 rows\n"},
		{`UPDATE users SET age = 18 WHERE name = 'bo'`, "1 row: __id=1\n"},
		{`UPDATE users SET age = 1 WHERE age >= 1`, "3 rows: __id=[0, 1, 2]\n"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if err := NewRunner(cfg, &out).Run(tt.query); err != nil {
			t.Fatalf("%s: Run error: %v", tt.query, err)
		}
		if out.String() != tt.want {
			t.Errorf("%s: output = %q, want %q", tt.query, out.String(), tt.want)
		}
	}
}

func TestRunner_DeleteMessage(t *testing.T) {
	cfg := setupDB(t)
	var out bytes.Buffer

	if err := NewRunner(cfg, &out).Run("DELETE FROM users WHERE age < 18"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := out.String(); got != "1 row: __id=1\n" {
		t.Errorf("output = %q, want \"1 row: __id=1\\n\"", got)
	}
}

func TestRunner_ValidationFailure(t *testing.T) {
	cfg := setupDB(t)
	var out bytes.Buffer

	err := NewRunner(cfg, &out).Run("SELECT * FROM users WHERE name = bo")
	if err == nil {
		t.Fatal("Run succeeded, want validation failure")
	}
	if !strings.Contains(err.Error(), "invalid str literal") {
		t.Errorf("error = %v, want invalid str literal", err)
	}
}

func TestRunner_UninitializedDatabase(t *testing.T) {
	cfg := &config.Config{
		DataDir:      t.TempDir(),
		MetadataFile: "metadata.json",
		DefaultLimit: 100,
	}
	var out bytes.Buffer

	err := NewRunner(cfg, &out).Run("SELECT * FROM users")
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if !strings.Contains(err.Error(), "database not initialized") {
		t.Errorf("error = %v, want database not initialized", err)
	}
}

func TestRunner_DefaultLimitApplied(t *testing.T) {
	cfg := setupDB(t)
	cfg.DefaultLimit = 2
	var out bytes.Buffer

	if err := NewRunner(cfg, &out).Run("SELECT name FROM users"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(out.String(), "2 row(s)") {
		t.Errorf("output = %q, want default limit of 2 applied", out.String())
	}

	// An explicit LIMIT wins over the default.
	out.Reset()
	if err := NewRunner(cfg, &out).Run("SELECT name FROM users LIMIT 3"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(out.String(), "3 row(s)") {
		t.Errorf("output = %q, want explicit limit of 3", out.String())
	}
}

func TestFormatAffected(t *testing.T) {
	tests := []struct {
		ids  []int64
		want string
	}{
		{nil, "0 rows"},
		{[]int64{7}, "1 row: __id=7"},
		{[]int64{1, 2, 4}, "3 rows: __id=[1, 2, 4]"},
	}

	for _, tt := range tests {
		if got := formatAffected(tt.ids); got != tt.want {
			t.Errorf("formatAffected(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}
