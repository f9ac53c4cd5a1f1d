package main

import (
	"io/fs"
	"strings"
	"testing"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	data, err := fs.ReadFile(migrations, "migrations/"+name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestMigrationsPaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		t.Fatal(err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		default:
			t.Errorf("unexpected file %s", e.Name())
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("up = %d, down = %d", ups, downs)
	}
}

func TestInitSchema(t *testing.T) {
	up := readMigration(t, "000001_init.up.sql")

	for _, want := range []string{
		"CREATE TABLE public.company",
		"CREATE TABLE public.document",
		"CREATE TABLE public.signers",
		"REFERENCES public.company (id) ON DELETE CASCADE",
		"REFERENCES public.document (id) ON DELETE CASCADE",
		"UNIQUE (document_id, email)",
		"CHECK (email = lower(email))",
		"'PENDING_API', 'PENDING', 'COMPLETED', 'CANCELLED', 'API_ERROR'",
		"'PENDING', 'SIGNED', 'CANCELLED'",
		"(created_at DESC)",
		"open_id bigint NULL",
	} {
		if !strings.Contains(up, want) {
			t.Errorf("init migration missing %q", want)
		}
	}

	down := readMigration(t, "000001_init.down.sql")
	if strings.Index(down, "public.signers") > strings.Index(down, "public.company") {
		t.Error("down migration must drop signers before company")
	}
}
