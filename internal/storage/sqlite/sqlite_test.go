package sqlite

import "testing"

func TestCreateStmt(t *testing.T) {
	got := createStmt("patents", []string{"id", "title"})
	want := `CREATE TABLE IF NOT EXISTS "patents" ("id" TEXT, "title" TEXT)`
	if got != want {
		t.Fatalf("createStmt = %q, want %q", got, want)
	}
}

func TestInsertStmt(t *testing.T) {
	got := insertStmt("patents", []string{"id", "title"})
	want := `INSERT INTO "patents" ("id", "title") VALUES (?, ?)`
	if got != want {
		t.Fatalf("insertStmt = %q, want %q", got, want)
	}
}

func TestIdentQuoting(t *testing.T) {
	if got := ident(`we"ird`); got != `"we""ird"` {
		t.Fatalf("ident = %q", got)
	}
}
