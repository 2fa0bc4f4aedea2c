package parser

import (
	"strings"
	"testing"
)

func TestParser_Select_Simple(t *testing.T) {
	stmt, err := New("SELECT name, age FROM users").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("Expected *SelectStmt, got %T", stmt)
	}

	if sel.Table != "users" {
		t.Errorf("Table = %q, want 'users'", sel.Table)
	}
	if len(sel.Fields) != 2 || sel.Fields[0] != "name" || sel.Fields[1] != "age" {
		t.Errorf("Fields = %v, want [name age]", sel.Fields)
	}
	if sel.Where != nil || sel.Join != nil || sel.OrderBy != nil || sel.Limit != nil {
		t.Error("unexpected optional clauses on plain SELECT")
	}
}

func TestParser_Select_Star(t *testing.T) {
	stmt, err := New("SELECT * FROM users;").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sel := stmt.(*SelectStmt)
	if len(sel.Fields) != 1 || sel.Fields[0] != "*" {
		t.Errorf("Fields = %v, want [*]", sel.Fields)
	}
}

func TestParser_Select_LowercasesIdentifiers(t *testing.T) {
	stmt, err := New("SELECT Name FROM Users WHERE AGE > 18").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sel := stmt.(*SelectStmt)
	if sel.Table != "users" {
		t.Errorf("Table = %q, want 'users'", sel.Table)
	}
	if sel.Fields[0] != "name" {
		t.Errorf("Fields[0] = %q, want 'name'", sel.Fields[0])
	}
	cmp := sel.Where.(*Comparison)
	if cmp.Left.Text != "age" {
		t.Errorf("Where left = %q, want 'age'", cmp.Left.Text)
	}
}

func TestParser_Select_Where(t *testing.T) {
	stmt, err := New("SELECT * FROM users WHERE name = 'ana'").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sel := stmt.(*SelectStmt)
	cmp, ok := sel.Where.(*Comparison)
	if !ok {
		t.Fatalf("Where = %T, want *Comparison", sel.Where)
	}
	if cmp.Op != Eq {
		t.Errorf("Op = %s, want =", cmp.Op)
	}
	if cmp.Left.Text != "name" || cmp.Left.Quoted {
		t.Errorf("Left = %+v, want unquoted 'name'", cmp.Left)
	}
	if cmp.Right.Text != "ana" || !cmp.Right.Quoted {
		t.Errorf("Right = %+v, want quoted 'ana'", cmp.Right)
	}
}

func TestParser_Select_WhereAndOr(t *testing.T) {
	stmt, err := New("SELECT * FROM users WHERE age > 18 AND name != 'bo'").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	logical, ok := stmt.(*SelectStmt).Where.(*Logical)
	if !ok {
		t.Fatalf("Where = %T, want *Logical", stmt.(*SelectStmt).Where)
	}
	if logical.Op != And {
		t.Errorf("Op = %v, want And", logical.Op)
	}

	stmt, err = New("SELECT * FROM users WHERE age > 18 OR name = 'bo'").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	logical = stmt.(*SelectStmt).Where.(*Logical)
	if logical.Op != Or {
		t.Errorf("Op = %v, want Or", logical.Op)
	}
}

func TestParser_Select_ThreeConditionsFails(t *testing.T) {
	_, err := New("SELECT * FROM users WHERE a = 1 AND b = 2 OR c = 3").Parse()
	if err == nil {
		t.Fatal("three conditions parsed, want error")
	}
	if !strings.Contains(err.Error(), "two conditions") {
		t.Errorf("error = %v, want mention of two conditions", err)
	}
}

func TestParser_Select_JoinOn(t *testing.T) {
	stmt, err := New("SELECT users.name FROM users JOIN orders ON users.__id = orders.user_id").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sel := stmt.(*SelectStmt)
	if sel.Join == nil {
		t.Fatal("Join = nil, want join clause")
	}
	if sel.Join.Table != "orders" {
		t.Errorf("Join.Table = %q, want 'orders'", sel.Join.Table)
	}
	cmp := sel.Join.On.(*Comparison)
	if cmp.Left.Text != "users.__id" || cmp.Right.Text != "orders.user_id" {
		t.Errorf("On = %v %s %v", cmp.Left, cmp.Op, cmp.Right)
	}
}

func TestParser_Select_JoinUsingDesugars(t *testing.T) {
	stmt, err := New("SELECT * FROM users JOIN orders USING (user_id)").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	cmp := stmt.(*SelectStmt).Join.On.(*Comparison)
	if cmp.Left.Text != "users.user_id" {
		t.Errorf("Left = %q, want 'users.user_id'", cmp.Left.Text)
	}
	if cmp.Op != Eq {
		t.Errorf("Op = %s, want =", cmp.Op)
	}
	if cmp.Right.Text != "orders.user_id" {
		t.Errorf("Right = %q, want 'orders.user_id'", cmp.Right.Text)
	}
}

func TestParser_Select_JoinWithoutOnFails(t *testing.T) {
	if _, err := New("SELECT * FROM users JOIN orders").Parse(); err == nil {
		t.Error("JOIN without ON or USING parsed, want error")
	}
}

func TestParser_Select_OrderByRequiresDirection(t *testing.T) {
	if _, err := New("SELECT * FROM users ORDER BY age").Parse(); err == nil {
		t.Error("ORDER BY without direction parsed, want error")
	}

	stmt, err := New("SELECT * FROM users ORDER BY age DESC").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	orderBy := stmt.(*SelectStmt).OrderBy
	if orderBy == nil || orderBy.Field != "age" || !orderBy.Desc {
		t.Errorf("OrderBy = %+v, want {age desc}", orderBy)
	}

	stmt, err = New("SELECT * FROM users ORDER BY age ASC").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if stmt.(*SelectStmt).OrderBy.Desc {
		t.Error("Desc = true, want false for ASC")
	}
}

func TestParser_Select_Limit(t *testing.T) {
	stmt, err := New("SELECT * FROM users LIMIT 5").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	limit := stmt.(*SelectStmt).Limit
	if limit == nil || *limit != 5 {
		t.Errorf("Limit = %v, want 5", limit)
	}

	// A negative limit parses; the validator rejects it.
	stmt, err = New("SELECT * FROM users LIMIT -1").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if *stmt.(*SelectStmt).Limit != -1 {
		t.Errorf("Limit = %d, want -1", *stmt.(*SelectStmt).Limit)
	}

	if _, err := New("SELECT * FROM users LIMIT abc").Parse(); err == nil {
		t.Error("LIMIT abc parsed, want error")
	}
}

func TestParser_SetDefaultLimit(t *testing.T) {
	stmt, _ := New("SELECT * FROM users").Parse()
	sel := stmt.(*SelectStmt)
	sel.SetDefaultLimit(100)
	if sel.Limit == nil || *sel.Limit != 100 {
		t.Errorf("Limit = %v, want 100", sel.Limit)
	}

	stmt, _ = New("SELECT * FROM users LIMIT 5").Parse()
	sel = stmt.(*SelectStmt)
	sel.SetDefaultLimit(100)
	if *sel.Limit != 5 {
		t.Errorf("Limit = %d, want explicit 5 kept", *sel.Limit)
	}
}

func TestParser_Insert(t *testing.T) {
	stmt, err := New(`INSERT INTO users (name, age) VALUES ("dee", 25)`).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	ins, ok := stmt.(*InsertStmt)
	if !ok {
		t.Fatalf("Expected *InsertStmt, got %T", stmt)
	}
	if ins.Table != "users" {
		t.Errorf("Table = %q, want 'users'", ins.Table)
	}
	if len(ins.Fields) != 2 || ins.Fields[0] != "name" || ins.Fields[1] != "age" {
		t.Errorf("Fields = %v, want [name age]", ins.Fields)
	}
	if len(ins.Values) != 2 {
		t.Fatalf("Values count = %d, want 2", len(ins.Values))
	}
	if ins.Values[0].Text != "dee" || !ins.Values[0].Quoted {
		t.Errorf("Values[0] = %+v, want quoted 'dee'", ins.Values[0])
	}
	if ins.Values[1].Text != "25" || ins.Values[1].Quoted {
		t.Errorf("Values[1] = %+v, want unquoted '25'", ins.Values[1])
	}
}

func TestParser_Insert_MissingValuesFails(t *testing.T) {
	if _, err := New("INSERT INTO users (name)").Parse(); err == nil {
		t.Error("INSERT without VALUES parsed, want error")
	}
}

func TestParser_Update(t *testing.T) {
	stmt, err := New(`UPDATE users SET age = 18, name = 'bo' WHERE name = "bo"`).Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	upd, ok := stmt.(*UpdateStmt)
	if !ok {
		t.Fatalf("Expected *UpdateStmt, got %T", stmt)
	}
	if upd.Table != "users" {
		t.Errorf("Table = %q, want 'users'", upd.Table)
	}
	if len(upd.Assignments) != 2 {
		t.Fatalf("Assignments count = %d, want 2", len(upd.Assignments))
	}
	if upd.Assignments[0].Column != "age" || upd.Assignments[0].Value.Text != "18" {
		t.Errorf("Assignments[0] = %+v", upd.Assignments[0])
	}
	if upd.Where == nil {
		t.Error("Where = nil, want condition")
	}
}

func TestParser_Update_WithoutWhere(t *testing.T) {
	stmt, err := New("UPDATE users SET age = 18").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if stmt.(*UpdateStmt).Where != nil {
		t.Error("Where != nil, want nil")
	}
}

func TestParser_Delete(t *testing.T) {
	stmt, err := New("DELETE FROM users WHERE age < 18").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	del, ok := stmt.(*DeleteStmt)
	if !ok {
		t.Fatalf("Expected *DeleteStmt, got %T", stmt)
	}
	if del.Table != "users" {
		t.Errorf("Table = %q, want 'users'", del.Table)
	}
	if del.Where == nil {
		t.Error("Where = nil, want condition")
	}
}

func TestParser_UnterminatedStringFails(t *testing.T) {
	_, err := New("SELECT * FROM users WHERE name = 'ana").Parse()
	if err == nil {
		t.Fatal("unterminated string parsed, want error")
	}
	if !strings.Contains(err.Error(), "unterminated") {
		t.Errorf("error = %v, want mention of unterminated string", err)
	}
}

func TestParser_TrailingGarbageFails(t *testing.T) {
	if _, err := New("DELETE FROM users WHERE age < 18 garbage").Parse(); err == nil {
		t.Error("trailing garbage parsed, want error")
	}
}

func TestParser_KeywordInsideStringLiteral(t *testing.T) {
	// The tokenizer keeps keywords inside string literals inert.
	stmt, err := New("SELECT * FROM users WHERE name = 'from'").Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cmp := stmt.(*SelectStmt).Where.(*Comparison)
	if cmp.Right.Text != "from" || !cmp.Right.Quoted {
		t.Errorf("Right = %+v, want quoted 'from'", cmp.Right)
	}
}

func TestParser_UnknownStatementFails(t *testing.T) {
	if _, err := New("DROP TABLE users").Parse(); err == nil {
		t.Error("DROP parsed, want error")
	}
}
