package store

import (
	"testing"

	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/sigmatype"
)

func TestTemplateHashSharedAcrossConstants(t *testing.T) {
	expr1, err := ast.NewRelOp(ast.RelEq, ast.NewConst(sigmatype.NewLong(1)), ast.NewConst(sigmatype.NewLong(1)))
	if err != nil {
		t.Fatalf("NewRelOp 1: %v", err)
	}
	tree1, err := ergotree.FromExpr(0, true, false, expr1)
	if err != nil {
		t.Fatalf("FromExpr 1: %v", err)
	}
	expr2, err := ast.NewRelOp(ast.RelEq, ast.NewConst(sigmatype.NewLong(5)), ast.NewConst(sigmatype.NewLong(5)))
	if err != nil {
		t.Fatalf("NewRelOp 2: %v", err)
	}
	tree2, err := ergotree.FromExpr(0, true, false, expr2)
	if err != nil {
		t.Fatalf("FromExpr 2: %v", err)
	}

	h1, err := TemplateHash(tree1)
	if err != nil {
		t.Fatalf("TemplateHash 1: %v", err)
	}
	h2, err := TemplateHash(tree2)
	if err != nil {
		t.Fatalf("TemplateHash 2: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected two trees differing only in constants to share a template hash")
	}

	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PutTemplate(h1, tree1.Bytes()); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	got, ok, err := db.GetTemplate(h1)
	if err != nil || !ok {
		t.Fatalf("GetTemplate: ok=%v err=%v", ok, err)
	}
	if len(got) == 0 {
		t.Fatalf("expected non-empty stored template bytes")
	}
}
