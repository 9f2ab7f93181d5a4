package ergotree

import (
	"bytes"
	"testing"

	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/sigmatype"
)

func mustConstEq(t *testing.T, l, r ast.Expr) *ast.RelOp {
	t.Helper()
	op, err := ast.NewRelOp(ast.RelEq, l, r)
	if err != nil {
		t.Fatalf("NewRelOp: %v", err)
	}
	return op
}

func TestFromExprRoundTripNoSegregation(t *testing.T) {
	one := ast.NewConst(sigmatype.NewLong(1))
	expr := mustConstEq(t, one, one)

	tree, err := FromExpr(0, false, true, expr)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	data := tree.Bytes()

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.ParseErr() != nil {
		t.Fatalf("unexpected parse error: %v", parsed.ParseErr())
	}
	if !bytes.Equal(parsed.Bytes(), data) {
		t.Fatalf("round trip mismatch")
	}
	prop, err := parsed.Proposition()
	if err != nil {
		t.Fatalf("Proposition: %v", err)
	}
	if !prop.Tpe().Eq(sigmatype.SBoolean) {
		t.Fatalf("expected Boolean proposition, got %s", prop.Tpe())
	}
}

func TestConstantSegregationRoundTrip(t *testing.T) {
	one := ast.NewConst(sigmatype.NewLong(1))
	expr := mustConstEq(t, one, one)

	tree, err := FromExpr(0, true, true, expr)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	if len(tree.Constants()) != 2 {
		t.Fatalf("expected 2 segregated constants, got %d", len(tree.Constants()))
	}

	templ, err := tree.TemplateBytes()
	if err != nil {
		t.Fatalf("TemplateBytes: %v", err)
	}

	placeholderExpr, err := ast.NewRelOp(ast.RelEq,
		ast.NewConstantPlaceholder(0, sigmatype.SLong),
		ast.NewConstantPlaceholder(1, sigmatype.SLong))
	if err != nil {
		t.Fatalf("NewRelOp: %v", err)
	}
	wantTree, err := FromExpr(0, false, false, placeholderExpr)
	if err != nil {
		t.Fatalf("FromExpr (want): %v", err)
	}
	wantBytes, err := wantTree.TemplateBytes()
	if err != nil {
		t.Fatalf("TemplateBytes (want): %v", err)
	}
	if !bytes.Equal(templ, wantBytes) {
		t.Fatalf("template_bytes mismatch:\n got: %x\nwant: %x", templ, wantBytes)
	}

	data := tree.Bytes()
	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := parsed.SetConstant(1, sigmatype.NewLong(5)); err != nil {
		t.Fatalf("SetConstant: %v", err)
	}
	prop, err := parsed.Proposition()
	if err != nil {
		t.Fatalf("Proposition: %v", err)
	}
	relOp, ok := prop.(*ast.RelOp)
	if !ok {
		t.Fatalf("expected *ast.RelOp, got %T", prop)
	}
	leftConst, ok := relOp.Left.(*ast.Const)
	if !ok {
		t.Fatalf("expected left operand to resolve to a Const, got %T", relOp.Left)
	}
	rightConst, ok := relOp.Right.(*ast.Const)
	if !ok {
		t.Fatalf("expected right operand to resolve to a Const, got %T", relOp.Right)
	}
	if leftConst.Value.Long != 1 {
		t.Fatalf("left constant = %d, want 1", leftConst.Value.Long)
	}
	if rightConst.Value.Long != 5 {
		t.Fatalf("right constant = %d, want 5", rightConst.Value.Long)
	}
}

func TestParsePreservesOpaqueBytesOnBadOpCode(t *testing.T) {
	header := byte(0) // no size, no segregation
	garbage := []byte{header, 0xff, 0x01, 0x02}
	tree, err := Parse(garbage)
	if err != nil {
		t.Fatalf("Parse should not fail outright on a bad op code: %v", err)
	}
	if tree.ParseErr() == nil {
		t.Fatalf("expected a preserved parse error for an unknown op code")
	}
	if !bytes.Equal(tree.Bytes(), garbage) {
		t.Fatalf("opaque tree must reproduce its original bytes exactly")
	}
	if _, err := tree.Proposition(); err == nil {
		t.Fatalf("Proposition should surface the preserved parse error")
	}
}

func TestGetSetConstantOutOfRange(t *testing.T) {
	one := ast.NewConst(sigmatype.NewLong(1))
	expr := mustConstEq(t, one, one)
	tree, err := FromExpr(0, true, true, expr)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	if _, err := tree.GetConstant(99); err == nil {
		t.Fatalf("expected out-of-range GetConstant to fail")
	}
	if err := tree.SetConstant(99, sigmatype.NewLong(0)); err == nil {
		t.Fatalf("expected out-of-range SetConstant to fail")
	}
}

func TestHeaderVersionAndFlags(t *testing.T) {
	one := ast.NewConst(sigmatype.NewLong(1))
	expr := mustConstEq(t, one, one)
	tree, err := FromExpr(3, true, false, expr)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	if tree.Version() != 3 {
		t.Fatalf("Version() = %d, want 3", tree.Version())
	}
	if tree.HasSize() {
		t.Fatalf("expected HasSize() false")
	}
	if !tree.HasSegregation() {
		t.Fatalf("expected HasSegregation() true")
	}
}
