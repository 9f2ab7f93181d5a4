package eval

import (
	"testing"

	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/sigma"
	"ergotree.dev/sigmachain/sigmatype"
)

func newTestContext() *EvalContext {
	return NewEvalContext(sigmatype.Context{
		Vars:      map[byte]sigmatype.Value{},
		Extension: map[byte]sigmatype.Value{},
	}, 0)
}

func evalOrFatal(t *testing.T, e ast.Expr) sigmatype.Value {
	t.Helper()
	v, err := Eval(newTestContext(), NewEnv(), e)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return v
}

func TestEvalArithAndRel(t *testing.T) {
	one := ast.NewConst(sigmatype.NewLong(1))
	two := ast.NewConst(sigmatype.NewLong(2))
	sum, err := ast.NewArithOp(ast.ArithPlus, one, two)
	if err != nil {
		t.Fatalf("NewArithOp: %v", err)
	}
	three := ast.NewConst(sigmatype.NewLong(3))
	eq, err := ast.NewRelOp(ast.RelEq, sum, three)
	if err != nil {
		t.Fatalf("NewRelOp: %v", err)
	}
	v := evalOrFatal(t, eq)
	b, err := v.TryExtractBool()
	if err != nil || !b {
		t.Fatalf("expected true, got %v (err %v)", v, err)
	}
}

func TestEvalArithOverflow(t *testing.T) {
	maxByte := ast.NewConst(sigmatype.NewByte(127))
	one := ast.NewConst(sigmatype.NewByte(1))
	add, err := ast.NewArithOp(ast.ArithPlus, maxByte, one)
	if err != nil {
		t.Fatalf("NewArithOp: %v", err)
	}
	_, err = Eval(newTestContext(), NewEnv(), add)
	if err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestEvalIf(t *testing.T) {
	cond := ast.NewConst(sigmatype.NewBool(true))
	thenE := ast.NewConst(sigmatype.NewLong(10))
	elseE := ast.NewConst(sigmatype.NewLong(20))
	ifExpr, err := ast.NewIf(cond, thenE, elseE)
	if err != nil {
		t.Fatalf("NewIf: %v", err)
	}
	v := evalOrFatal(t, ifExpr)
	if v.Long != 10 {
		t.Fatalf("expected 10, got %d", v.Long)
	}
}

func TestEvalBlockValue(t *testing.T) {
	vd := ast.NewValDef(1, ast.NewConst(sigmatype.NewLong(5)))
	use := ast.NewValUse(1, sigmatype.SLong)
	block := ast.NewBlockValue([]*ast.ValDef{vd}, use)
	v := evalOrFatal(t, block)
	if v.Long != 5 {
		t.Fatalf("expected 5, got %d", v.Long)
	}
}

func TestEvalMapFilterFold(t *testing.T) {
	items := []ast.Expr{
		ast.NewConst(sigmatype.NewInt(1)),
		ast.NewConst(sigmatype.NewInt(2)),
		ast.NewConst(sigmatype.NewInt(3)),
	}
	coll, err := ast.NewCollection(sigmatype.SInt, items)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}

	argId := int32(100)
	doubleFn := ast.NewFuncValue(
		[]ast.FuncArg{{Id: argId, Tpe: sigmatype.SInt}},
		mustArith(t, ast.ArithMultiply, ast.NewValUse(argId, sigmatype.SInt), ast.NewConst(sigmatype.NewInt(2))),
	)
	mapped, err := ast.NewMap(coll, doubleFn)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	predId := int32(101)
	gtFn := ast.NewFuncValue(
		[]ast.FuncArg{{Id: predId, Tpe: sigmatype.SInt}},
		mustRel(t, ast.RelGT, ast.NewValUse(predId, sigmatype.SInt), ast.NewConst(sigmatype.NewInt(3))),
	)
	filtered, err := ast.NewFilter(mapped, gtFn)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}

	accId, elemId := int32(200), int32(201)
	folder := ast.NewFuncValue(
		[]ast.FuncArg{{Id: accId, Tpe: sigmatype.SInt}, {Id: elemId, Tpe: sigmatype.SInt}},
		mustArith(t, ast.ArithPlus, ast.NewValUse(accId, sigmatype.SInt), ast.NewValUse(elemId, sigmatype.SInt)),
	)
	folded, err := ast.NewFold(filtered, ast.NewConst(sigmatype.NewInt(0)), folder)
	if err != nil {
		t.Fatalf("NewFold: %v", err)
	}

	v := evalOrFatal(t, folded)
	// doubled: 2,4,6 ; filtered > 3: 4,6 ; summed: 10
	if v.Int != 10 {
		t.Fatalf("expected 10, got %d", v.Int)
	}
}

func mustArith(t *testing.T, kind ast.ArithOpKind, l, r ast.Expr) ast.Expr {
	t.Helper()
	op, err := ast.NewArithOp(kind, l, r)
	if err != nil {
		t.Fatalf("NewArithOp: %v", err)
	}
	return op
}

func mustRel(t *testing.T, kind ast.RelOpKind, l, r ast.Expr) ast.Expr {
	t.Helper()
	op, err := ast.NewRelOp(kind, l, r)
	if err != nil {
		t.Fatalf("NewRelOp: %v", err)
	}
	return op
}

func TestReduceToCryptoBooleanLiftsToTrivialProp(t *testing.T) {
	expr := ast.NewConst(sigmatype.NewBool(true))
	sb, err := ReduceToCrypto(newTestContext(), NewEnv(), expr)
	if err != nil {
		t.Fatalf("ReduceToCrypto: %v", err)
	}
	if sb.Kind != sigma.KindTrivialProp || !sb.Trivial {
		t.Fatalf("expected TrivialProp(true), got %+v", sb)
	}
}

func TestReduceToCryptoProveDlog(t *testing.T) {
	gExpr := ast.NewConst(sigmatype.NewGroupElement(ecc.Generator()))
	proveDlog, err := ast.NewCreateProveDlog(gExpr)
	if err != nil {
		t.Fatalf("NewCreateProveDlog: %v", err)
	}
	sb, err := ReduceToCrypto(newTestContext(), NewEnv(), proveDlog)
	if err != nil {
		t.Fatalf("ReduceToCrypto: %v", err)
	}
	if sb.Kind != sigma.KindProveDlog {
		t.Fatalf("expected ProveDlog, got %+v", sb)
	}
	if !sb.Dlog.H.Eq(ecc.Generator()) {
		t.Fatalf("expected H == generator")
	}
}

func TestEvalExtractAmount(t *testing.T) {
	boxValue, err := primitive.NewBoxValue(1000)
	if err != nil {
		t.Fatalf("NewBoxValue: %v", err)
	}
	box := sigmatype.Box{Value: boxValue, Registers: map[byte]sigmatype.RegisterValue{}}
	ec := NewEvalContext(sigmatype.Context{
		Self:      box,
		Vars:      map[byte]sigmatype.Value{},
		Extension: map[byte]sigmatype.Value{},
	}, 0)

	selfRef, err := ast.NewGlobalVars(ast.GlobalSelfBox)
	if err != nil {
		t.Fatalf("NewGlobalVars: %v", err)
	}
	extract, err := ast.NewExtractAmount(selfRef)
	if err != nil {
		t.Fatalf("NewExtractAmount: %v", err)
	}
	v, err := Eval(ec, NewEnv(), extract)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.Long != 1000 {
		t.Fatalf("expected 1000, got %d", v.Long)
	}
}

func TestCostLimitExceeded(t *testing.T) {
	ec := NewEvalContext(sigmatype.Context{Vars: map[byte]sigmatype.Value{}, Extension: map[byte]sigmatype.Value{}}, 2)
	one := ast.NewConst(sigmatype.NewLong(1))
	two := ast.NewConst(sigmatype.NewLong(2))
	sum, err := ast.NewArithOp(ast.ArithPlus, one, two)
	if err != nil {
		t.Fatalf("NewArithOp: %v", err)
	}
	_, err = Eval(ec, NewEnv(), sum)
	if err == nil {
		t.Fatalf("expected cost limit error")
	}
}
