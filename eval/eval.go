package eval

import (
	"bytes"

	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/avltree"
	"ergotree.dev/sigmachain/crypto"
	"ergotree.dev/sigmachain/ecc"
	"ergotree.dev/sigmachain/ergotree"
	"ergotree.dev/sigmachain/primitive"
	"ergotree.dev/sigmachain/serialization"
	"ergotree.dev/sigmachain/sigma"
	"ergotree.dev/sigmachain/sigmatype"
)

var hasher crypto.HashProvider = crypto.Blake2bProvider{}

// Eval evaluates e under ec and env, charging perNodeCost for every node
// visited. This is the single recursive entry point; every ast.Expr
// concrete type has exactly one case below.
func Eval(ec *EvalContext, env Env, e ast.Expr) (sigmatype.Value, error) {
	if err := ec.Cost.Add(perNodeCost); err != nil {
		return sigmatype.Value{}, err
	}
	switch n := e.(type) {
	case *ast.Const:
		return n.Value, nil
	case *ast.ConstantPlaceholder:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unresolved constant placeholder at index %d", n.Index)

	case *ast.GlobalVars:
		return evalGlobalVars(ec, n)

	case *ast.ValDef:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "ValDef must be evaluated via BlockValue")
	case *ast.ValUse:
		return env.Lookup(n.Id)
	case *ast.BlockValue:
		cur := env
		for _, vd := range n.Items {
			v, err := Eval(ec, cur, vd.Rhs)
			if err != nil {
				return sigmatype.Value{}, err
			}
			cur = cur.Bind(vd.Id, v)
		}
		return Eval(ec, cur, n.Result)
	case *ast.FuncValue:
		return sigmatype.Value{Type: n.Tpe(), LambdaVal: &sigmatype.LambdaValue{
			ArgTypes: funcArgTypes(n.Args), Range: n.Body.Tpe(), Body: n,
		}}, nil
	case *ast.Apply:
		return evalApply(ec, env, n)

	case *ast.If:
		cond, err := Eval(ec, env, n.Cond)
		if err != nil {
			return sigmatype.Value{}, err
		}
		b, err := cond.TryExtractBool()
		if err != nil {
			return sigmatype.Value{}, err
		}
		if b {
			return Eval(ec, env, n.Then)
		}
		return Eval(ec, env, n.Else)
	case *ast.LogicalNot:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		b, err := v.TryExtractBool()
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(!b), nil
	case *ast.BinaryBoolOp:
		return evalBinaryBoolOp(ec, env, n)
	case *ast.Atleast:
		return evalAtleast(ec, env, n)

	case *ast.ArithOp:
		l, err := Eval(ec, env, n.Left)
		if err != nil {
			return sigmatype.Value{}, err
		}
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return evalArithOp(n.Kind, l, r)
	case *ast.RelOp:
		l, err := Eval(ec, env, n.Left)
		if err != nil {
			return sigmatype.Value{}, err
		}
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return evalRelOp(n.Kind, l, r)
	case *ast.UnaryNumOp:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return evalUnaryNumOp(n.Kind, v)
	case *ast.Upcast:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return evalUpcast(v, n.To)
	case *ast.Downcast:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return evalDowncast(v, n.To)
	case *ast.LongToByteArray:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		buf := make([]byte, 8)
		u := uint64(v.Long)
		for i := 7; i >= 0; i-- {
			buf[i] = byte(u)
			u >>= 8
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(buf)), nil
	case *ast.ByteArrayToLong:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		b := v.CollVal.Bytes
		if len(b) != 8 {
			return sigmatype.Value{}, newErr(ErrInvalidArgument, "ByteArrayToLong requires exactly 8 bytes, got %d", len(b))
		}
		var u uint64
		for _, x := range b {
			u = u<<8 | uint64(x)
		}
		return sigmatype.NewLong(int64(u)), nil
	case *ast.ByteArrayToBigInt:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBigInt(primitive.NewBigIntFromBytes(v.CollVal.Bytes)), nil

	case *ast.Collection:
		items := make([]sigmatype.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := Eval(ec, env, it)
			if err != nil {
				return sigmatype.Value{}, err
			}
			items[i] = v
		}
		return sigmatype.NewCollValue(sigmatype.NewBoxedColl(n.ElemType, items)), nil
	case *ast.ByIndex:
		return evalByIndex(ec, env, n)
	case *ast.SizeOf:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewInt(int32(v.CollVal.Len())), nil
	case *ast.Slice:
		return evalSlice(ec, env, n)
	case *ast.Append:
		return evalAppend(ec, env, n)
	case *ast.Fold:
		return evalFold(ec, env, n)
	case *ast.Map:
		return evalMap(ec, env, n)
	case *ast.Filter:
		return evalFilter(ec, env, n)
	case *ast.Exists:
		return evalExists(ec, env, n)
	case *ast.ForAll:
		return evalForAll(ec, env, n)
	case *ast.IndexOf:
		return evalIndexOf(ec, env, n)
	case *ast.Flatmap:
		return evalFlatmap(ec, env, n)
	case *ast.Zip:
		return evalZip(ec, env, n)
	case *ast.Indices:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		items := make([]sigmatype.Value, v.CollVal.Len())
		for i := range items {
			items[i] = sigmatype.NewInt(int32(i))
		}
		return sigmatype.NewCollValue(sigmatype.NewBoxedColl(sigmatype.SInt, items)), nil
	case *ast.Patch:
		return evalPatch(ec, env, n)
	case *ast.Updated:
		return evalUpdated(ec, env, n)
	case *ast.UpdateMany:
		return evalUpdateMany(ec, env, n)
	case *ast.XorOf:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		acc := false
		for _, it := range v.CollVal.AsSlice() {
			acc = acc != it.Bool
		}
		return sigmatype.NewBool(acc), nil

	case *ast.OptionGet:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if v.OptVal == nil {
			return sigmatype.Value{}, newErr(ErrNotFound, "OptionGet on None")
		}
		return *v.OptVal, nil
	case *ast.OptionIsDefined:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(v.OptVal != nil), nil
	case *ast.OptionGetOrElse:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if v.OptVal != nil {
			return *v.OptVal, nil
		}
		return Eval(ec, env, n.Def)

	case *ast.Tuple:
		items := make([]sigmatype.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := Eval(ec, env, it)
			if err != nil {
				return sigmatype.Value{}, err
			}
			items[i] = v
		}
		return sigmatype.NewTuple(items...)
	case *ast.SelectField:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return v.TupleVal.Items[n.Field-1], nil

	case *ast.ExtractAmount:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewLong(int64(v.BoxVal.Value.Uint64())), nil
	case *ast.ExtractRegisterAs:
		return evalExtractRegisterAs(ec, env, n)
	case *ast.ExtractScriptBytes:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(v.BoxVal.ErgoTreeBytes)), nil
	case *ast.ExtractBytes:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(boxCanonicalBytes(v.BoxVal, true))), nil
	case *ast.ExtractBytesWithNoRef:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(boxCanonicalBytes(v.BoxVal, false))), nil
	case *ast.ExtractCreationInfo:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		ref := make([]byte, 0, 34)
		ref = append(ref, v.BoxVal.TransactionId.Bytes()...)
		ref = append(ref, byte(v.BoxVal.Index>>8), byte(v.BoxVal.Index))
		return sigmatype.NewTuple(sigmatype.NewInt(int32(v.BoxVal.CreationHeight)), sigmatype.NewCollValue(sigmatype.NewByteColl(ref)))
	case *ast.ExtractId:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(v.BoxVal.Id.Bytes())), nil

	case *ast.CalcHash:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		var digest [32]byte
		if n.Kind == ast.HashBlake2b256 {
			digest = hasher.Blake2b256(v.CollVal.Bytes)
		} else {
			digest = hasher.Sha256(v.CollVal.Bytes)
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(digest[:])), nil
	case *ast.BoolToSigmaProp:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmaPropValue(sigma.TrivialProp(v.Bool)), nil
	case *ast.CreateProveDlog:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmaPropValue(sigma.NewProveDlog(v.GroupElement)), nil
	case *ast.CreateProveDhTuple:
		g, err := Eval(ec, env, n.G)
		if err != nil {
			return sigmatype.Value{}, err
		}
		h, err := Eval(ec, env, n.H)
		if err != nil {
			return sigmatype.Value{}, err
		}
		u, err := Eval(ec, env, n.U)
		if err != nil {
			return sigmatype.Value{}, err
		}
		v, err := Eval(ec, env, n.V)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmaPropValue(sigma.NewProveDhTuple(g.GroupElement, h.GroupElement, u.GroupElement, v.GroupElement)), nil
	case *ast.SigmaConj:
		return evalSigmaConj(ec, env, n)
	case *ast.SigmaPropBytes:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(v.SigmaProp.SigmaPropBytes())), nil
	case *ast.MultiplyGroup:
		l, err := Eval(ec, env, n.Left)
		if err != nil {
			return sigmatype.Value{}, err
		}
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewGroupElement(l.GroupElement.Multiply(r.GroupElement)), nil
	case *ast.Exponentiate:
		base, err := Eval(ec, env, n.Base)
		if err != nil {
			return sigmatype.Value{}, err
		}
		exp, err := Eval(ec, env, n.Exponent)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewGroupElement(base.GroupElement.Exponentiate(exp.Big.Bytes())), nil
	case *ast.DecodePoint:
		v, err := Eval(ec, env, n.Input)
		if err != nil {
			return sigmatype.Value{}, err
		}
		p, err := ecc.ParseCompressed(v.CollVal.Bytes)
		if err != nil {
			return sigmatype.Value{}, newErr(ErrInvalidArgument, "DecodePoint: %v", err)
		}
		return sigmatype.NewGroupElement(p), nil

	case *ast.ContextRef:
		return sigmatype.Value{Type: sigmatype.SContext, ContextVal: &ec.Ctx}, nil
	case *ast.GlobalRef:
		return sigmatype.Value{Type: sigmatype.SGlobal}, nil
	case *ast.GetVar:
		if v, ok := ec.Ctx.Vars[n.VarId]; ok && v.Type.Eq(n.Elem) {
			return sigmatype.NewOption(v), nil
		}
		return sigmatype.NewNone(n.Elem), nil
	case *ast.MethodCall:
		return evalMethodCall(ec, env, n)
	case *ast.PropertyCall:
		return evalPropertyCall(ec, env, n)
	case *ast.DeserializeRegister:
		return evalDeserializeRegister(ec, env, n)
	case *ast.DeserializeContext:
		return evalDeserializeContext(ec, n)
	case *ast.TreeLookup:
		return evalTreeLookup(ec, env, n)
	case *ast.CreateAvlTree:
		return evalCreateAvlTree(ec, env, n)
	case *ast.SubstConstants:
		return evalSubstConstants(ec, env, n)

	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "no evaluation rule for %T", e)
	}
}

func funcArgTypes(args []ast.FuncArg) []sigmatype.SType {
	out := make([]sigmatype.SType, len(args))
	for i, a := range args {
		out[i] = a.Tpe
	}
	return out
}

func sigmaPropValue(b sigma.SigmaBoolean) sigmatype.Value {
	return sigmatype.Value{Type: sigmatype.SSigmaProp, SigmaProp: b}
}

// evalApply re-enters env at the call site, binding each FuncArg id to its
// evaluated argument (spec: FuncValue is not a closure snapshot; it is
// always applied in the scope where it textually appears).
func evalApply(ec *EvalContext, env Env, n *ast.Apply) (sigmatype.Value, error) {
	fv, err := Eval(ec, env, n.Func)
	if err != nil {
		return sigmatype.Value{}, err
	}
	if fv.LambdaVal == nil {
		return sigmatype.Value{}, newErr(ErrTypeMismatch, "Apply target did not evaluate to a function")
	}
	fn, ok := fv.LambdaVal.Body.(*ast.FuncValue)
	if !ok {
		return sigmatype.Value{}, newErr(ErrTypeMismatch, "Apply target's lambda body is not a FuncValue")
	}
	callEnv := env
	for i, arg := range n.Args {
		v, err := Eval(ec, env, arg)
		if err != nil {
			return sigmatype.Value{}, err
		}
		callEnv = callEnv.Bind(fn.Args[i].Id, v)
	}
	return Eval(ec, callEnv, fn.Body)
}

func evalGlobalVars(ec *EvalContext, n *ast.GlobalVars) (sigmatype.Value, error) {
	switch n.Kind {
	case ast.GlobalHeight:
		return sigmatype.NewInt(int32(ec.Ctx.Height)), nil
	case ast.GlobalSelfBox:
		return sigmatype.Value{Type: sigmatype.SBox, BoxVal: ec.Ctx.Self}, nil
	case ast.GlobalInputs:
		return boxesValue(ec.Ctx.Inputs), nil
	case ast.GlobalOutputs:
		return boxesValue(ec.Ctx.Outputs), nil
	case ast.GlobalMinerPk:
		return sigmatype.NewGroupElement(ec.Ctx.MinerPk), nil
	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unknown global var kind %d", n.Kind)
	}
}

func boxesValue(boxes []sigmatype.Box) sigmatype.Value {
	items := make([]sigmatype.Value, len(boxes))
	for i, b := range boxes {
		items[i] = sigmatype.Value{Type: sigmatype.SBox, BoxVal: b}
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(sigmatype.SBox, items))
}

func evalBinaryBoolOp(ec *EvalContext, env Env, n *ast.BinaryBoolOp) (sigmatype.Value, error) {
	l, err := Eval(ec, env, n.Left)
	if err != nil {
		return sigmatype.Value{}, err
	}
	switch n.Kind {
	case ast.BoolAnd:
		if !l.Bool {
			return sigmatype.NewBool(false), nil
		}
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(r.Bool), nil
	case ast.BoolOr:
		if l.Bool {
			return sigmatype.NewBool(true), nil
		}
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(r.Bool), nil
	case ast.BoolXor:
		r, err := Eval(ec, env, n.Right)
		if err != nil {
			return sigmatype.Value{}, err
		}
		return sigmatype.NewBool(l.Bool != r.Bool), nil
	default:
		return sigmatype.Value{}, newErr(ErrNotImplemented, "unknown BoolOpKind %d", n.Kind)
	}
}

func evalAtleast(ec *EvalContext, env Env, n *ast.Atleast) (sigmatype.Value, error) {
	boundV, err := Eval(ec, env, n.Bound)
	if err != nil {
		return sigmatype.Value{}, err
	}
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	items := inputV.CollVal.AsSlice()
	children := make([]sigma.SigmaBoolean, len(items))
	for i, it := range items {
		children[i] = it.SigmaProp.(sigma.SigmaBoolean)
	}
	return sigmaPropValue(sigma.CThreshold(int(boundV.Int), children...)), nil
}

func evalByIndex(ec *EvalContext, env Env, n *ast.ByIndex) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idxV, err := Eval(ec, env, n.Index)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idx := int(idxV.Int)
	if idx < 0 || idx >= inputV.CollVal.Len() {
		if n.Default != nil {
			return Eval(ec, env, n.Default)
		}
		return sigmatype.Value{}, newErr(ErrIndexOutOfBounds, "ByIndex: index %d out of range [0,%d)", idx, inputV.CollVal.Len())
	}
	return inputV.CollVal.Get(idx)
}

func evalSlice(ec *EvalContext, env Env, n *ast.Slice) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fromV, err := Eval(ec, env, n.From)
	if err != nil {
		return sigmatype.Value{}, err
	}
	untilV, err := Eval(ec, env, n.Until)
	if err != nil {
		return sigmatype.Value{}, err
	}
	from, until := int(fromV.Int), int(untilV.Int)
	l := inputV.CollVal.Len()
	if from < 0 || until > l || from > until {
		return sigmatype.Value{}, newErr(ErrIndexOutOfBounds, "Slice: invalid range [%d,%d) for length %d", from, until, l)
	}
	if inputV.CollVal.Kind == sigmatype.CollKindBytes {
		return sigmatype.NewCollValue(sigmatype.NewByteColl(inputV.CollVal.Bytes[from:until])), nil
	}
	items := append([]sigmatype.Value{}, inputV.CollVal.Items[from:until]...)
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(inputV.CollVal.ElemType, items)), nil
}

func evalAppend(ec *EvalContext, env Env, n *ast.Append) (sigmatype.Value, error) {
	l, err := Eval(ec, env, n.Left)
	if err != nil {
		return sigmatype.Value{}, err
	}
	r, err := Eval(ec, env, n.Right)
	if err != nil {
		return sigmatype.Value{}, err
	}
	if l.CollVal.Kind == sigmatype.CollKindBytes && r.CollVal.Kind == sigmatype.CollKindBytes {
		out := append(append([]byte{}, l.CollVal.Bytes...), r.CollVal.Bytes...)
		return sigmatype.NewCollValue(sigmatype.NewByteColl(out)), nil
	}
	items := append(append([]sigmatype.Value{}, l.CollVal.AsSlice()...), r.CollVal.AsSlice()...)
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(l.CollVal.ElemType, items)), nil
}

func evalFold(ec *EvalContext, env Env, n *ast.Fold) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	acc, err := Eval(ec, env, n.Zero)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Folder)
	if err != nil {
		return sigmatype.Value{}, err
	}
	for _, it := range inputV.CollVal.AsSlice() {
		callEnv := env.Bind(fn.Args[0].Id, acc).Bind(fn.Args[1].Id, it)
		acc, err = Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
	}
	return acc, nil
}

func evalMap(ec *EvalContext, env Env, n *ast.Map) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Fn)
	if err != nil {
		return sigmatype.Value{}, err
	}
	items := inputV.CollVal.AsSlice()
	out := make([]sigmatype.Value, len(items))
	var rng sigmatype.SType
	for i, it := range items {
		callEnv := env.Bind(fn.Args[0].Id, it)
		v, err := Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
		out[i] = v
		rng = v.Type
	}
	if len(items) == 0 {
		rng = *n.Tpe().Elem
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(rng, out)), nil
}

func evalFilter(ec *EvalContext, env Env, n *ast.Filter) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Pred)
	if err != nil {
		return sigmatype.Value{}, err
	}
	var out []sigmatype.Value
	for _, it := range inputV.CollVal.AsSlice() {
		callEnv := env.Bind(fn.Args[0].Id, it)
		v, err := Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if v.Bool {
			out = append(out, it)
		}
	}
	if inputV.CollVal.Kind == sigmatype.CollKindBytes {
		buf := make([]byte, len(out))
		for i, v := range out {
			buf[i] = byte(v.Byte)
		}
		return sigmatype.NewCollValue(sigmatype.NewByteColl(buf)), nil
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(inputV.CollVal.ElemType, out)), nil
}

func evalExists(ec *EvalContext, env Env, n *ast.Exists) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Pred)
	if err != nil {
		return sigmatype.Value{}, err
	}
	for _, it := range inputV.CollVal.AsSlice() {
		callEnv := env.Bind(fn.Args[0].Id, it)
		v, err := Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if v.Bool {
			return sigmatype.NewBool(true), nil
		}
	}
	return sigmatype.NewBool(false), nil
}

func evalForAll(ec *EvalContext, env Env, n *ast.ForAll) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Pred)
	if err != nil {
		return sigmatype.Value{}, err
	}
	for _, it := range inputV.CollVal.AsSlice() {
		callEnv := env.Bind(fn.Args[0].Id, it)
		v, err := Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if !v.Bool {
			return sigmatype.NewBool(false), nil
		}
	}
	return sigmatype.NewBool(true), nil
}

func evalIndexOf(ec *EvalContext, env Env, n *ast.IndexOf) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	needleV, err := Eval(ec, env, n.Needle)
	if err != nil {
		return sigmatype.Value{}, err
	}
	for i, it := range inputV.CollVal.AsSlice() {
		if it.Eq(needleV) {
			return sigmatype.NewInt(int32(i)), nil
		}
	}
	return Eval(ec, env, n.Def)
}

func evalFlatmap(ec *EvalContext, env Env, n *ast.Flatmap) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fn, err := lambdaBody(ec, env, n.Fn)
	if err != nil {
		return sigmatype.Value{}, err
	}
	var out []sigmatype.Value
	elem := *n.Tpe().Elem
	for _, it := range inputV.CollVal.AsSlice() {
		callEnv := env.Bind(fn.Args[0].Id, it)
		v, err := Eval(ec, callEnv, fn.Body)
		if err != nil {
			return sigmatype.Value{}, err
		}
		out = append(out, v.CollVal.AsSlice()...)
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(elem, out)), nil
}

func evalZip(ec *EvalContext, env Env, n *ast.Zip) (sigmatype.Value, error) {
	l, err := Eval(ec, env, n.Left)
	if err != nil {
		return sigmatype.Value{}, err
	}
	r, err := Eval(ec, env, n.Right)
	if err != nil {
		return sigmatype.Value{}, err
	}
	ls, rs := l.CollVal.AsSlice(), r.CollVal.AsSlice()
	m := len(ls)
	if len(rs) < m {
		m = len(rs)
	}
	out := make([]sigmatype.Value, m)
	elem := *n.Tpe().Elem
	for i := 0; i < m; i++ {
		tup, err := sigmatype.NewTuple(ls[i], rs[i])
		if err != nil {
			return sigmatype.Value{}, err
		}
		out[i] = tup
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(elem, out)), nil
}

func evalPatch(ec *EvalContext, env Env, n *ast.Patch) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	fromV, err := Eval(ec, env, n.From)
	if err != nil {
		return sigmatype.Value{}, err
	}
	patchV, err := Eval(ec, env, n.Patch)
	if err != nil {
		return sigmatype.Value{}, err
	}
	replacedV, err := Eval(ec, env, n.Replaced)
	if err != nil {
		return sigmatype.Value{}, err
	}
	items := inputV.CollVal.AsSlice()
	from, replaced := int(fromV.Int), int(replacedV.Int)
	if from < 0 {
		from = 0
	}
	if from > len(items) {
		from = len(items)
	}
	to := from + replaced
	if to > len(items) {
		to = len(items)
	}
	out := append([]sigmatype.Value{}, items[:from]...)
	out = append(out, patchV.CollVal.AsSlice()...)
	out = append(out, items[to:]...)
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(inputV.CollVal.ElemType, out)), nil
}

func evalUpdated(ec *EvalContext, env Env, n *ast.Updated) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idxV, err := Eval(ec, env, n.Index)
	if err != nil {
		return sigmatype.Value{}, err
	}
	valV, err := Eval(ec, env, n.Value)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idx := int(idxV.Int)
	items := append([]sigmatype.Value{}, inputV.CollVal.AsSlice()...)
	if idx < 0 || idx >= len(items) {
		return sigmatype.Value{}, newErr(ErrIndexOutOfBounds, "Updated: index %d out of range [0,%d)", idx, len(items))
	}
	items[idx] = valV
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(inputV.CollVal.ElemType, items)), nil
}

func evalUpdateMany(ec *EvalContext, env Env, n *ast.UpdateMany) (sigmatype.Value, error) {
	inputV, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idxV, err := Eval(ec, env, n.Indices)
	if err != nil {
		return sigmatype.Value{}, err
	}
	valsV, err := Eval(ec, env, n.Values)
	if err != nil {
		return sigmatype.Value{}, err
	}
	idxs, vals := idxV.CollVal.AsSlice(), valsV.CollVal.AsSlice()
	if len(idxs) != len(vals) {
		return sigmatype.Value{}, newErr(ErrInvalidArgument, "UpdateMany: indices and values length mismatch: %d vs %d", len(idxs), len(vals))
	}
	items := append([]sigmatype.Value{}, inputV.CollVal.AsSlice()...)
	for i := range idxs {
		idx := int(idxs[i].Int)
		if idx < 0 || idx >= len(items) {
			return sigmatype.Value{}, newErr(ErrIndexOutOfBounds, "UpdateMany: index %d out of range [0,%d)", idx, len(items))
		}
		items[idx] = vals[i]
	}
	return sigmatype.NewCollValue(sigmatype.NewBoxedColl(inputV.CollVal.ElemType, items)), nil
}

// lambdaBody evaluates fnExpr down to its *ast.FuncValue so collection
// operators can bind its formal arguments directly rather than going
// through Apply.
func lambdaBody(ec *EvalContext, env Env, fnExpr ast.Expr) (*ast.FuncValue, error) {
	v, err := Eval(ec, env, fnExpr)
	if err != nil {
		return nil, err
	}
	if v.LambdaVal == nil {
		return nil, newErr(ErrTypeMismatch, "expected a function value")
	}
	fn, ok := v.LambdaVal.Body.(*ast.FuncValue)
	if !ok {
		return nil, newErr(ErrTypeMismatch, "lambda body is not a FuncValue")
	}
	return fn, nil
}

func evalExtractRegisterAs(ec *EvalContext, env Env, n *ast.ExtractRegisterAs) (sigmatype.Value, error) {
	v, err := Eval(ec, env, n.Input)
	if err != nil {
		return sigmatype.Value{}, err
	}
	reg, ok := v.BoxVal.Registers[n.RegId]
	if !ok {
		return sigmatype.NewNone(n.Elem), nil
	}
	if reg.RawOnly {
		return sigmatype.NewNone(n.Elem), nil
	}
	if !reg.Type.Eq(n.Elem) {
		return sigmatype.NewNone(n.Elem), nil
	}
	return sigmatype.NewOption(reg.Val), nil
}

func evalSigmaConj(ec *EvalContext, env Env, n *ast.SigmaConj) (sigmatype.Value, error) {
	children := make([]sigma.SigmaBoolean, len(n.Items))
	for i, it := range n.Items {
		v, err := Eval(ec, env, it)
		if err != nil {
			return sigmatype.Value{}, err
		}
		children[i] = v.SigmaProp.(sigma.SigmaBoolean)
	}
	if n.Kind == ast.SigmaConjAnd {
		return sigmaPropValue(sigma.Cand(children...)), nil
	}
	return sigmaPropValue(sigma.Cor(children...)), nil
}

func evalMethodCall(ec *EvalContext, env Env, n *ast.MethodCall) (sigmatype.Value, error) {
	obj, err := Eval(ec, env, n.Obj)
	if err != nil {
		return sigmatype.Value{}, err
	}
	args := make([]sigmatype.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ec, env, a)
		if err != nil {
			return sigmatype.Value{}, err
		}
		args[i] = v
	}
	switch n.Method {
	case "getOrElse":
		if obj.Type.Kind == sigmatype.KindOption {
			if obj.OptVal != nil {
				return *obj.OptVal, nil
			}
			return args[0], nil
		}
	case "slice":
		if obj.Type.Kind == sigmatype.KindColl && len(args) == 2 {
			from, until := int(args[0].Int), int(args[1].Int)
			items := obj.CollVal.AsSlice()
			if from < 0 || until > len(items) || from > until {
				return sigmatype.Value{}, newErr(ErrIndexOutOfBounds, "slice: invalid range [%d,%d) for length %d", from, until, len(items))
			}
			return sigmatype.NewCollValue(sigmatype.NewBoxedColl(obj.CollVal.ElemType, items[from:until])), nil
		}
	}
	return sigmatype.Value{}, newErr(ErrNotImplemented, "method %s not implemented for %s", n.Method, obj.Type)
}

func evalPropertyCall(ec *EvalContext, env Env, n *ast.PropertyCall) (sigmatype.Value, error) {
	obj, err := Eval(ec, env, n.Obj)
	if err != nil {
		return sigmatype.Value{}, err
	}
	switch obj.Type.Kind {
	case sigmatype.KindContext:
		switch n.Property {
		case "dataInputs":
			return boxesValue(obj.ContextVal.DataInputs), nil
		case "selfBoxIndex":
			return sigmatype.NewInt(int32(obj.ContextVal.SelfIndex)), nil
		case "preHeader":
			return sigmatype.Value{Type: sigmatype.SPreHeader, PreHeaderVal: obj.ContextVal.PreHeader}, nil
		case "headers":
			items := make([]sigmatype.Value, len(obj.ContextVal.Headers))
			for i, h := range obj.ContextVal.Headers {
				items[i] = sigmatype.Value{Type: sigmatype.SHeader, HeaderVal: h}
			}
			return sigmatype.NewCollValue(sigmatype.NewBoxedColl(sigmatype.SHeader, items)), nil
		}
	case sigmatype.KindHeader:
		switch n.Property {
		case "id":
			return sigmatype.NewCollValue(sigmatype.NewByteColl(obj.HeaderVal.Id.Bytes())), nil
		case "height":
			return sigmatype.NewInt(int32(obj.HeaderVal.Height)), nil
		case "timestamp":
			return sigmatype.NewLong(int64(obj.HeaderVal.Timestamp)), nil
		}
	case sigmatype.KindAvlTree:
		switch n.Property {
		case "digest":
			return sigmatype.NewCollValue(sigmatype.NewByteColl(obj.AvlTreeVal.Digest())), nil
		case "keyLength":
			return sigmatype.NewInt(obj.AvlTreeVal.KeyLength()), nil
		}
	}
	return sigmatype.Value{}, newErr(ErrNotImplemented, "property %s not implemented for %s", n.Property, obj.Type)
}

func evalDeserializeRegister(ec *EvalContext, env Env, n *ast.DeserializeRegister) (sigmatype.Value, error) {
	reg, ok := ec.Ctx.Self.Registers[n.RegId]
	if !ok {
		if n.Default != nil {
			return Eval(ec, env, n.Default)
		}
		return sigmatype.Value{}, newErr(ErrNotFound, "DeserializeRegister: register %d absent", n.RegId)
	}
	raw := reg.Raw
	if !reg.RawOnly {
		raw = reg.Val.CollVal.Bytes
	}
	expr, err := parseExprBytes(raw)
	if err != nil {
		return sigmatype.Value{}, newErr(ErrDeserializeFailed, "DeserializeRegister: %v", err)
	}
	return Eval(ec, env, expr)
}

func evalDeserializeContext(ec *EvalContext, n *ast.DeserializeContext) (sigmatype.Value, error) {
	v, ok := ec.Ctx.Extension[n.Id]
	if !ok {
		return sigmatype.Value{}, newErr(ErrNotFound, "DeserializeContext: extension var %d absent", n.Id)
	}
	expr, err := parseExprBytes(v.CollVal.Bytes)
	if err != nil {
		return sigmatype.Value{}, newErr(ErrDeserializeFailed, "DeserializeContext: %v", err)
	}
	return Eval(ec, NewEnv(), expr)
}

func parseExprBytes(raw []byte) (ast.Expr, error) {
	r := serialization.NewReader(raw)
	store := serialization.NewConstantStoreWithConstants(nil, true)
	return ergotree.ReadExpr(r, store)
}

func evalTreeLookup(ec *EvalContext, env Env, n *ast.TreeLookup) (sigmatype.Value, error) {
	treeV, err := Eval(ec, env, n.Tree)
	if err != nil {
		return sigmatype.Value{}, err
	}
	keyV, err := Eval(ec, env, n.Key)
	if err != nil {
		return sigmatype.Value{}, err
	}
	proofV, err := Eval(ec, env, n.Proof)
	if err != nil {
		return sigmatype.Value{}, err
	}
	kp, err := avltree.DecodeProof(keyV.CollVal.Bytes, proofV.CollVal.Bytes)
	if err != nil {
		return sigmatype.NewNone(sigmatype.SColl(sigmatype.SByte)), nil
	}
	val, ok := treeV.AvlTreeVal.Lookup(keyV.CollVal.Bytes, kp)
	if !ok {
		return sigmatype.NewNone(sigmatype.SColl(sigmatype.SByte)), nil
	}
	return sigmatype.NewOption(sigmatype.NewCollValue(sigmatype.NewByteColl(val))), nil
}

func evalCreateAvlTree(ec *EvalContext, env Env, n *ast.CreateAvlTree) (sigmatype.Value, error) {
	flagsV, err := Eval(ec, env, n.Flags)
	if err != nil {
		return sigmatype.Value{}, err
	}
	digestV, err := Eval(ec, env, n.Digest)
	if err != nil {
		return sigmatype.Value{}, err
	}
	keyLenV, err := Eval(ec, env, n.KeyLength)
	if err != nil {
		return sigmatype.Value{}, err
	}
	var valueLenOpt *int32
	if n.ValueLenOpt != nil {
		v, err := Eval(ec, env, n.ValueLenOpt)
		if err != nil {
			return sigmatype.Value{}, err
		}
		if v.OptVal != nil {
			l := v.OptVal.Int
			valueLenOpt = &l
		}
	}
	fb := byte(flagsV.Byte)
	flags := avltree.Flags{Insert: fb&1 != 0, Update: fb&2 != 0, Remove: fb&4 != 0}
	t, err := avltree.New(digestV.CollVal.Bytes, keyLenV.Int, valueLenOpt, flags)
	if err != nil {
		return sigmatype.Value{}, newErr(ErrInvalidArgument, "CreateAvlTree: %v", err)
	}
	return sigmatype.Value{Type: sigmatype.SAvlTree, AvlTreeVal: t}, nil
}

func evalSubstConstants(ec *EvalContext, env Env, n *ast.SubstConstants) (sigmatype.Value, error) {
	scriptV, err := Eval(ec, env, n.ScriptBytes)
	if err != nil {
		return sigmatype.Value{}, err
	}
	positionsV, err := Eval(ec, env, n.Positions)
	if err != nil {
		return sigmatype.Value{}, err
	}
	valuesV, err := Eval(ec, env, n.NewValues)
	if err != nil {
		return sigmatype.Value{}, err
	}
	tree, err := ergotree.Parse(scriptV.CollVal.Bytes)
	if err != nil {
		return sigmatype.Value{}, newErr(ErrDeserializeFailed, "SubstConstants: %v", err)
	}
	positions, values := positionsV.CollVal.AsSlice(), valuesV.CollVal.AsSlice()
	if len(positions) != len(values) {
		return sigmatype.Value{}, newErr(ErrInvalidArgument, "SubstConstants: positions and values length mismatch")
	}
	for i, p := range positions {
		if err := tree.SetConstant(int(p.Int), values[i]); err != nil {
			return sigmatype.Value{}, newErr(ErrInvalidArgument, "SubstConstants: %v", err)
		}
	}
	return sigmatype.NewCollValue(sigmatype.NewByteColl(tree.Bytes())), nil
}

// boxCanonicalBytes renders a minimal canonical encoding of a box's fields,
// used by ExtractBytes/ExtractBytesWithNoRef. This module's own box wire
// layout is defined fully in package chain; evaluating these two MIR nodes
// only needs a stable, self-consistent byte string, not cross-module reuse.
func boxCanonicalBytes(b sigmatype.Box, withRef bool) []byte {
	var buf bytes.Buffer
	amount := make([]byte, 8)
	v := b.Value.Uint64()
	for i := 7; i >= 0; i-- {
		amount[i] = byte(v)
		v >>= 8
	}
	buf.Write(amount)
	buf.Write(b.ErgoTreeBytes)
	height := make([]byte, 4)
	h := b.CreationHeight
	for i := 3; i >= 0; i-- {
		height[i] = byte(h)
		h >>= 8
	}
	buf.Write(height)
	for _, t := range b.Tokens {
		buf.Write(t.Id.Bytes())
	}
	if withRef {
		buf.Write(b.TransactionId.Bytes())
		buf.WriteByte(byte(b.Index >> 8))
		buf.WriteByte(byte(b.Index))
	}
	return buf.Bytes()
}
