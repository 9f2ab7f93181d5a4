package ergotree

import (
	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/serialization"
)

func putString(w *serialization.Writer, s string) {
	b := []byte(s)
	w.PutVLQUint32(uint32(len(b)))
	w.PutBytes(b)
}

func getString(r *serialization.Reader) (string, error) {
	n, err := r.GetVLQUint32()
	if err != nil {
		return "", err
	}
	b, err := r.GetBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteExpr serializes e recursively. When segregate is true, every Const
// node encountered is hoisted into store and replaced on the wire by a
// ConstantPlaceholder, the write half of spec §5's constant segregation;
// when false, Const nodes are written inline and store is only consulted
// for pre-existing ConstantPlaceholder nodes (there are none to hoist, so
// this is the "no segregation" framing).
func WriteExpr(w *serialization.Writer, store *serialization.ConstantStore, segregate bool, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Const:
		if segregate {
			idx := store.Put(n.Value)
			w.PutU8(byte(opConstantPlaceholder))
			w.PutVLQUint32(idx)
			return serialization.WriteType(w, n.Value.Type)
		}
		w.PutU8(byte(opConst))
		return serialization.WriteConstant(w, n.Value)

	case *ast.ConstantPlaceholder:
		w.PutU8(byte(opConstantPlaceholder))
		w.PutVLQUint32(n.Index)
		return serialization.WriteType(w, n.Type)

	case *ast.GlobalVars:
		w.PutU8(byte(opGlobalVars))
		w.PutU8(byte(n.Kind))
		return nil

	case *ast.ValDef:
		w.PutU8(byte(opValDef))
		w.PutVLQUint32(uint32(n.Id))
		return WriteExpr(w, store, segregate, n.Rhs)

	case *ast.ValUse:
		w.PutU8(byte(opValUse))
		w.PutVLQUint32(uint32(n.Id))
		return serialization.WriteType(w, n.Tpe())

	case *ast.BlockValue:
		w.PutU8(byte(opBlockValue))
		w.PutVLQUint32(uint32(len(n.Items)))
		for _, it := range n.Items {
			if err := WriteExpr(w, store, segregate, it); err != nil {
				return err
			}
		}
		return WriteExpr(w, store, segregate, n.Result)

	case *ast.FuncValue:
		w.PutU8(byte(opFuncValue))
		w.PutVLQUint32(uint32(len(n.Args)))
		for _, a := range n.Args {
			w.PutVLQUint32(uint32(a.Id))
			if err := serialization.WriteType(w, a.Tpe); err != nil {
				return err
			}
		}
		return WriteExpr(w, store, segregate, n.Body)

	case *ast.Apply:
		w.PutU8(byte(opApply))
		if err := WriteExpr(w, store, segregate, n.Func); err != nil {
			return err
		}
		w.PutVLQUint32(uint32(len(n.Args)))
		return writeExprs(w, store, segregate, n.Args)

	case *ast.If:
		w.PutU8(byte(opIf))
		return writeChildren(w, store, segregate, n.Cond, n.Then, n.Else)

	case *ast.LogicalNot:
		w.PutU8(byte(opLogicalNot))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.BinaryBoolOp:
		w.PutU8(byte(opBinaryBoolOp))
		w.PutU8(byte(n.Kind))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.Atleast:
		w.PutU8(byte(opAtleast))
		return writeChildren(w, store, segregate, n.Bound, n.Input)

	case *ast.ArithOp:
		w.PutU8(byte(opArithOp))
		w.PutU8(byte(n.Kind))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.RelOp:
		w.PutU8(byte(opRelOp))
		w.PutU8(byte(n.Kind))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.UnaryNumOp:
		w.PutU8(byte(opUnaryNumOp))
		w.PutU8(byte(n.Kind))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.Upcast:
		w.PutU8(byte(opUpcast))
		if err := serialization.WriteType(w, n.To); err != nil {
			return err
		}
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.Downcast:
		w.PutU8(byte(opDowncast))
		if err := serialization.WriteType(w, n.To); err != nil {
			return err
		}
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.LongToByteArray:
		w.PutU8(byte(opLongToByteArray))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ByteArrayToLong:
		w.PutU8(byte(opByteArrayToLong))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ByteArrayToBigInt:
		w.PutU8(byte(opByteArrayToBigInt))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.Collection:
		w.PutU8(byte(opCollection))
		if err := serialization.WriteType(w, n.ElemType); err != nil {
			return err
		}
		w.PutVLQUint32(uint32(len(n.Items)))
		return writeExprs(w, store, segregate, n.Items)

	case *ast.ByIndex:
		w.PutU8(byte(opByIndex))
		if err := writeChildren(w, store, segregate, n.Input, n.Index); err != nil {
			return err
		}
		return writeOptExpr(w, store, segregate, n.Default)

	case *ast.SizeOf:
		w.PutU8(byte(opSizeOf))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.Slice:
		w.PutU8(byte(opSlice))
		return writeChildren(w, store, segregate, n.Input, n.From, n.Until)

	case *ast.Append:
		w.PutU8(byte(opAppend))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.Fold:
		w.PutU8(byte(opFold))
		return writeChildren(w, store, segregate, n.Input, n.Zero, n.Folder)

	case *ast.Map:
		w.PutU8(byte(opMap))
		return writeChildren(w, store, segregate, n.Input, n.Fn)

	case *ast.Filter:
		w.PutU8(byte(opFilter))
		return writeChildren(w, store, segregate, n.Input, n.Pred)

	case *ast.Exists:
		w.PutU8(byte(opExists))
		return writeChildren(w, store, segregate, n.Input, n.Pred)

	case *ast.ForAll:
		w.PutU8(byte(opForAll))
		return writeChildren(w, store, segregate, n.Input, n.Pred)

	case *ast.IndexOf:
		w.PutU8(byte(opIndexOf))
		return writeChildren(w, store, segregate, n.Input, n.Needle, n.Def)

	case *ast.Flatmap:
		w.PutU8(byte(opFlatmap))
		return writeChildren(w, store, segregate, n.Input, n.Fn)

	case *ast.Zip:
		w.PutU8(byte(opZip))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.Indices:
		w.PutU8(byte(opIndices))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.Patch:
		w.PutU8(byte(opPatch))
		return writeChildren(w, store, segregate, n.Input, n.From, n.Patch, n.Replaced)

	case *ast.Updated:
		w.PutU8(byte(opUpdated))
		return writeChildren(w, store, segregate, n.Input, n.Index, n.Value)

	case *ast.UpdateMany:
		w.PutU8(byte(opUpdateMany))
		return writeChildren(w, store, segregate, n.Input, n.Indices, n.Values)

	case *ast.XorOf:
		w.PutU8(byte(opXorOf))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.OptionGet:
		w.PutU8(byte(opOptionGet))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.OptionIsDefined:
		w.PutU8(byte(opOptionIsDefined))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.OptionGetOrElse:
		w.PutU8(byte(opOptionGetOrElse))
		return writeChildren(w, store, segregate, n.Input, n.Def)

	case *ast.Tuple:
		w.PutU8(byte(opTuple))
		w.PutVLQUint32(uint32(len(n.Items)))
		return writeExprs(w, store, segregate, n.Items)

	case *ast.SelectField:
		w.PutU8(byte(opSelectField))
		w.PutByte(int8(n.Field))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractAmount:
		w.PutU8(byte(opExtractAmount))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractRegisterAs:
		w.PutU8(byte(opExtractRegisterAs))
		w.PutByte(int8(n.RegId))
		if err := serialization.WriteType(w, n.Elem); err != nil {
			return err
		}
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractScriptBytes:
		w.PutU8(byte(opExtractScriptBytes))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractBytes:
		w.PutU8(byte(opExtractBytes))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractBytesWithNoRef:
		w.PutU8(byte(opExtractBytesWithNoRef))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractCreationInfo:
		w.PutU8(byte(opExtractCreationInfo))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ExtractId:
		w.PutU8(byte(opExtractId))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.CalcHash:
		w.PutU8(byte(opCalcHash))
		w.PutU8(byte(n.Kind))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.BoolToSigmaProp:
		w.PutU8(byte(opBoolToSigmaProp))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.CreateProveDlog:
		w.PutU8(byte(opCreateProveDlog))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.CreateProveDhTuple:
		w.PutU8(byte(opCreateProveDhTuple))
		return writeChildren(w, store, segregate, n.G, n.H, n.U, n.V)

	case *ast.SigmaConj:
		w.PutU8(byte(opSigmaConj))
		w.PutU8(byte(n.Kind))
		w.PutVLQUint32(uint32(len(n.Items)))
		return writeExprs(w, store, segregate, n.Items)

	case *ast.SigmaPropBytes:
		w.PutU8(byte(opSigmaPropBytes))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.MultiplyGroup:
		w.PutU8(byte(opMultiplyGroup))
		return writeChildren(w, store, segregate, n.Left, n.Right)

	case *ast.Exponentiate:
		w.PutU8(byte(opExponentiate))
		return writeChildren(w, store, segregate, n.Base, n.Exponent)

	case *ast.DecodePoint:
		w.PutU8(byte(opDecodePoint))
		return WriteExpr(w, store, segregate, n.Input)

	case *ast.ContextRef:
		w.PutU8(byte(opContextRef))
		return nil

	case *ast.GlobalRef:
		w.PutU8(byte(opGlobalRef))
		return nil

	case *ast.GetVar:
		w.PutU8(byte(opGetVar))
		w.PutByte(int8(n.VarId))
		return serialization.WriteType(w, n.Elem)

	case *ast.MethodCall:
		w.PutU8(byte(opMethodCall))
		putString(w, n.Method)
		if err := serialization.WriteType(w, n.Result); err != nil {
			return err
		}
		if err := WriteExpr(w, store, segregate, n.Obj); err != nil {
			return err
		}
		w.PutVLQUint32(uint32(len(n.Args)))
		return writeExprs(w, store, segregate, n.Args)

	case *ast.PropertyCall:
		w.PutU8(byte(opPropertyCall))
		putString(w, n.Property)
		if err := serialization.WriteType(w, n.Result); err != nil {
			return err
		}
		return WriteExpr(w, store, segregate, n.Obj)

	case *ast.DeserializeRegister:
		w.PutU8(byte(opDeserializeRegister))
		w.PutByte(int8(n.RegId))
		if err := serialization.WriteType(w, n.Elem); err != nil {
			return err
		}
		return writeOptExpr(w, store, segregate, n.Default)

	case *ast.DeserializeContext:
		w.PutU8(byte(opDeserializeContext))
		w.PutByte(int8(n.Id))
		return serialization.WriteType(w, n.Elem)

	case *ast.TreeLookup:
		w.PutU8(byte(opTreeLookup))
		return writeChildren(w, store, segregate, n.Tree, n.Key, n.Proof)

	case *ast.CreateAvlTree:
		w.PutU8(byte(opCreateAvlTree))
		if err := writeChildren(w, store, segregate, n.Flags, n.Digest, n.KeyLength); err != nil {
			return err
		}
		return writeOptExpr(w, store, segregate, n.ValueLenOpt)

	case *ast.SubstConstants:
		w.PutU8(byte(opSubstConstants))
		return writeChildren(w, store, segregate, n.ScriptBytes, n.Positions, n.NewValues)

	default:
		return newErr(ErrNotImplemented, "no serializer registered for %T", e)
	}
}

func writeChildren(w *serialization.Writer, store *serialization.ConstantStore, segregate bool, es ...ast.Expr) error {
	return writeExprs(w, store, segregate, es)
}

func writeExprs(w *serialization.Writer, store *serialization.ConstantStore, segregate bool, es []ast.Expr) error {
	for _, e := range es {
		if err := WriteExpr(w, store, segregate, e); err != nil {
			return err
		}
	}
	return nil
}

// writeOptExpr writes a presence flag followed by the expression, for the
// handful of nodes whose trailing operand is optional (ByIndex.Default,
// DeserializeRegister.Default, CreateAvlTree.ValueLenOpt).
func writeOptExpr(w *serialization.Writer, store *serialization.ConstantStore, segregate bool, e ast.Expr) error {
	if e == nil {
		w.PutU8(0)
		return nil
	}
	w.PutU8(1)
	return WriteExpr(w, store, segregate, e)
}

func readOptExpr(r *serialization.Reader, store *serialization.ConstantStore) (ast.Expr, error) {
	present, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	return ReadExpr(r, store)
}

// ReadExpr parses one expression node, resolving ConstantPlaceholder nodes
// against store inline when store.Substitute() is true, and leaving them
// as placeholders otherwise (template-matching mode, spec §5).
func ReadExpr(r *serialization.Reader, store *serialization.ConstantStore) (ast.Expr, error) {
	tag, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	op := opCode(tag)
	switch op {
	case opConst:
		v, err := serialization.ReadConstant(r)
		if err != nil {
			return nil, err
		}
		return ast.NewConst(v), nil

	case opConstantPlaceholder:
		idx, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		t, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		if store != nil && store.Substitute() {
			v, err := store.Get(idx)
			if err != nil {
				return nil, err
			}
			return ast.NewConst(v), nil
		}
		return ast.NewConstantPlaceholder(idx, t), nil

	case opGlobalVars:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		gv, err := ast.NewGlobalVars(ast.GlobalVarKind(k))
		if err != nil {
			return nil, err
		}
		return gv, nil

	case opValDef:
		id, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		rhs, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewValDef(int32(id), rhs), nil

	case opValUse:
		id, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		t, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		return ast.NewValUse(int32(id), t), nil

	case opBlockValue:
		n, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		items := make([]*ast.ValDef, n)
		for i := range items {
			e, err := ReadExpr(r, store)
			if err != nil {
				return nil, err
			}
			vd, ok := e.(*ast.ValDef)
			if !ok {
				return nil, newErr(ErrInvalidOpCode, "BlockValue item %d is not a ValDef", i)
			}
			items[i] = vd
		}
		result, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewBlockValue(items, result), nil

	case opFuncValue:
		n, err := r.GetVLQUint32()
		if err != nil {
			return nil, err
		}
		args := make([]ast.FuncArg, n)
		for i := range args {
			id, err := r.GetVLQUint32()
			if err != nil {
				return nil, err
			}
			t, err := serialization.ReadType(r)
			if err != nil {
				return nil, err
			}
			args[i] = ast.FuncArg{Id: int32(id), Tpe: t}
		}
		body, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewFuncValue(args, body), nil

	case opApply:
		fn, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		args, err := readExprN(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewApply(fn, args)

	case opIf:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewIf(es[0], es[1], es[2])

	case opLogicalNot:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewLogicalNot(in)

	case opBinaryBoolOp:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryBoolOp(ast.BoolOpKind(k), es[0], es[1])

	case opAtleast:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewAtleast(es[0], es[1])

	case opArithOp:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewArithOp(ast.ArithOpKind(k), es[0], es[1])

	case opRelOp:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewRelOp(ast.RelOpKind(k), es[0], es[1])

	case opUnaryNumOp:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryNumOp(ast.UnaryNumOpKind(k), in)

	case opUpcast:
		to, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewUpcast(in, to)

	case opDowncast:
		to, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewDowncast(in, to)

	case opLongToByteArray:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewLongToByteArray(in)

	case opByteArrayToLong:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewByteArrayToLong(in)

	case opByteArrayToBigInt:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewByteArrayToBigInt(in)

	case opCollection:
		elem, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		items, err := readExprN(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewCollection(elem, items)

	case opByIndex:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		def, err := readOptExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewByIndex(es[0], es[1], def)

	case opSizeOf:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewSizeOf(in)

	case opSlice:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewSlice(es[0], es[1], es[2])

	case opAppend:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewAppend(es[0], es[1])

	case opFold:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewFold(es[0], es[1], es[2])

	case opMap:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewMap(es[0], es[1])

	case opFilter:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewFilter(es[0], es[1])

	case opExists:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewExists(es[0], es[1])

	case opForAll:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewForAll(es[0], es[1])

	case opIndexOf:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewIndexOf(es[0], es[1], es[2])

	case opFlatmap:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewFlatmap(es[0], es[1])

	case opZip:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewZip(es[0], es[1])

	case opIndices:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewIndices(in)

	case opPatch:
		es, err := readExprFixed(r, store, 4)
		if err != nil {
			return nil, err
		}
		return ast.NewPatch(es[0], es[1], es[2], es[3])

	case opUpdated:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewUpdated(es[0], es[1], es[2])

	case opUpdateMany:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewUpdateMany(es[0], es[1], es[2])

	case opXorOf:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewXorOf(in)

	case opOptionGet:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewOptionGet(in)

	case opOptionIsDefined:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewOptionIsDefined(in)

	case opOptionGetOrElse:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewOptionGetOrElse(es[0], es[1])

	case opTuple:
		items, err := readExprN(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewTuple(items)

	case opSelectField:
		f, err := r.GetByte()
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewSelectField(in, byte(f))

	case opExtractAmount:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractAmount(in)

	case opExtractRegisterAs:
		regId, err := r.GetByte()
		if err != nil {
			return nil, err
		}
		elem, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractRegisterAs(in, byte(regId), elem)

	case opExtractScriptBytes:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractScriptBytes(in)

	case opExtractBytes:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractBytes(in)

	case opExtractBytesWithNoRef:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractBytesWithNoRef(in)

	case opExtractCreationInfo:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractCreationInfo(in)

	case opExtractId:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewExtractId(in)

	case opCalcHash:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewCalcHash(ast.HashOpKind(k), in)

	case opBoolToSigmaProp:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewBoolToSigmaProp(in)

	case opCreateProveDlog:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewCreateProveDlog(in)

	case opCreateProveDhTuple:
		es, err := readExprFixed(r, store, 4)
		if err != nil {
			return nil, err
		}
		return ast.NewCreateProveDhTuple(es[0], es[1], es[2], es[3])

	case opSigmaConj:
		k, err := r.GetU8()
		if err != nil {
			return nil, err
		}
		items, err := readExprN(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewSigmaConj(ast.SigmaConjKind(k), items)

	case opSigmaPropBytes:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewSigmaPropBytes(in)

	case opMultiplyGroup:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewMultiplyGroup(es[0], es[1])

	case opExponentiate:
		es, err := readExprFixed(r, store, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewExponentiate(es[0], es[1])

	case opDecodePoint:
		in, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewDecodePoint(in)

	case opContextRef:
		return ast.NewContextRef(), nil

	case opGlobalRef:
		return ast.NewGlobalRef(), nil

	case opGetVar:
		varId, err := r.GetByte()
		if err != nil {
			return nil, err
		}
		elem, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		return ast.NewGetVar(byte(varId), elem), nil

	case opMethodCall:
		method, err := getString(r)
		if err != nil {
			return nil, err
		}
		result, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		obj, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		args, err := readExprN(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewMethodCall(obj, method, args, result), nil

	case opPropertyCall:
		property, err := getString(r)
		if err != nil {
			return nil, err
		}
		result, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		obj, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewPropertyCall(obj, property, result), nil

	case opDeserializeRegister:
		regId, err := r.GetByte()
		if err != nil {
			return nil, err
		}
		elem, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		def, err := readOptExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewDeserializeRegister(byte(regId), elem, def)

	case opDeserializeContext:
		id, err := r.GetByte()
		if err != nil {
			return nil, err
		}
		elem, err := serialization.ReadType(r)
		if err != nil {
			return nil, err
		}
		return ast.NewDeserializeContext(byte(id), elem), nil

	case opTreeLookup:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewTreeLookup(es[0], es[1], es[2])

	case opCreateAvlTree:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		valueLenOpt, err := readOptExpr(r, store)
		if err != nil {
			return nil, err
		}
		return ast.NewCreateAvlTree(es[0], es[1], es[2], valueLenOpt)

	case opSubstConstants:
		es, err := readExprFixed(r, store, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewSubstConstants(es[0], es[1], es[2])

	default:
		return nil, newErr(ErrInvalidOpCode, "unknown op code %d", tag)
	}
}

func readExprFixed(r *serialization.Reader, store *serialization.ConstantStore, n int) ([]ast.Expr, error) {
	out := make([]ast.Expr, n)
	for i := range out {
		e, err := ReadExpr(r, store)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func readExprN(r *serialization.Reader, store *serialization.ConstantStore) ([]ast.Expr, error) {
	n, err := r.GetVLQUint32()
	if err != nil {
		return nil, err
	}
	return readExprFixed(r, store, int(n))
}
