package eval

import "ergotree.dev/sigmachain/sigmatype"

// defaultCostLimit mirrors the teacher's block-validation cost ceiling in
// spirit: a generous but finite budget so a pathological script fails
// fast instead of looping the evaluator forever.
const defaultCostLimit = 1_000_000

// perNodeCost is charged once per evaluated expression node. Spec
// component F does not pin a real per-opcode cost table (that is a
// protocol parameter outside this module's scope); a flat per-node charge
// is this module's own simplification, enough to bound pathological
// Fold/Map-over-huge-collection scripts without claiming to reproduce
// Ergo's real cost model.
const perNodeCost = 1

// CostAccumulator tracks evaluation cost spent against a fixed limit,
// failing the moment the limit would be exceeded rather than after the
// fact.
type CostAccumulator struct {
	spent uint64
	limit uint64
}

// NewCostAccumulator returns an accumulator with the given limit (0 means
// defaultCostLimit).
func NewCostAccumulator(limit uint64) *CostAccumulator {
	if limit == 0 {
		limit = defaultCostLimit
	}
	return &CostAccumulator{limit: limit}
}

// Add charges n against the budget, failing if doing so would exceed it.
func (c *CostAccumulator) Add(n uint64) error {
	if c.spent+n > c.limit {
		return newErr(ErrCostLimitExceeded, "evaluation cost %d exceeds limit %d", c.spent+n, c.limit)
	}
	c.spent += n
	return nil
}

// Spent returns the cost charged so far.
func (c *CostAccumulator) Spent() uint64 { return c.spent }

// EvalContext bundles everything one evaluation pass needs beyond the
// expression tree itself: the blockchain Context a script observes, a cost
// budget, and a StrictTypeCheck flag (true by default). Eval does not read
// StrictTypeCheck: evaluation is the same whichever value it holds.
type EvalContext struct {
	Ctx             sigmatype.Context
	Cost            *CostAccumulator
	StrictTypeCheck bool
}

// NewEvalContext builds an EvalContext with a fresh cost accumulator.
func NewEvalContext(ctx sigmatype.Context, costLimit uint64) *EvalContext {
	return &EvalContext{Ctx: ctx, Cost: NewCostAccumulator(costLimit), StrictTypeCheck: true}
}

// Env is the immutable chain of ValDef/FuncArg bindings visible at one
// point in the tree, keyed by the ErgoTree-wide unique value id.
type Env struct {
	bindings map[int32]sigmatype.Value
}

// NewEnv returns an empty environment.
func NewEnv() Env {
	return Env{bindings: map[int32]sigmatype.Value{}}
}

// Bind returns a new Env extending e with id bound to v, leaving e itself
// unmodified so sibling branches never observe each other's bindings.
func (e Env) Bind(id int32, v sigmatype.Value) Env {
	next := make(map[int32]sigmatype.Value, len(e.bindings)+1)
	for k, val := range e.bindings {
		next[k] = val
	}
	next[id] = v
	return Env{bindings: next}
}

// Lookup resolves id, failing if it is not bound (a ValUse with no
// enclosing ValDef/FuncArg, which well-typed trees never produce).
func (e Env) Lookup(id int32) (sigmatype.Value, error) {
	v, ok := e.bindings[id]
	if !ok {
		return sigmatype.Value{}, newErr(ErrNotFound, "unbound value id %d", id)
	}
	return v, nil
}
