package eval

import (
	"ergotree.dev/sigmachain/ast"
	"ergotree.dev/sigmachain/sigma"
	"ergotree.dev/sigmachain/sigmatype"
)

// ReduceToCrypto evaluates e and coerces the result to a SigmaBoolean: a
// Boolean result lifts to TrivialProp so spending validation always
// verifies a sigma-proposition, whether or not the guarding script ever
// mentions a SigmaProp type directly.
func ReduceToCrypto(ec *EvalContext, env Env, e ast.Expr) (sigma.SigmaBoolean, error) {
	v, err := Eval(ec, env, e)
	if err != nil {
		return sigma.SigmaBoolean{}, err
	}
	switch v.Type.Kind {
	case sigmatype.KindBoolean:
		return sigma.TrivialProp(v.Bool), nil
	case sigmatype.KindSigmaProp:
		sb, ok := v.SigmaProp.(sigma.SigmaBoolean)
		if !ok {
			return sigma.SigmaBoolean{}, newErr(ErrTypeMismatch, "SigmaProp value does not hold a sigma.SigmaBoolean")
		}
		return sb, nil
	default:
		return sigma.SigmaBoolean{}, newErr(ErrTypeMismatch, "script must reduce to Boolean or SigmaProp, got %s", v.Type)
	}
}
