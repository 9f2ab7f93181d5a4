package primitive

// MinValuePerByte is the protocol-wide minimum number of nanoERG a box must
// carry per byte of its serialized form.
const MinValuePerByte uint64 = 360

// RecommendedMinBoxValue is a safe minimum box value sufficient for any box
// serializing to at most 2777 bytes (2777 * MinValuePerByte, rounded up by
// the caller if the box is larger).
const RecommendedMinBoxValue uint64 = 1_000_000

// maxBoxValue is 2^63-1, the largest value a signed 64-bit accounting unit
// can hold; BoxValue and TokenAmount are both bounded by it even though they
// are stored as uint64, so that the amount can always be negated or widened
// into a signed context by collaborating code (e.g. change computation)
// without overflow.
const maxBoxValue = uint64(1)<<63 - 1

// BoxValue is an amount of nanoERG, constrained to 1 <= v <= 2^63-1. All
// arithmetic on it is checked.
type BoxValue uint64

// NewBoxValue validates v and returns it as a BoxValue.
func NewBoxValue(v uint64) (BoxValue, error) {
	if v == 0 {
		return 0, boundsErr(ErrOutOfBounds, "box value must be nonzero")
	}
	if v > maxBoxValue {
		return 0, boundsErr(ErrOutOfBounds, "box value exceeds 2^63-1")
	}
	return BoxValue(v), nil
}

// Uint64 returns the underlying amount.
func (v BoxValue) Uint64() uint64 { return uint64(v) }

// CheckedAdd returns v+other, failing with ErrOutOfBounds on overflow or if
// the result leaves the legal BoxValue range.
func (v BoxValue) CheckedAdd(other BoxValue) (BoxValue, error) {
	sum := uint64(v) + uint64(other)
	if sum < uint64(v) {
		return 0, boundsErr(ErrOutOfBounds, "box value addition overflow")
	}
	return NewBoxValue(sum)
}

// CheckedSub returns v-other, failing with ErrOutOfBounds if other > v or the
// result is zero.
func (v BoxValue) CheckedSub(other BoxValue) (BoxValue, error) {
	if uint64(other) > uint64(v) {
		return 0, boundsErr(ErrOutOfBounds, "box value subtraction underflow")
	}
	return NewBoxValue(uint64(v) - uint64(other))
}

// CheckedMulU32 returns v*scalar, failing with ErrOutOfBounds on overflow.
func (v BoxValue) CheckedMulU32(scalar uint32) (BoxValue, error) {
	if scalar == 0 {
		return 0, boundsErr(ErrOutOfBounds, "box value multiplication by zero")
	}
	product := uint64(v) * uint64(scalar)
	if uint64(scalar) != 0 && product/uint64(scalar) != uint64(v) {
		return 0, boundsErr(ErrOutOfBounds, "box value multiplication overflow")
	}
	return NewBoxValue(product)
}

// SumBoxValues sums vs, failing with ErrOutOfBounds if any partial sum exits
// the BoxValue range.
func SumBoxValues(vs []BoxValue) (BoxValue, error) {
	if len(vs) == 0 {
		return 0, boundsErr(ErrOutOfBounds, "cannot sum an empty collection of box values")
	}
	total := vs[0]
	var err error
	for _, v := range vs[1:] {
		total, err = total.CheckedAdd(v)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// TokenAmount is an amount of a token, constrained to 1 <= v <= 2^63-1, with
// the same checked-arithmetic contract as BoxValue.
type TokenAmount uint64

// NewTokenAmount validates v and returns it as a TokenAmount.
func NewTokenAmount(v uint64) (TokenAmount, error) {
	if v == 0 {
		return 0, boundsErr(ErrOutOfBounds, "token amount must be nonzero")
	}
	if v > maxBoxValue {
		return 0, boundsErr(ErrOutOfBounds, "token amount exceeds 2^63-1")
	}
	return TokenAmount(v), nil
}

// Uint64 returns the underlying amount.
func (v TokenAmount) Uint64() uint64 { return uint64(v) }

// CheckedAdd returns v+other, failing with ErrOutOfBounds on overflow.
func (v TokenAmount) CheckedAdd(other TokenAmount) (TokenAmount, error) {
	sum := uint64(v) + uint64(other)
	if sum < uint64(v) {
		return 0, boundsErr(ErrOutOfBounds, "token amount addition overflow")
	}
	return NewTokenAmount(sum)
}

// CheckedSub returns v-other, failing with ErrOutOfBounds if other > v.
func (v TokenAmount) CheckedSub(other TokenAmount) (TokenAmount, error) {
	if uint64(other) > uint64(v) {
		return 0, boundsErr(ErrOutOfBounds, "token amount subtraction underflow")
	}
	return NewTokenAmount(uint64(v) - uint64(other))
}

// SumTokenAmounts sums vs, failing with ErrOutOfBounds if any partial sum
// exits the TokenAmount range.
func SumTokenAmounts(vs []TokenAmount) (TokenAmount, error) {
	if len(vs) == 0 {
		return 0, boundsErr(ErrOutOfBounds, "cannot sum an empty collection of token amounts")
	}
	total := vs[0]
	var err error
	for _, v := range vs[1:] {
		total, err = total.CheckedAdd(v)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Token is a (TokenId, TokenAmount) pair as carried by an ErgoBox.
type Token struct {
	Id     TokenId
	Amount TokenAmount
}
