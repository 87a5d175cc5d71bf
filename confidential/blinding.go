package confidential

import "math/big"

// Contribution is the (value, abf, vbf) tuple of a single input or output,
// the minimum needed to fold it into the adaptive blinding factor
// computation for whichever output is computed last.
type Contribution struct {
	Value uint64
	ABF   Scalar
	VBF   Scalar
}

// FinalVBF computes the value-blinding factor of the last output so that
// the Pedersen commitments of inputs and outputs balance:
//
//	sum(v_i*abf_i + vbf_i) over inputs
//	  - sum(v_j*abf_j + vbf_j) over the other (already blinded) outputs
//	  - value*abfLast
//
// taken modulo the curve order. Every txout-building flow must compute
// exactly one output this way; any other output uses a freshly random vbf.
func FinalVBF(value uint64, abfLast Scalar, inputs, otherOutputs []Contribution) Scalar {
	sum := new(big.Int)
	for _, in := range inputs {
		sum.Add(sum, contributionTerm(in))
	}
	for _, out := range otherOutputs {
		sum.Sub(sum, contributionTerm(out))
	}
	last := new(big.Int).Mul(new(big.Int).SetUint64(value), abfLast.bigInt())
	sum.Sub(sum, last)
	return scalarFromBigInt(sum)
}

func contributionTerm(c Contribution) *big.Int {
	term := new(big.Int).Mul(new(big.Int).SetUint64(c.Value), c.ABF.bigInt())
	term.Add(term, c.VBF.bigInt())
	return term
}
