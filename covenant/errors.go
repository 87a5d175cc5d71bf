package covenant

import "errors"

// ErrNoPrincipalOutput is returned when a loan transaction carries no
// output paying the borrower the agreed principal.
var ErrNoPrincipalOutput = errors.New("covenant: no principal output")

// ErrNoCollateralOutput is returned when a loan transaction carries no
// output locking the agreed collateral under the covenant script.
var ErrNoCollateralOutput = errors.New("covenant: no collateral output")

// ErrNoCollateralChangeOutput is returned when a loan transaction drops
// the borrower's own collateral change output.
var ErrNoCollateralChangeOutput = errors.New("covenant: no collateral change output")

// ErrWrongLoanTransaction is returned when a lender is asked to finalise
// a transaction other than the one it proposed.
var ErrWrongLoanTransaction = errors.New("covenant: unexpected loan transaction")

// ErrInsufficientCollateral is returned when the borrower's disclosed
// collateral inputs cannot cover the collateral amount plus fee.
var ErrInsufficientCollateral = errors.New("covenant: collateral inputs cannot cover amount and fee")

// ErrInsufficientPrincipal is returned when the lender's principal
// inputs cannot cover the principal it must advance.
var ErrInsufficientPrincipal = errors.New("covenant: principal inputs cannot cover amount")

// ErrCovenantAmbiguity is returned when a repayment transaction carries
// more outputs after its first (repayment) output than the three slots
// the covenant script's witness stack is shaped for; fewer are padded
// with empty pushes. The script has no way to commit to a variable-length
// output set, so a fourth such output would let a signer smuggle value
// the covenant never agreed to.
var ErrCovenantAmbiguity = errors.New("covenant: repayment transaction has an unsupported number of outputs")

// ErrMalformedMessage is returned when a decoded loan message violates a
// structural invariant of the handshake.
var ErrMalformedMessage = errors.New("covenant: malformed message")

// ErrPolicyRejected is returned when a loan request's loan-to-value
// ratio falls outside what the lender's policy will accept.
var ErrPolicyRejected = errors.New("covenant: loan request rejected by policy")
