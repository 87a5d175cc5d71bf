package swap

import "errors"

// ErrWrongAsset is returned when a counterparty's disclosed input does not
// carry the asset the handshake expects it to.
var ErrWrongAsset = errors.New("swap: input does not carry the expected asset")

// ErrMalformedMessage is returned when a decoded message's structure
// violates an invariant of the handshake, such as a confidential field
// decoding to an explicit output.
var ErrMalformedMessage = errors.New("swap: malformed message")

// ErrWrongRedeem is returned when a composed transaction has no output
// paying the expected redeem recipient the expected asset and amount.
var ErrWrongRedeem = errors.New("swap: no output pays the expected redeem amount")

// ErrWrongChange is returned when a composed transaction has no output
// paying the expected change recipient the expected asset and amount.
var ErrWrongChange = errors.New("swap: no output pays the expected change amount")

// ErrInsufficientFunds is returned when a party's disclosed input cannot
// cover the amount it has committed to pay out.
var ErrInsufficientFunds = errors.New("swap: input cannot cover the committed payout")

// ErrUnblindFailure is returned when a confidential output cannot be
// opened with the blinding key presented for it.
var ErrUnblindFailure = errors.New("swap: failed to unblind output")

// ErrInputNotFound is returned when a party's own input is missing from a
// transaction it is about to sign.
var ErrInputNotFound = errors.New("swap: own input missing from transaction")

// ErrSignatureFailure is returned when signing a transaction input fails.
var ErrSignatureFailure = errors.New("swap: failed to sign input")
