package jwtx

// Signer is our interface for anything that can sign session JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}
