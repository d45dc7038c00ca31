// Package auth holds the identity model and error taxonomy of the clinic's
// authentication core.
//
// A Principal is either a patient or a doctor; Role is an explicit
// discriminant and the narrowed Patient and Doctor capabilities can only be
// obtained from a principal carrying the matching role. Subpackages:
//
//   - auth/password  salted adaptive hashing (bcrypt, argon2id) and random tokens
//   - auth/jwt       signed token envelope
//   - auth/session   credential store, issuer, resolver, revoker and login
//   - auth/authctx   request context propagation of the resolved principal
//
// Persistence is reached only through the Authenticator and PrincipalLoader
// contracts declared here.
package auth
