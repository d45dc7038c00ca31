// Package password hashes and verifies account passwords and mints random
// tokens.
//
//	hasher, err := password.NewHasher(cfg)
//	hash, err := hasher.Hash("correct horse battery staple")
//	ok := hasher.Verify("correct horse battery staple", hash)
//
// Verify answers false for a wrong password and for a hash it cannot parse;
// it never returns an error and never panics on stored data.
package password
