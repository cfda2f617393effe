// Package fakes provides test doubles for the platform collaborators: the
// secure store client and the authentication service.
//
// Fakes are plain structs with exported knobs and call counters; they are
// safe for concurrent use.
//
// Example:
//
//	client := fakes.NewFakeKeychainClient()
//	client.SetSecret("db_password", "", []byte("secr3t"))
//	s := store.NewKeychainWithClient(client, store.Options{})
//
//	authn := fakes.NewFakeAuthenticator(true)
//	gate := auth.NewGate(auth.PolicyBiometrics, authn, nil)
package fakes
