// Package mocks provides a function-field MockUserStore for tests that need a
// store.UserStore without a database.
//
// Users are keyed by their plaintext API key. Set GetByAPIKeyFn or CreateFn to
// override a method, or Err to make every call fail:
//
//	users := mocks.NewMockUserStore(map[string]*domain.User{
//		"0123456789abcdef": {ID: 1, Username: "ops"},
//	})
//	// ... exercise the code under test ...
//	assert.Equal(t, 1, users.LookupCount())
package mocks
