// Package mocks provides mock implementations for testing the storefront
// client core.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the port interfaces. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockStateStore(ctrl)
//	store.EXPECT().Save(gomock.Any(), "cart", gomock.Any()).Return(nil)
package mocks

// Generate mocks for the StateStore, AuthBackend, and TokenInspector ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/mizan-mobiles/storefront-go/internal/ports StateStore,AuthBackend,TokenInspector
