// Package mocks holds gomock doubles for the ports consumed by the gate and auth services.
//
// Regenerate after changing an interface in internal/ports:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	sessions := mocks.NewMockSessionResolver(ctrl)
//	sessions.EXPECT().ResolveSession(gomock.Any(), gomock.Any()).Return(ports.SessionResolution{}, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/lumicrm/portalgate/internal/ports PermissionResolver,SessionCodec,SessionResolver,SessionStore,UserAccessStore,UserDirectory
