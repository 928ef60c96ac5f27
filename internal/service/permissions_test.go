package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	apperrors "github.com/lumicrm/portalgate/internal/errors"
	"github.com/lumicrm/portalgate/internal/mocks"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
)

func TestNewPermissionService_RequiresStore(t *testing.T) {
	assert.Panics(t, func() { NewPermissionService(PermissionServiceOptions{}) })
}

func TestPermissionService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored permissions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)
		rec := &recordingMetrics{}
		store.EXPECT().GetAccess(gomock.Any(), "u1").Return(domainauth.Access{
			Role:        domainauth.RoleAdmin,
			Permissions: domainauth.NewPermissionSet(domainauth.PermFinance),
		}, nil)

		svc := NewPermissionService(PermissionServiceOptions{Store: store, Metrics: rec})
		perms, err := svc.Resolve(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, perms.Has(domainauth.PermFinance))
		require.Len(t, rec.steps, 1)
		assert.Equal(t, metrics.StepPermissions, rec.steps[0].step)
		assert.NoError(t, rec.steps[0].err)
	})

	t.Run("missing record is empty without error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)
		store.EXPECT().GetAccess(gomock.Any(), "ghost").Return(domainauth.Access{}, apperrors.NotFoundf("user %q not found", "ghost"))

		perms, err := NewPermissionService(PermissionServiceOptions{Store: store}).Resolve(ctx, "ghost")
		require.NoError(t, err)
		assert.NotNil(t, perms)
		assert.Empty(t, perms)
	})

	t.Run("null permissions are empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)
		store.EXPECT().GetAccess(gomock.Any(), "u1").Return(domainauth.Access{Role: domainauth.RoleUser}, nil)

		perms, err := NewPermissionService(PermissionServiceOptions{Store: store}).Resolve(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, perms)
		assert.Empty(t, perms)
	})

	t.Run("backend error fails closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)
		rec := &recordingMetrics{}
		boom := errors.New("connection refused")
		store.EXPECT().GetAccess(gomock.Any(), "u1").Return(domainauth.Access{
			Permissions: domainauth.NewPermissionSet(domainauth.PermAll),
		}, boom)

		perms, err := NewPermissionService(PermissionServiceOptions{Store: store, Metrics: rec}).Resolve(ctx, "u1")
		require.ErrorIs(t, err, boom)
		assert.Empty(t, perms)
		require.Len(t, rec.steps, 1)
		assert.ErrorIs(t, rec.steps[0].err, boom)
	})

	t.Run("slow store times out", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)
		store.EXPECT().GetAccess(gomock.Any(), "u1").DoAndReturn(
			func(ctx context.Context, _ string) (domainauth.Access, error) {
				<-ctx.Done()
				return domainauth.Access{}, ctx.Err()
			})

		svc := NewPermissionService(PermissionServiceOptions{Store: store, Timeout: 10 * time.Millisecond})
		perms, err := svc.Resolve(ctx, "u1")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, perms)
	})

	t.Run("blank principal never reaches the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockUserAccessStore(ctrl)

		perms, err := NewPermissionService(PermissionServiceOptions{Store: store}).Resolve(ctx, "  ")
		require.Error(t, err)
		assert.Empty(t, perms)
	})
}
