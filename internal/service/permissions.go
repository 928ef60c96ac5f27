package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	apperrors "github.com/lumicrm/portalgate/internal/errors"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/ports"
)

// DefaultResolveTimeout bounds a single session or permission lookup.
const DefaultResolveTimeout = 3 * time.Second

// PermissionServiceOptions groups dependencies for PermissionService.
type PermissionServiceOptions struct {
	Store   ports.UserAccessStore
	Timeout time.Duration
	Metrics metrics.GateMetrics
	Logger  *slog.Logger
}

// PermissionService resolves a principal's permission set from the user store.
// Every failure yields the empty set; the returned error is informational.
type PermissionService struct {
	store   ports.UserAccessStore
	timeout time.Duration
	metrics metrics.GateMetrics
	logger  *slog.Logger
}

var _ ports.PermissionResolver = (*PermissionService)(nil)

// NewPermissionService constructs a PermissionService.
func NewPermissionService(opts PermissionServiceOptions) *PermissionService {
	if opts.Store == nil {
		panic("UserAccessStore is required")
	}
	s := &PermissionService{
		store:   opts.Store,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultResolveTimeout
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Resolve reads the permission set of principalID. A missing user record is not an
// error and resolves to the empty set.
func (s *PermissionService) Resolve(ctx context.Context, principalID string) (domainauth.PermissionSet, error) {
	empty := domainauth.NewPermissionSet()
	if strings.TrimSpace(principalID) == "" {
		return empty, errors.New("principal ID is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	access, err := s.store.GetAccess(ctx, principalID)
	switch {
	case err == nil:
		s.metrics.ObserveStep(metrics.StepPermissions, time.Since(start), nil)
	case apperrors.IsNotFound(err):
		s.metrics.ObserveStep(metrics.StepPermissions, time.Since(start), nil)
		s.logger.DebugContext(ctx, "no user record for principal", "principal_id", principalID)
		return empty, nil
	default:
		s.metrics.ObserveStep(metrics.StepPermissions, time.Since(start), err)
		return empty, fmt.Errorf("get access: %w", err)
	}

	if access.Permissions == nil {
		return empty, nil
	}
	return access.Permissions, nil
}
