package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gov-be/internal/domain"
	"gov-be/internal/repository"
	"gov-be/pkg/redis"

	"go.uber.org/zap"
)

// EntitlementService maps (team, member) to a role set and answers permission
// queries for every privileged operation in the engine.
type EntitlementService struct {
	memberRepo repository.MemberRepository
	redis      *redis.Client
	logger     *zap.Logger
}

func NewEntitlementService(memberRepo repository.MemberRepository, redisClient *redis.Client, logger *zap.Logger) *EntitlementService {
	return &EntitlementService{
		memberRepo: memberRepo,
		redis:      redisClient,
		logger:     logger,
	}
}

// Grant assigns a role to a member. The caller needs canManageRoles on the
// same team. Granting an already-held role is a no-op.
func (s *EntitlementService) Grant(ctx context.Context, caller string, teamID int, address, role string) error {
	if !s.Has(ctx, teamID, caller, domain.PermManageRoles) {
		return fmt.Errorf("grant %s to %s: %w", role, address, domain.ErrUnauthorized)
	}
	if !domain.KnownRole(role) {
		return fmt.Errorf("unknown role %s: %w", role, domain.ErrNotFound)
	}

	member, err := s.memberRepo.GetMember(ctx, teamID, address)
	if err != nil {
		return fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return fmt.Errorf("member %s in team %d: %w", address, teamID, domain.ErrNotFound)
	}

	if err := s.memberRepo.AddRole(ctx, teamID, address, role); err != nil {
		return err
	}

	s.invalidateRoleCache(ctx, teamID, address)

	s.logger.Info("role granted",
		zap.Int("team_id", teamID),
		zap.String("member", address),
		zap.String("role", role),
		zap.String("granted_by", caller))

	return nil
}

// Revoke removes a role from a member. Revoking an unheld role is a no-op;
// a member with no roles keeps an empty, well-defined role set.
func (s *EntitlementService) Revoke(ctx context.Context, caller string, teamID int, address, role string) error {
	if !s.Has(ctx, teamID, caller, domain.PermManageRoles) {
		return fmt.Errorf("revoke %s from %s: %w", role, address, domain.ErrUnauthorized)
	}

	member, err := s.memberRepo.GetMember(ctx, teamID, address)
	if err != nil {
		return fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return fmt.Errorf("member %s in team %d: %w", address, teamID, domain.ErrNotFound)
	}

	if err := s.memberRepo.RemoveRole(ctx, teamID, address, role); err != nil {
		return err
	}

	s.invalidateRoleCache(ctx, teamID, address)

	s.logger.Info("role revoked",
		zap.Int("team_id", teamID),
		zap.String("member", address),
		zap.String("role", role),
		zap.String("revoked_by", caller))

	return nil
}

// Has reports whether the member holds the permission through any of their
// roles. Never fails: storage errors are logged and degrade to false, which
// denies rather than grants.
func (s *EntitlementService) Has(ctx context.Context, teamID int, address, permission string) bool {
	roles, err := s.rolesWithCache(ctx, teamID, address)
	if err != nil {
		s.logger.Warn("permission check degraded to deny",
			zap.Int("team_id", teamID),
			zap.String("member", address),
			zap.String("permission", permission),
			zap.Error(err))
		return false
	}

	for _, role := range roles {
		if domain.RoleGrants(role, permission) {
			return true
		}
	}
	return false
}

// ListRoles returns a snapshot of the member's role set. The returned slice
// is a copy; concurrent grant/revoke never mutates it.
func (s *EntitlementService) ListRoles(ctx context.Context, teamID int, address string) ([]string, error) {
	member, err := s.memberRepo.GetMember(ctx, teamID, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("member %s in team %d: %w", address, teamID, domain.ErrNotFound)
	}

	roles, err := s.rolesWithCache(ctx, teamID, address)
	if err != nil {
		return nil, err
	}

	snapshot := make([]string, len(roles))
	copy(snapshot, roles)
	return snapshot, nil
}

// rolesWithCache reads the role set cache-aside: redis first, then storage
func (s *EntitlementService) rolesWithCache(ctx context.Context, teamID int, address string) ([]string, error) {
	if s.redis != nil {
		key := s.redis.KeyBuilder.KeyMemberRoles(teamID, address)
		if cached, err := s.redis.Get(ctx, key); err == nil && cached != "" {
			var roles []string
			if err := json.Unmarshal([]byte(cached), &roles); err == nil {
				return roles, nil
			}
		}
	}

	roles, err := s.memberRepo.GetRoles(ctx, teamID, address)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(roles); err == nil {
			key := s.redis.KeyBuilder.KeyMemberRoles(teamID, address)
			if err := s.redis.Set(ctx, key, string(data), redis.TTLMemberRoles); err != nil {
				s.logger.Warn("failed to cache role set",
					zap.Int("team_id", teamID),
					zap.String("member", address),
					zap.Error(err))
			}
		}
	}

	return roles, nil
}

// invalidateRoleCache drops the cached role set after a grant or revoke
func (s *EntitlementService) invalidateRoleCache(ctx context.Context, teamID int, address string) {
	if s.redis == nil {
		return
	}
	key := s.redis.KeyBuilder.KeyMemberRoles(teamID, address)
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate role cache",
			zap.Int("team_id", teamID),
			zap.String("member", address),
			zap.Error(err))
	}
}
