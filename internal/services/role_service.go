package services

import (
	"context"
	"fmt"
	"sync"

	"shopbe/internal/models"
	"shopbe/internal/repositories"
)

// RoleService resolves role ids by name. The client role id is cached after
// the first lookup; roles are read-only at runtime.
type RoleService interface {
	ClientRoleID(ctx context.Context) (int, error)
}

type roleService struct {
	repo repositories.RoleRepository

	mu           sync.Mutex
	clientRoleID int
}

func NewRoleService(repo repositories.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

func (s *roleService) ClientRoleID(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientRoleID != 0 {
		return s.clientRoleID, nil
	}
	role, err := s.repo.GetByName(ctx, models.RoleClient)
	if err != nil {
		return 0, err
	}
	if role == nil {
		return 0, fmt.Errorf("role %q not found", models.RoleClient)
	}
	s.clientRoleID = role.ID
	return s.clientRoleID, nil
}
