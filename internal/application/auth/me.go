package auth

import (
	"context"

	"github.com/baechuer/homi/internal/domain"
)

func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetPublicByID(ctx, userID)
}
