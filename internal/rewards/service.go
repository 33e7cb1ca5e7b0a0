package rewards

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type rewardsRepo interface {
	AddPoints(ctx context.Context, userID string, points int) (total int, err error)
	TotalPoints(ctx context.Context, userID string) (total int, err error)
}

type Service struct {
	repo rewardsRepo
}

func NewService(repo rewardsRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// Award grants points for a completed fast and returns the new total.
func (s *Service) Award(ctx context.Context, userID string, points int) (int, error) {
	if points <= 0 {
		return 0, fmt.Errorf("invalid points amount: %d", points)
	}

	total, err := s.repo.AddPoints(ctx, userID, points)
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}

	log.Debugf("awarded %d points to user %s, total now %d", points, userID, total)

	return total, nil
}

func (s *Service) UserRewards(ctx context.Context, userID string) (*UserRewards, error) {
	total, err := s.repo.TotalPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get total points: %w", err)
	}
	return &UserRewards{
		TotalPoints: total,
		Level:       Level(total),
	}, nil
}
