package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

// memberService is the concrete implementation of MemberService
type memberService struct {
	members repository.MemberRepository
	log     zerolog.Logger
}

// newMemberService creates a new member service
func newMemberService(members repository.MemberRepository, log zerolog.Logger) MemberService {
	return &memberService{
		members: members,
		log:     log.With().Str("service", "member").Logger(),
	}
}

// List returns the member roster
func (s *memberService) List(ctx context.Context) ([]*models.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return members, nil
}
