package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expertraah/marketplace-api/internal/apperror"
	consultantentity "github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
	jobentity "github.com/expertraah/marketplace-api/internal/domain/job/entity"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// UserAdminRepository covers the user operations the admin surface needs
type UserAdminRepository interface {
	List(ctx context.Context) ([]userentity.User, error)
	ListByAccountType(ctx context.Context, accountType userentity.AccountType) ([]userentity.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) (*userentity.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountByAccountType(ctx context.Context) (map[userentity.AccountType]int64, error)
}

// ConsultantAdminRepository covers the verification queue
type ConsultantAdminRepository interface {
	ListPending(ctx context.Context) ([]consultantentity.Consultant, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*consultantentity.Consultant, error)
	Count(ctx context.Context) (total, pending int64, err error)
}

// Counters expose aggregate totals from the other domains
type Counters interface {
	CountByStatus(ctx context.Context) (map[jobentity.Status]int64, error)
}

// ProposalCounter counts proposals
type ProposalCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ReviewCounter counts reviews
type ReviewCounter interface {
	Count(ctx context.Context) (int64, error)
}

// UnreadCounter sums unread message counters platform-wide
type UnreadCounter interface {
	SumUnread(ctx context.Context) (int64, error)
}

// Service handles platform administration. Routes carrying it are
// unauthenticated in this version; that is a known gap, not a feature.
type Service struct {
	users       UserAdminRepository
	consultants ConsultantAdminRepository
	jobs        Counters
	proposals   ProposalCounter
	reviews     ReviewCounter
	unread      UnreadCounter
}

// New creates a new admin service
func New(
	users UserAdminRepository,
	consultants ConsultantAdminRepository,
	jobs Counters,
	proposals ProposalCounter,
	reviews ReviewCounter,
	unread UnreadCounter,
) *Service {
	return &Service{
		users:       users,
		consultants: consultants,
		jobs:        jobs,
		proposals:   proposals,
		reviews:     reviews,
		unread:      unread,
	}
}

// ListUsers returns every account
func (s *Service) ListUsers(ctx context.Context) ([]userentity.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []userentity.User{}
	}
	return users, nil
}

// ListUsersByAccountType returns accounts of one type
func (s *Service) ListUsersByAccountType(ctx context.Context, accountType userentity.AccountType) ([]userentity.User, error) {
	if !userentity.ValidAccountType(accountType) {
		return nil, apperror.InvalidArgument("account type must be buyer or consultant")
	}

	users, err := s.users.ListByAccountType(ctx, accountType)
	if err != nil {
		return nil, fmt.Errorf("listing users by account type: %w", err)
	}
	if users == nil {
		users = []userentity.User{}
	}
	return users, nil
}

// BanUser bans an account
func (s *Service) BanUser(ctx context.Context, userID uuid.UUID) (*userentity.User, error) {
	return s.setBanned(ctx, userID, true)
}

// UnbanUser lifts a ban
func (s *Service) UnbanUser(ctx context.Context, userID uuid.UUID) (*userentity.User, error) {
	return s.setBanned(ctx, userID, false)
}

func (s *Service) setBanned(ctx context.Context, userID uuid.UUID, banned bool) (*userentity.User, error) {
	user, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		return nil, fmt.Errorf("setting ban flag: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}

// DeleteUser removes an account permanently
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if !deleted {
		return apperror.NotFound("user not found")
	}
	return nil
}

// PendingConsultants returns the verification queue
func (s *Service) PendingConsultants(ctx context.Context) ([]consultantentity.Consultant, error) {
	pending, err := s.consultants.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending consultants: %w", err)
	}
	if pending == nil {
		pending = []consultantentity.Consultant{}
	}
	return pending, nil
}

// VerifyConsultant approves a consultant
func (s *Service) VerifyConsultant(ctx context.Context, consultantID uuid.UUID) (*consultantentity.Consultant, error) {
	return s.setVerified(ctx, consultantID, true)
}

// DeclineConsultant declines a consultant's verification
func (s *Service) DeclineConsultant(ctx context.Context, consultantID uuid.UUID) (*consultantentity.Consultant, error) {
	return s.setVerified(ctx, consultantID, false)
}

func (s *Service) setVerified(ctx context.Context, consultantID uuid.UUID, verified bool) (*consultantentity.Consultant, error) {
	consultant, err := s.consultants.SetVerified(ctx, consultantID, verified)
	if err != nil {
		return nil, fmt.Errorf("setting verification: %w", err)
	}
	if consultant == nil {
		return nil, apperror.NotFound("consultant not found")
	}
	return consultant, nil
}

// Stats is the platform-wide aggregate snapshot
type Stats struct {
	TotalBuyers          int64 `json:"totalBuyers"`
	TotalConsultants     int64 `json:"totalConsultants"`
	PendingVerifications int64 `json:"pendingVerifications"`
	OpenJobs             int64 `json:"openJobs"`
	JobsInProgress       int64 `json:"jobsInProgress"`
	CompletedJobs        int64 `json:"completedJobs"`
	TotalProposals       int64 `json:"totalProposals"`
	TotalReviews         int64 `json:"totalReviews"`
	UnreadMessages       int64 `json:"unreadMessages"`
}

// GetStats collects the aggregate snapshot
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	userCounts, err := s.users.CountByAccountType(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	_, pending, err := s.consultants.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting consultants: %w", err)
	}

	jobCounts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}

	totalProposals, err := s.proposals.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting proposals: %w", err)
	}

	totalReviews, err := s.reviews.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting reviews: %w", err)
	}

	unreadMessages, err := s.unread.SumUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing unread messages: %w", err)
	}

	return &Stats{
		TotalBuyers:          userCounts[userentity.AccountTypeBuyer],
		TotalConsultants:     userCounts[userentity.AccountTypeConsultant],
		PendingVerifications: pending,
		OpenJobs:             jobCounts[jobentity.StatusOpen],
		JobsInProgress:       jobCounts[jobentity.StatusInProgress],
		CompletedJobs:        jobCounts[jobentity.StatusCompleted],
		TotalProposals:       totalProposals,
		TotalReviews:         totalReviews,
		UnreadMessages:       unreadMessages,
	}, nil
}
