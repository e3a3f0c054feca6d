package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Service persists and serves per-account notifications. It also backs the
// Notifier hooks of the other domains.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create persists a notification from an explicit API request.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Notification, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}
	n := &Notification{
		AccountID: uuid.MustParse(req.AccountID),
		Message:   req.Message,
		Kind:      req.Kind,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, httperr.Internal(err)
	}
	return n, nil
}

// Notify persists a notification emitted by another domain. Failures are
// logged and swallowed so the emitting operation never fails on them.
func (s *Service) Notify(ctx context.Context, accountID uuid.UUID, kind, message string) {
	n := &Notification{AccountID: accountID, Message: message, Kind: kind}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("account_id", accountID.String()).
			Str("kind", kind).
			Msg("failed to persist notification")
	}
}

// ListByAccount returns the caller's notifications, newest first.
func (s *Service) ListByAccount(ctx context.Context, requesterID string, limit, offset int) ([]*Notification, int, error) {
	accountID, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, 0, httperr.Unauthorized("invalid token subject")
	}
	items, total, err := s.repo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httperr.NotFound("notification not found")
		}
		return nil, httperr.Internal(err)
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, httperr.Internal(err)
	}
	n.Read = true
	return n, nil
}
