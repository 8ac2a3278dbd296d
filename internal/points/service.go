package points

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/bramble/internal/model"
	"github.com/dukerupert/bramble/internal/push"
	"github.com/dukerupert/bramble/internal/store"
)

// Notifier delivers a push payload to every device a member has registered.
type Notifier interface {
	SendToMember(memberID int64, payload push.Payload) error
}

// AwardRequest describes a single ledger credit.
type AwardRequest struct {
	MemberID  int64
	Points    int
	Source    string
	Reference string
	Note      string
}

// Service is the household points ledger. Awards are append-only; balances
// are derived from the award and redemption history.
type Service struct {
	store    *store.PointStore
	notifier Notifier
	logger   *slog.Logger
}

// New creates a ledger service. notifier may be nil, in which case the
// ledger never sends its own notifications.
func New(pointStore *store.PointStore, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    pointStore,
		notifier: notifier,
		logger:   logger,
	}
}

// Award credits points to a member. When notify is set the ledger sends its
// generic "points awarded" push; callers that handle their own notification
// (like weekly goal settlement) pass notify=false.
func (s *Service) Award(req AwardRequest, notify bool) (*model.PointAward, error) {
	if req.Points < 1 {
		return nil, fmt.Errorf("award must be positive, got %d", req.Points)
	}

	award, err := s.store.CreateAward(req.MemberID, req.Points, req.Source, req.Reference, req.Note)
	if err != nil {
		return nil, fmt.Errorf("create award: %w", err)
	}

	if notify && s.notifier != nil {
		payload := push.PointsAwardedPayload(req.Points, req.Note)
		if err := s.notifier.SendToMember(req.MemberID, payload); err != nil {
			s.logger.Warn("award notification failed", "member_id", req.MemberID, "error", err)
		}
	}

	return award, nil
}

// Balance returns the member's current balance: total earned minus total spent.
func (s *Service) Balance(memberID int64) (*model.PointBalance, error) {
	return s.store.GetBalance(memberID)
}
