package channels

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/internal/channels/adapters"
	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
)

type membershipChecker interface {
	GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error)
}

// Service manages channel connections and their health state.
type Service interface {
	Connect(ctx context.Context, input ConnectInput) (*ChannelView, error)
	Test(ctx context.Context, identity auth.Identity, accountID, channelID uuid.UUID) (*TestResult, error)
	List(ctx context.Context, identity auth.Identity, accountID uuid.UUID) ([]ChannelView, error)
}

type service struct {
	repo        Repository
	memberships membershipChecker
	registry    *adapters.Registry
	logg        *logger.Logger
}

// NewService builds the channel service with the required dependencies.
func NewService(repo Repository, memberships membershipChecker, registry *adapters.Registry, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("channels repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if registry == nil {
		return nil, fmt.Errorf("adapter registry required")
	}
	return &service{repo: repo, memberships: memberships, registry: registry, logg: logg}, nil
}

// Connect persists a channel and runs the adapter's connection test to set
// its initial state. A failing credential still leaves a row, in error state,
// so the caller can inspect last_error and retry via the test endpoint.
func (s *service) Connect(ctx context.Context, input ConnectInput) (*ChannelView, error) {
	if err := validateConnectInput(input); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, input.Identity, input.AccountID); err != nil {
		return nil, err
	}

	channel := &models.Channel{
		AccountID:   input.AccountID,
		Type:        input.Type,
		ExternalID:  strings.TrimSpace(input.ExternalID),
		AccessToken: strings.TrimSpace(input.AccessToken),
		Config:      input.Config,
		Status:      enums.ChannelStatusDisconnected,
	}
	if err := s.repo.Create(ctx, channel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create channel")
	}

	s.runTest(ctx, channel)

	view := toView(channel)
	return &view, nil
}

// Test re-runs the adapter's connection check and transitions the channel's
// status accordingly.
func (s *service) Test(ctx context.Context, identity auth.Identity, accountID, channelID uuid.UUID) (*TestResult, error) {
	if err := s.authorize(ctx, identity, accountID); err != nil {
		return nil, err
	}

	channel, err := s.loadOwned(ctx, accountID, channelID)
	if err != nil {
		return nil, err
	}

	testErr := s.runTest(ctx, channel)

	result := &TestResult{
		ChannelID: channel.ID,
		Status:    channel.Status,
		Healthy:   testErr == nil,
	}
	if testErr != nil {
		result.Error = testErr.Error()
	}
	return result, nil
}

func (s *service) List(ctx context.Context, identity auth.Identity, accountID uuid.UUID) ([]ChannelView, error) {
	if err := s.authorize(ctx, identity, accountID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list channels")
	}

	views := make([]ChannelView, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, nil
}

// runTest executes the adapter connection test and persists the resulting
// status transition on the channel, mutating the passed row to match.
func (s *service) runTest(ctx context.Context, channel *models.Channel) error {
	var testErr error
	adapter, err := s.registry.Lookup(channel.Type)
	if err != nil {
		testErr = err
	} else {
		testErr = adapter.TestConnection(ctx, channel)
	}

	status := enums.ChannelStatusConnected
	var lastError *string
	if testErr != nil {
		status = enums.ChannelStatusError
		msg := testErr.Error()
		lastError = &msg
	}

	if err := s.repo.SetStatus(ctx, channel.ID, status, lastError); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "failed to persist channel status", err)
		}
		return testErr
	}
	channel.Status = status
	channel.LastError = lastError
	return testErr
}

func (s *service) loadOwned(ctx context.Context, accountID, channelID uuid.UUID) (*models.Channel, error) {
	channel, err := s.repo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "channel not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load channel")
	}
	if channel.AccountID != accountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "channel not found")
	}
	return channel, nil
}

func (s *service) authorize(ctx context.Context, identity auth.Identity, accountID uuid.UUID) error {
	if identity.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account_id is required")
	}
	if _, err := s.memberships.GetMembership(ctx, identity.UserID, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "no membership for account")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return nil
}

func validateConnectInput(input ConnectInput) error {
	if !input.Type.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid channel type %q", input.Type)
	}
	if strings.TrimSpace(input.ExternalID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "external_id is required")
	}
	// Siigo keeps its credential pair in config, so an empty bearer token is
	// only a problem for the other channel types.
	if input.Type != enums.ChannelTypeSiigo && strings.TrimSpace(input.AccessToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access_token is required")
	}
	return nil
}

func toView(channel *models.Channel) ChannelView {
	return ChannelView{
		ID:         channel.ID,
		AccountID:  channel.AccountID,
		Type:       channel.Type,
		ExternalID: channel.ExternalID,
		Status:     channel.Status,
		LastError:  channel.LastError,
		CreatedAt:  channel.CreatedAt,
	}
}
