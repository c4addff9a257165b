package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/internal/channels"
	"github.com/ventahub/ventahub-backend/internal/channels/adapters"
	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	pkgerrors "github.com/ventahub/ventahub-backend/pkg/errors"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/metrics"
	"github.com/ventahub/ventahub-backend/pkg/redis"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

type membershipChecker interface {
	GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error)
}

type productLister interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Product, error)
}

type inventoryLister interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Inventory, error)
}

type productResolver interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service is the channel sync orchestrator.
type Service interface {
	Sync(ctx context.Context, input SyncInput) (*SyncResult, error)
	Status(ctx context.Context, identity auth.Identity, accountID uuid.UUID, limit int) (*StatusView, error)
}

// Config bounds the orchestrator's fan-out.
type Config struct {
	MaxConcurrency int
	ChannelTimeout time.Duration
	LockTTL        time.Duration
}

type service struct {
	channels    channels.Repository
	memberships membershipChecker
	registry    *adapters.Registry
	importer    Importer
	logs        LogRepository
	locker      redis.SyncLocker
	products    productLister
	productIDs  productResolver
	stock       inventoryLister
	metrics     *metrics.SyncMetrics
	logg        *logger.Logger
	cfg         Config
}

// ServiceParams collects the orchestrator dependencies.
type ServiceParams struct {
	Channels        channels.Repository
	Memberships     membershipChecker
	Registry        *adapters.Registry
	Importer        Importer
	Logs            LogRepository
	Locker          redis.SyncLocker
	Products        productLister
	ProductResolver productResolver
	Stock           inventoryLister
	Metrics         *metrics.SyncMetrics
	Logger          *logger.Logger
	Config          Config
}

// NewService builds the orchestrator with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Channels == nil {
		return nil, fmt.Errorf("channels repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("adapter registry required")
	}
	if params.Importer == nil {
		return nil, fmt.Errorf("importer required")
	}
	if params.Logs == nil {
		return nil, fmt.Errorf("sync log repository required")
	}
	if params.Products == nil || params.ProductResolver == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("inventory repository required")
	}

	cfg := params.Config
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 30 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}

	return &service{
		channels:    params.Channels,
		memberships: params.Memberships,
		registry:    params.Registry,
		importer:    params.Importer,
		logs:        params.Logs,
		locker:      params.Locker,
		products:    params.Products,
		productIDs:  params.ProductResolver,
		stock:       params.Stock,
		metrics:     params.Metrics,
		logg:        params.Logger,
		cfg:         cfg,
	}, nil
}

// Sync fans the requested operation out over the resolved channels with
// bounded parallelism. Each channel's failure stays its own result; the batch
// itself only errors on validation, authorization, or channel resolution.
func (s *service) Sync(ctx context.Context, input SyncInput) (*SyncResult, error) {
	if !input.Resource.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync resource %q", input.Resource)
	}
	if input.Direction == "" {
		input.Direction = enums.SyncDirectionFromChannel
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync direction %q", input.Direction)
	}

	if err := s.authorize(ctx, input.Identity, input.AccountID); err != nil {
		return nil, err
	}

	targets, err := s.resolveTargets(ctx, input)
	if err != nil {
		return nil, err
	}

	results := make([]ChannelResult, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.MaxConcurrency)
	for i := range targets {
		group.Go(func() error {
			// A cancelled request stops issuing new adapter calls, but a
			// call already in flight runs to completion on a detached
			// timeout context so its outcome still gets logged.
			if groupCtx.Err() != nil {
				results[i] = ChannelResult{
					ChannelID:   targets[i].ID,
					ChannelType: targets[i].Type,
					Message:     "sync cancelled before this channel was attempted",
				}
				return nil
			}
			results[i] = s.syncChannel(context.WithoutCancel(ctx), &targets[i], input)
			return nil
		})
	}
	_ = group.Wait()

	aggregate := false
	var combined error
	for _, result := range results {
		if result.Success {
			aggregate = true
		} else if result.Message != "" {
			combined = multierr.Append(combined, fmt.Errorf("channel %s: %s", result.ChannelID, result.Message))
		}
	}
	if combined != nil && s.logg != nil {
		s.logg.Error(context.WithoutCancel(ctx), "sync batch finished with channel failures", combined)
	}

	return &SyncResult{
		Resource:         input.Resource,
		Direction:        input.Direction,
		AggregateSuccess: aggregate,
		Results:          results,
	}, nil
}

// Status returns recent sync log entries alongside current channel health.
func (s *service) Status(ctx context.Context, identity auth.Identity, accountID uuid.UUID, limit int) (*StatusView, error) {
	if err := s.authorize(ctx, identity, accountID); err != nil {
		return nil, err
	}

	rows, err := s.logs.Recent(ctx, accountID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sync logs")
	}
	channelRows, err := s.channels.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list channels")
	}

	view := &StatusView{
		Logs:     make([]LogView, 0, len(rows)),
		Channels: make([]channels.ChannelView, 0, len(channelRows)),
	}
	for _, row := range rows {
		view.Logs = append(view.Logs, LogView{
			ID:        row.ID,
			EventType: row.EventType,
			Status:    row.Status,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	for i := range channelRows {
		ch := &channelRows[i]
		view.Channels = append(view.Channels, channels.ChannelView{
			ID:         ch.ID,
			AccountID:  ch.AccountID,
			Type:       ch.Type,
			ExternalID: ch.ExternalID,
			Status:     ch.Status,
			LastError:  ch.LastError,
			CreatedAt:  ch.CreatedAt,
		})
	}
	return view, nil
}

func (s *service) resolveTargets(ctx context.Context, input SyncInput) ([]models.Channel, error) {
	if input.ChannelID != nil {
		channel, err := s.channels.FindByID(ctx, *input.ChannelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "channel not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load channel")
		}
		if channel.AccountID != input.AccountID || channel.Status != enums.ChannelStatusConnected {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "channel not found")
		}
		return []models.Channel{*channel}, nil
	}

	targets, err := s.channels.ListConnected(ctx, input.AccountID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list connected channels")
	}
	return targets, nil
}

// syncChannel runs one channel's attempt end to end: lock, dispatch, audit
// log, channel status side effect, metrics. It never returns an error; every
// outcome becomes the channel's result.
func (s *service) syncChannel(ctx context.Context, channel *models.Channel, input SyncInput) ChannelResult {
	result := ChannelResult{ChannelID: channel.ID, ChannelType: channel.Type}
	started := time.Now()

	if s.locker != nil {
		acquired, err := s.locker.AcquireSyncLock(ctx, channel.ID.String(), input.Resource.String(), s.cfg.LockTTL)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "sync lock acquire failed, proceeding without lock", err)
			}
		} else if !acquired {
			result.Message = "a sync for this channel and resource is already running"
			s.finishAttempt(ctx, channel, input, &result, started)
			return result
		} else {
			defer func() {
				if err := s.locker.ReleaseSyncLock(ctx, channel.ID.String(), input.Resource.String()); err != nil && s.logg != nil {
					s.logg.Error(ctx, "sync lock release failed", err)
				}
			}()
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ChannelTimeout)
	defer cancel()

	count, err := s.dispatch(callCtx, channel, input)
	if err != nil {
		result.Message = err.Error()
	} else {
		result.Success = true
		result.Count = count
	}

	s.finishAttempt(ctx, channel, input, &result, started)
	return result
}

func (s *service) dispatch(ctx context.Context, channel *models.Channel, input SyncInput) (int, error) {
	adapter, err := s.registry.Lookup(channel.Type)
	if err != nil {
		return 0, err
	}

	switch input.Direction {
	case enums.SyncDirectionFromChannel:
		return s.pull(ctx, adapter, channel, input)
	case enums.SyncDirectionToChannel:
		return s.push(ctx, adapter, channel, input)
	default:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync direction %q", input.Direction)
	}
}

func (s *service) pull(ctx context.Context, adapter adapters.Adapter, channel *models.Channel, input SyncInput) (int, error) {
	switch input.Resource {
	case enums.SyncResourceProducts:
		records, err := adapter.PullProducts(ctx, channel)
		if err != nil {
			return 0, err
		}
		return s.importer.ImportProducts(ctx, input.AccountID, records)
	case enums.SyncResourceInventory:
		records, err := adapter.PullInventory(ctx, channel)
		if err != nil {
			return 0, err
		}
		return s.importer.ImportInventory(ctx, input.AccountID, records)
	case enums.SyncResourceOrders:
		records, err := adapter.PullOrders(ctx, channel)
		if err != nil {
			return 0, err
		}
		return s.importer.ImportOrders(ctx, input.AccountID, records)
	default:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync resource %q", input.Resource)
	}
}

func (s *service) push(ctx context.Context, adapter adapters.Adapter, channel *models.Channel, input SyncInput) (int, error) {
	switch input.Resource {
	case enums.SyncResourceProducts:
		pusher, ok := adapter.(adapters.ProductPusher)
		if !ok {
			return 0, adapters.ErrUnsupported(channel.Type, "push_products")
		}
		exports, err := s.productExports(ctx, input.AccountID)
		if err != nil {
			return 0, err
		}
		return pusher.PushProducts(ctx, channel, exports)
	case enums.SyncResourceInventory:
		pusher, ok := adapter.(adapters.InventoryPusher)
		if !ok {
			return 0, adapters.ErrUnsupported(channel.Type, "push_inventory")
		}
		exports, err := s.inventoryExports(ctx, input.AccountID)
		if err != nil {
			return 0, err
		}
		return pusher.PushInventory(ctx, channel, exports)
	case enums.SyncResourceOrders:
		// Order export is not part of the sync surface. The attempt reports
		// zero pushed rather than an error.
		return 0, nil
	default:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync resource %q", input.Resource)
	}
}

func (s *service) productExports(ctx context.Context, accountID uuid.UUID) ([]adapters.ProductExport, error) {
	rows, err := s.products.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products for export")
	}
	exports := make([]adapters.ProductExport, 0, len(rows))
	for _, row := range rows {
		export := adapters.ProductExport{
			Name:       row.Name,
			SKU:        row.SKU,
			PriceCents: row.PriceCents,
			Active:     row.IsActive,
		}
		if row.ExternalID != nil {
			export.ExternalID = *row.ExternalID
		}
		exports = append(exports, export)
	}
	return exports, nil
}

// inventoryExports joins stock rows with their products' external ids. Rows
// for products the channel has never seen carry no external id and are
// skipped.
func (s *service) inventoryExports(ctx context.Context, accountID uuid.UUID) ([]adapters.InventoryExport, error) {
	rows, err := s.stock.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory for export")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	resolved, err := s.productIDs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve products for export")
	}
	externalByID := make(map[uuid.UUID]string, len(resolved))
	for _, product := range resolved {
		if product.ExternalID != nil {
			externalByID[product.ID] = *product.ExternalID
		}
	}

	exports := make([]adapters.InventoryExport, 0, len(rows))
	for _, row := range rows {
		externalID, ok := externalByID[row.ProductID]
		if !ok || externalID == "" {
			continue
		}
		exports = append(exports, adapters.InventoryExport{
			ProductExternalID: externalID,
			Warehouse:         row.Warehouse,
			Quantity:          row.Quantity,
		})
	}
	return exports, nil
}

// finishAttempt records the audit row, metric, and channel status transition
// for one attempt. The sync result stands even if these side writes fail.
func (s *service) finishAttempt(ctx context.Context, channel *models.Channel, input SyncInput, result *ChannelResult, started time.Time) {
	eventType := fmt.Sprintf("manual_%s_sync_%s", input.Resource, input.Direction)
	payload := types.JSONMap{
		"channel_id": channel.ID.String(),
		"direction":  string(input.Direction),
	}
	status := enums.SyncLogStatusCompleted
	outcome := "success"
	if result.Success {
		payload["count"] = result.Count
	} else {
		status = enums.SyncLogStatusError
		outcome = "error"
		payload["error"] = result.Message
	}

	if err := s.logs.Append(ctx, input.AccountID, eventType, status, payload); err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to append sync log", err)
	}
	s.metrics.ObserveSync(input.Resource.String(), input.Direction.String(), outcome, time.Since(started))

	channelStatus := enums.ChannelStatusConnected
	var lastError *string
	if !result.Success {
		channelStatus = enums.ChannelStatusError
		msg := result.Message
		lastError = &msg
	}
	if err := s.channels.SetStatus(ctx, channel.ID, channelStatus, lastError); err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to persist channel status", err)
	}
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
