package services

import (
	"database/sql"
	"errors"
	"fmt"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
)

// ReceiveSerialsRequest registers physical serialized units into stock.
type ReceiveSerialsRequest struct {
	ArticleID int64    `json:"article_id" binding:"required"`
	Serials   []string `json:"serials" binding:"required"`
	IsUsed    bool     `json:"is_used"`
	Location  string   `json:"location"`
	Actor     string   `json:"actor" binding:"required"`
}

// UpdateSerialRequest edits the mutable attributes of a serial number.
// Status may only move to a side branch (DEFECTIVE, RETURNED, DISPOSED) or
// back to IN_STOCK from a side branch; order binding is managed exclusively
// by the fulfillment workflow.
type UpdateSerialRequest struct {
	Status   *string `json:"status"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
	IsUsed   *bool   `json:"is_used"`
}

// SerialService tracks individual serialized-unit lifecycle and its binding
// to order items. Every lifecycle operation that changes countable stock
// issues the matching ledger movement in the same transaction.
type SerialService interface {
	Receive(req ReceiveSerialsRequest) ([]models.SerialNumber, *models.Article, error)
	// ReceiveTx creates IN_STOCK serials within a caller transaction
	// without touching the ledger; the caller is responsible for the
	// accompanying IN movement.
	ReceiveTx(tx repositories.SQLExecutor, articleID int64, serials []string, isUsed bool, orderItemID *int64) ([]models.SerialNumber, error)
	ReserveForPick(serialID, orderItemID int64, actor string) (*models.SerialNumber, error)
	Release(serialID int64, actor string) (*models.SerialNumber, error)
	GetSerials(filters models.SerialFilters) ([]models.SerialNumber, int, error)
	GetSerialByID(id int64) (*models.SerialNumber, error)
	UpdateSerial(id int64, req UpdateSerialRequest) (*models.SerialNumber, error)
}

type serialService struct {
	serialRepo  repositories.SerialNumberRepository
	articleRepo repositories.ArticleRepository
	stock       StockService
	db          *sql.DB
}

// NewSerialService creates a new instance of SerialService.
func NewSerialService(
	sr repositories.SerialNumberRepository,
	ar repositories.ArticleRepository,
	stock StockService,
	db *sql.DB,
) SerialService {
	return &serialService{serialRepo: sr, articleRepo: ar, stock: stock, db: db}
}

func (s *serialService) ReceiveTx(tx repositories.SQLExecutor, articleID int64, serials []string, isUsed bool, orderItemID *int64) ([]models.SerialNumber, error) {
	created := make([]models.SerialNumber, 0, len(serials))
	for _, raw := range serials {
		if raw == "" {
			return nil, fmt.Errorf("%w: serial string cannot be empty", ErrValidation)
		}
		serial := models.SerialNumber{
			ArticleID:   articleID,
			Serial:      raw,
			Status:      models.SerialInStock,
			IsUsed:      isUsed,
			OrderItemID: orderItemID,
		}
		if _, err := s.serialRepo.CreateSerial(tx, &serial); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, fmt.Errorf("%w: serial '%s'", ErrDuplicateIdentifier, raw)
			}
			return nil, fmt.Errorf("failed to create serial '%s': %w", raw, err)
		}
		created = append(created, serial)
	}
	return created, nil
}

func (s *serialService) Receive(req ReceiveSerialsRequest) ([]models.SerialNumber, *models.Article, error) {
	if req.Actor == "" {
		return nil, nil, fmt.Errorf("%w: actor is required for receiving serials", ErrValidation)
	}
	if len(req.Serials) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one serial is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	article, err := s.articleRepo.GetArticleByID(tx, req.ArticleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
		}
		return nil, nil, fmt.Errorf("failed to fetch article for serial receipt: %w", err)
	}
	if !article.IsSerialized {
		return nil, nil, fmt.Errorf("%w: article %s does not track serial numbers", ErrValidation, article.SKU)
	}

	created, err := s.ReceiveTx(tx, req.ArticleID, req.Serials, req.IsUsed, nil)
	if err != nil {
		return nil, nil, err
	}
	if req.Location != "" {
		for i := range created {
			if err := s.serialRepo.UpdateSerialDetails(tx, created[i].ID, &req.Location, nil, nil); err != nil {
				return nil, nil, fmt.Errorf("failed to set location of serial '%s': %w", created[i].Serial, err)
			}
			created[i].Location = &req.Location
		}
	}

	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: req.ArticleID,
		Kind:      models.MovementIn,
		Quantity:  len(req.Serials),
		Reason:    "Serial number receipt",
		Actor:     req.Actor,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit serial receipt transaction: %w", err)
	}

	article, err = s.articleRepo.GetArticleByID(nil, req.ArticleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-read article after serial receipt: %w", err)
	}
	return created, article, nil
}

func (s *serialService) ReserveForPick(serialID, orderItemID int64, actor string) (*models.SerialNumber, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for reserving a serial", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	serial, err := s.serialRepo.GetSerialByID(tx, serialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, serialID)
		}
		return nil, fmt.Errorf("failed to fetch serial for reservation: %w", err)
	}

	if err := s.serialRepo.BindToOrderItem(tx, serialID, orderItemID, models.SerialReserved); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: serial '%s' is not in stock", ErrSerialNumberUnavailable, serial.Serial)
		}
		return nil, fmt.Errorf("failed to bind serial: %w", err)
	}

	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: serial.ArticleID,
		Kind:      models.MovementOut,
		Quantity:  1,
		Reason:    fmt.Sprintf("Serial '%s' reserved for order item %d", serial.Serial, orderItemID),
		Actor:     actor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit serial reservation: %w", err)
	}
	return s.serialRepo.GetSerialByID(nil, serialID)
}

func (s *serialService) Release(serialID int64, actor string) (*models.SerialNumber, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for releasing a serial", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	serial, err := s.serialRepo.GetSerialByID(tx, serialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, serialID)
		}
		return nil, fmt.Errorf("failed to fetch serial for release: %w", err)
	}

	if err := s.serialRepo.ReleaseFromOrderItem(tx, serialID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: serial '%s' is not bound to an order item", ErrPreconditionNotMet, serial.Serial)
		}
		return nil, fmt.Errorf("failed to release serial: %w", err)
	}

	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: serial.ArticleID,
		Kind:      models.MovementIn,
		Quantity:  1,
		Reason:    fmt.Sprintf("Serial '%s' released", serial.Serial),
		Actor:     actor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit serial release: %w", err)
	}
	return s.serialRepo.GetSerialByID(nil, serialID)
}

func (s *serialService) GetSerials(filters models.SerialFilters) ([]models.SerialNumber, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 200 {
		filters.PageSize = 50
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidSerialStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown serial status '%s'", ErrValidation, *filters.Status)
	}
	serials, totalCount, err := s.serialRepo.GetSerials(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get serial numbers: %w", err)
	}
	return serials, totalCount, nil
}

func (s *serialService) GetSerialByID(id int64) (*models.SerialNumber, error) {
	serial, err := s.serialRepo.GetSerialByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, id)
		}
		return nil, fmt.Errorf("failed to get serial number: %w", err)
	}
	return serial, nil
}

// sideBranchStatuses are the statuses UpdateSerial may move a serial into
// or out of. The IN_STOCK/RESERVED/DEPLOYED main path belongs to the
// fulfillment workflow.
func isSideBranchStatus(status string) bool {
	switch status {
	case models.SerialDefective, models.SerialReturned, models.SerialDisposed:
		return true
	default:
		return false
	}
}

func (s *serialService) UpdateSerial(id int64, req UpdateSerialRequest) (*models.SerialNumber, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	serial, err := s.serialRepo.GetSerialByID(tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch serial for update: %w", err)
	}

	if req.Status != nil && *req.Status != serial.Status {
		if !models.IsValidSerialStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown serial status '%s'", ErrValidation, *req.Status)
		}
		toSide := isSideBranchStatus(*req.Status)
		backInStock := *req.Status == models.SerialInStock && isSideBranchStatus(serial.Status)
		if !toSide && !backInStock {
			return nil, fmt.Errorf("%w: transition %s -> %s is driven by the fulfillment workflow",
				ErrPreconditionNotMet, serial.Status, *req.Status)
		}
		if serial.OrderItemID != nil {
			return nil, fmt.Errorf("%w: serial '%s' is bound to an order item; release it first",
				ErrPreconditionNotMet, serial.Serial)
		}
		if err := s.serialRepo.UpdateSerialStatus(tx, id, *req.Status); err != nil {
			return nil, fmt.Errorf("failed to update serial status: %w", err)
		}
	}

	if req.Location != nil || req.Notes != nil || req.IsUsed != nil {
		if err := s.serialRepo.UpdateSerialDetails(tx, id, req.Location, req.Notes, req.IsUsed); err != nil {
			return nil, fmt.Errorf("failed to update serial details: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit serial update: %w", err)
	}
	return s.serialRepo.GetSerialByID(nil, id)
}
