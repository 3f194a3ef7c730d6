package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gofinances/internal/core"
)

// ErrValidation wraps every input error returned by RegisterService.Create.
var ErrValidation = errors.New("validation failed")

// DefaultPublishTimeout caps how long Create waits on the event publisher.
const DefaultPublishTimeout = 2 * time.Second

// TransactionAppender persists a new transaction at the end of a user's list.
type TransactionAppender interface {
	Append(ctx context.Context, userID string, tx core.Transaction) error
}

// TransactionPublisher announces stored transactions to downstream workers.
type TransactionPublisher interface {
	PublishTransactionCreated(ctx context.Context, userID, transactionID string, date time.Time) error
}

// CreateTransactionInput is the raw register form.
type CreateTransactionInput struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	// Date defaults to now when zero.
	Date time.Time `json:"date"`
}

// RegisterService validates and stores new transactions.
type RegisterService struct {
	repo      TransactionAppender
	publisher TransactionPublisher
	catalog   core.Catalog
	now       func() time.Time
	newID     func() string

	publishTimeout time.Duration
}

// NewRegisterService creates the service. publisher may be nil.
func NewRegisterService(repo TransactionAppender, publisher TransactionPublisher, catalog core.Catalog) *RegisterService {
	if catalog == nil {
		catalog = core.DefaultCatalog()
	}
	return &RegisterService{
		repo:      repo,
		publisher: publisher,
		catalog:   catalog,
		now:       time.Now,
		newID:     uuid.NewString,

		publishTimeout: DefaultPublishTimeout,
	}
}

// Create validates input, stores it and publishes a transaction.created event.
// Publishing is best effort: the transaction is already stored when it fails.
func (s *RegisterService) Create(ctx context.Context, userID string, in CreateTransactionInput) (core.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return core.Transaction{}, core.ErrEmptyUserID
	}

	txType, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := core.Transaction{
		ID:       s.newID(),
		Name:     strings.TrimSpace(in.Name),
		Amount:   core.AmountText(strings.TrimSpace(in.Amount)),
		Type:     txType,
		Category: strings.TrimSpace(in.Category),
		Date:     date.UTC(),
	}
	if err := tx.Validate(s.catalog); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// Store the canonical amount so later reads never reparse a comma.
	m, _ := tx.Amount.Money()
	tx.Amount = core.AmountText(m.String())

	if err := s.repo.Append(ctx, userID, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping transaction.created event",
			"component", "register", "transaction_id", tx.ID)
		return tx, nil
	}
	// Bounded, and detached from the request: the transaction is already stored.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishTransactionCreated(pctx, userID, tx.ID, tx.Date); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction.created event",
			"component", "register", "user_id", userID, "transaction_id", tx.ID, "error", err)
	}

	return tx, nil
}
