package entity

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
)

// Budget is a single budget entry as the server represents it.
type Budget struct {
	ID int `json:"id"`
	// LocalID carries a client-assigned id for optimistic placeholders
	// that the server has not numbered yet. Never sent on the wire.
	LocalID       string `json:"-"`
	User          int    `json:"user"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	InitialAmount string `json:"initial_amount"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// EntityID returns the server id, or the client-assigned placeholder id for
// entities the server has not confirmed yet.
func (b Budget) EntityID() string {
	if b.ID == 0 {
		return b.LocalID
	}
	return strconv.Itoa(b.ID)
}

// BudgetInput is the request body for creating or updating a budget.
type BudgetInput struct {
	Title         string `json:"title" validate:"required,max=255"`
	Description   string `json:"description"`
	Date          string `json:"date" validate:"required,dateformat"`
	InitialAmount string `json:"initial_amount" validate:"required,decimalgt0"`
}

// Budgets is the typed budget client.
type Budgets struct {
	*Resource[Budget]
}

// NewBudgets creates the budget client.
func NewBudgets(doer httpclient.Doer, store *cache.Store, log *logger.Logger, opts ...ResourceOption[Budget]) *Budgets {
	return &Budgets{
		Resource: NewResource[Budget]("budgets", "/api/budgets/", doer, store, log, opts...),
	}
}

// Create posts a new budget, showing a placeholder in the cached list until
// the server assigns the real id.
func (b *Budgets) Create(ctx context.Context, input BudgetInput) (Budget, error) {
	placeholder := Budget{
		LocalID:       uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		Date:          input.Date,
		InitialAmount: input.InitialAmount,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	return b.Resource.Create(ctx, input, placeholder)
}

// Update replaces a budget. The cached entity keeps its id and timestamps;
// the input fields appear immediately, pending server confirmation.
func (b *Budgets) Update(ctx context.Context, id int, input BudgetInput) (Budget, error) {
	current, err := b.Get(ctx, strconv.Itoa(id))
	if err != nil {
		return Budget{}, err
	}
	optimistic := current
	optimistic.Title = input.Title
	optimistic.Description = input.Description
	optimistic.Date = input.Date
	optimistic.InitialAmount = input.InitialAmount
	return b.Resource.Update(ctx, strconv.Itoa(id), input, optimistic)
}

// Delete removes a budget by id.
func (b *Budgets) Delete(ctx context.Context, id int) error {
	return b.Resource.Delete(ctx, strconv.Itoa(id))
}
