package rest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
)

// ListTransactionsQueryParams holds query parameters for GET /users/:id/transactions
type ListTransactionsQueryParams struct {
	// Filters
	Kinds       []string   `form:"kind"`
	ExternalRef string     `form:"external_ref"` // prefix match
	Since       *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until       *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`

	// Pagination
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ParseListTransactionsQuery parses query parameters for GET /users/:id/transactions
func ParseListTransactionsQuery(c *gin.Context) (*ListTransactionsQueryParams, error) {
	var params ListTransactionsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// kind=stake,unstake and kind=stake&kind=unstake are both accepted
	var kinds []string
	for _, k := range params.Kinds {
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				kinds = append(kinds, strings.ToLower(part))
			}
		}
	}
	params.Kinds = kinds

	if params.Limit > ledger.MaxListLimit {
		params.Limit = ledger.MaxListLimit
	}

	return &params, nil
}

// Validate checks kinds, the time window and pagination bounds
func (p *ListTransactionsQueryParams) Validate() error {
	for _, k := range p.Kinds {
		if !domain.LedgerKind(k).Valid() {
			return fmt.Errorf("unknown kind %q", k)
		}
	}
	if p.Since != nil && p.Until != nil && p.Until.Before(*p.Since) {
		return fmt.Errorf("until must not be before since")
	}
	if p.Limit < 1 || p.Offset < 0 {
		return fmt.Errorf("limit must be positive and offset non-negative")
	}
	return nil
}

// Filter converts the parameters into a ledger filter
func (p *ListTransactionsQueryParams) Filter() domain.TransactionFilter {
	filter := domain.TransactionFilter{
		ExternalRefPrefix: p.ExternalRef,
		Since:             p.Since,
		Until:             p.Until,
		Limit:             p.Limit,
		Offset:            p.Offset,
	}
	for _, k := range p.Kinds {
		filter.Kinds = append(filter.Kinds, domain.LedgerKind(k))
	}
	return filter
}

// ListDecisionsQueryParams holds query parameters for GET /teachers/:id/decisions
type ListDecisionsQueryParams struct {
	State  string `form:"state"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset,default=0"`
}

// ParseListDecisionsQuery parses query parameters for GET /teachers/:id/decisions
func ParseListDecisionsQuery(c *gin.Context) (*ListDecisionsQueryParams, error) {
	var params ListDecisionsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	params.State = strings.ToUpper(strings.TrimSpace(params.State))

	if params.State != "" && !domain.DecisionState(params.State).Valid() {
		return nil, fmt.Errorf("unknown state %q", params.State)
	}
	if params.Limit < 1 || params.Offset < 0 {
		return nil, fmt.Errorf("limit must be positive and offset non-negative")
	}
	return &params, nil
}

// parseIDParam reads a positive int64 path parameter
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}
