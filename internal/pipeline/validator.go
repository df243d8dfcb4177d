package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-bot/pennywise/internal/common"
	"github.com/pennywise-bot/pennywise/internal/model"
)

// maxDescriptionLength bounds the stored description.
const maxDescriptionLength = 355

// ValidatorConfig holds the record validation policy.
type ValidatorConfig struct {
	Policy     model.CategoryPolicy
	Categories []string
}

// Validator schema- and range-checks candidate expenses and applies the
// default/normalization rules before anything is persisted.
type Validator struct {
	allowed map[string]struct{}
	clock   func() time.Time
	policy  model.CategoryPolicy
}

// NewValidator creates a validator. The clock is injectable for tests; nil
// means time.Now.
func NewValidator(cfg ValidatorConfig, clock func() time.Time) *Validator {
	if clock == nil {
		clock = time.Now
	}
	policy := cfg.Policy
	if policy == "" {
		policy = model.CategoryPolicyAllowlist
	}

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}

	return &Validator{policy: policy, allowed: allowed, clock: clock}
}

// Validate turns an untrusted candidate into a persistable expense or
// rejects it. Date and time default to validation time, not message-receipt
// time, so the stored values cannot drift between stages.
func (v *Validator) Validate(userID, platform string, candidate model.CandidateExpense) (*model.Expense, error) {
	if candidate.Amount == nil {
		return nil, fmt.Errorf("%w: missing amount", common.ErrValidation)
	}
	amount := *candidate.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: amount is not finite", common.ErrValidation)
	}
	if amount <= model.MinAmount || amount > model.MaxAmount {
		return nil, fmt.Errorf("%w: amount %v out of range", common.ErrValidation, amount)
	}

	category := model.SentinelCategory
	if candidate.Category != nil {
		if c := strings.ToLower(strings.TrimSpace(*candidate.Category)); c != "" {
			category = c
		}
	}
	if v.policy == model.CategoryPolicyAllowlist {
		if _, ok := v.allowed[category]; !ok {
			return nil, fmt.Errorf("%w: category %q not in allow-list", common.ErrValidation, category)
		}
	}

	description := model.SentinelDescription
	if candidate.Description != nil {
		if d := strings.TrimSpace(*candidate.Description); d != "" {
			description = d
		}
	}
	if len(description) > maxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", common.ErrValidation, maxDescriptionLength)
	}

	now := v.clock()
	date := now.Format(model.DateLayout)
	if candidate.Date != nil && strings.TrimSpace(*candidate.Date) != "" {
		date = strings.TrimSpace(*candidate.Date)
	}
	timeOfDay := now.Format(model.TimeLayout)
	if candidate.Time != nil && strings.TrimSpace(*candidate.Time) != "" {
		timeOfDay = strings.TrimSpace(*candidate.Time)
	}

	merchant := model.SentinelMerchant
	if candidate.Merchant != nil {
		if m := strings.ToLower(strings.TrimSpace(*candidate.Merchant)); m != "" {
			merchant = m
		}
	}

	return &model.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		Time:        timeOfDay,
		Merchant:    merchant,
		Platform:    platform,
		CreatedAt:   now,
	}, nil
}
