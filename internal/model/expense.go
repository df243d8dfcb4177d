package model

import "time"

// Amount bounds for a persistable expense.
const (
	MinAmount = 0.0
	MaxAmount = 999999.0
)

// Date and time layouts used on persisted records. Chosen once so the
// extraction examples and the validator defaults always agree.
const (
	DateLayout = "Jan 2, 2006"
	TimeLayout = "3:04 PM"
)

// Sentinel values substituted for missing optional fields.
const (
	SentinelCategory    = "misc"
	SentinelDescription = "expense"
	SentinelMerchant    = "unknown"
)

// Expense is a validated, persistable expense record. It is created exactly
// once per accepted message and never mutated afterwards.
type Expense struct {
	CreatedAt   time.Time
	ID          string
	UserID      string
	Category    string
	Description string
	Date        string
	Time        string
	Merchant    string
	Platform    string
	Amount      float64
}

// RejectionCode identifies which stage rejected a message. Codes are logged
// internally; the user only ever sees the advisory message, if any.
type RejectionCode string

// Rejection codes, one per stage of the intake pipeline.
const (
	CodeSanitization RejectionCode = "SANITIZATION_ERROR"
	CodeSignal       RejectionCode = "SIGNAL_REJECTION"
	CodeConfidence   RejectionCode = "CONFIDENCE_REJECTION"
	CodeExtraction   RejectionCode = "EXTRACTION_ERROR"
	CodeValidation   RejectionCode = "VALIDATION_ERROR"
	CodeStorage      RejectionCode = "STORAGE_ERROR"
)

// CategoryPolicy selects how the record validator treats the category field.
type CategoryPolicy string

// Category policies. Allowlist enforces a closed category list; freeform
// accepts any non-empty lowercased string.
const (
	CategoryPolicyAllowlist CategoryPolicy = "allowlist"
	CategoryPolicyFreeform  CategoryPolicy = "freeform"
)

// DefaultCategories is the default closed allow-list used when the
// deployment does not configure its own.
var DefaultCategories = []string{
	"food", "grocery", "travel", "shopping", "bills", "entertainment", "health", "misc",
}

// BudgetPeriod identifies the horizon of a configured spending budget.
type BudgetPeriod string

// Budget periods the bot commands can set and report against.
const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetWeekly  BudgetPeriod = "weekly"
	BudgetMonthly BudgetPeriod = "monthly"
)
