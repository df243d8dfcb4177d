// Package model defines the core domain models used throughout the application.
package model

// RawMessage is a single inbound message as handed over by the transport
// layer. The transport has already established that the sender is the one
// authorized user; the pipeline does not re-validate identity.
type RawMessage struct {
	Text     string
	SenderID string
	ChatID   string
}

// SanitizationResult is the outcome of the syntactic gate that every message
// passes before any other stage may see it.
type SanitizationResult struct {
	SanitizedText string
	UserMessage   string
	ErrorCode     RejectionCode
	IsValid       bool
}

// SignalReport summarizes the deterministic lexical scan of one message.
// AmountCandidate is non-nil exactly when HasNumber is true.
type SignalReport struct {
	AmountCandidate     *float64
	CurrencySymbol      string
	InferredDescription string
	HasNumber           bool
	HasCurrency         bool
	HasExpenseVerb      bool
	HasMerchantLike     bool
	HasDate             bool
	HasTime             bool
}

// Empty reports whether no signal fired at all.
func (r SignalReport) Empty() bool {
	return !r.HasNumber && !r.HasCurrency && !r.HasExpenseVerb &&
		!r.HasMerchantLike && !r.HasDate && !r.HasTime
}

// HasAmountEvidence reports whether the message carries the mandatory
// amount evidence (a numeric token or a currency marker).
func (r SignalReport) HasAmountEvidence() bool {
	return r.HasNumber || r.HasCurrency
}

// CandidateExpense is the untrusted structured output of the extraction
// service. Fields are pointers because the model may null any of them; a
// candidate must never be persisted without passing the record validator.
type CandidateExpense struct {
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Time        *string  `json:"time"`
	Merchant    *string  `json:"merchant"`
}
