// Package signal implements the deterministic lexical scan that decides,
// without any external calls, whether text carries expense-like evidence.
package signal

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pennywise-bot/pennywise/internal/model"
)

// descriptionWindow is the number of characters kept on each side of the
// amount match when inferring a description snippet.
const descriptionWindow = 30

var (
	currencySymbols = "₹$€£¥"

	currencyWordPattern = regexp.MustCompile(`(?i)\b(?:rs|inr|rupees?|usd|dollars?|bucks|eur|euros?|gbp|pounds?|yen)\b`)

	// Numeric token candidates. Adjacency, percent/fraction, and
	// multi-decimal exclusions are applied per match; RE2 has no lookarounds.
	numberPattern = regexp.MustCompile(`[0-9][0-9.,]*|\.[0-9][0-9.,]*`)

	expenseVerbPattern = regexp.MustCompile(`(?i)\b(?:spent|spend|paid|pay|bought|buy|ordered|order|purchased|purchase|billed|charged|invested|invest|subscribed|recharged|booked|rented|transferred|sent)\b`)

	// Merchant extraction: a preposition-anchored token sequence first, then
	// a bare capitalized word sequence as fallback.
	merchantPrepPattern = regexp.MustCompile(`(?i)\b(?:at|from|via|by|in|on)\s+([A-Za-z][A-Za-z0-9&'._-]*(?:\s+[A-Z][A-Za-z0-9&'._-]*)*)`)
	merchantBarePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

	isoDatePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashDatePattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	timePattern      = regexp.MustCompile(`\b(?:[01]?\d|2[0-3]):[0-5]\d\b`)

	trailingPunct = ".,"
)

// Detect runs the full lexical scan. It is a pure function: identical input
// yields an identical report, and no I/O happens.
//
// Ordering matters: the amount scan runs before merchant extraction because
// merchant evidence only counts once an amount or currency marker was found.
func Detect(text string) model.SignalReport {
	var report model.SignalReport

	if idx := strings.IndexAny(text, currencySymbols); idx >= 0 {
		report.HasCurrency = true
		report.CurrencySymbol = string([]rune(text[idx:])[0])
	} else if m := currencyWordPattern.FindString(text); m != "" {
		report.HasCurrency = true
		report.CurrencySymbol = strings.ToLower(m)
	}

	if amount, span, ok := findAmount(text); ok {
		report.HasNumber = true
		report.AmountCandidate = &amount
		report.InferredDescription = describeAround(text, span)
	}

	report.HasExpenseVerb = expenseVerbPattern.MatchString(text)

	// Merchants are not evidence of an expense by themselves; only look for
	// one when amount or currency evidence already exists.
	if report.HasNumber || report.HasCurrency {
		if merchant, ok := findMerchant(text); ok {
			report.HasMerchantLike = true
			if report.InferredDescription == "" {
				report.InferredDescription = merchant
			}
		}
	}

	report.HasDate = isoDatePattern.MatchString(text) || slashDatePattern.MatchString(text)
	report.HasTime = timePattern.MatchString(text)

	return report
}

// findAmount returns the first numeric token that survives the exclusion
// rules, parsed to a float, along with its location in the text.
func findAmount(text string) (float64, [2]int, bool) {
	for _, span := range numberPattern.FindAllStringIndex(text, -1) {
		start, end := span[0], span[1]
		token := strings.TrimRight(text[start:end], trailingPunct)
		if token == "" {
			continue
		}
		end = start + len(token)

		// Tokens embedded in identifiers are not amounts.
		if start > 0 && isAlphanumeric(text[start-1]) {
			continue
		}
		if end < len(text) && isAlphanumeric(text[end]) {
			continue
		}
		// Percentages and fractions (and slash dates misread as amounts).
		if end < len(text) && (text[end] == '%' || text[end] == '/') {
			continue
		}
		if start > 0 && (text[start-1] == '%' || text[start-1] == '/') {
			continue
		}
		if strings.Count(token, ".") > 1 {
			continue
		}

		normalized, ok := normalizeAmount(token)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			continue
		}
		return value, [2]int{start, end}, true
	}
	return 0, [2]int{}, false
}

// normalizeAmount resolves thousands separators. A single comma followed by
// exactly two trailing digits is a decimal-separator conflict and treated as
// the decimal point; any other commas are grouping and stripped. A leading
// decimal point is zero-padded.
func normalizeAmount(token string) (string, bool) {
	if strings.Count(token, ",") == 1 && !strings.Contains(token, ".") {
		if i := strings.IndexByte(token, ','); len(token)-i-1 == 2 {
			token = token[:i] + "." + token[i+1:]
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	} else {
		token = strings.ReplaceAll(token, ",", "")
	}

	if token == "" || token == "." {
		return "", false
	}
	if token[0] == '.' {
		token = "0" + token
	}
	return token, true
}

// findMerchant tries the preposition-anchored pattern first and falls back
// to a bare capitalized word sequence. Sequences that are really verbs or
// currency words do not count.
func findMerchant(text string) (string, bool) {
	if m := merchantPrepPattern.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if !isStopToken(candidate) {
			return candidate, true
		}
	}

	for _, m := range merchantBarePattern.FindAllString(text, -1) {
		if !isStopToken(m) {
			return m, true
		}
	}
	return "", false
}

func isStopToken(token string) bool {
	return expenseVerbPattern.MatchString(token) || currencyWordPattern.MatchString(token)
}

// describeAround collapses whitespace in a window around the amount match
// and trims leading and trailing punctuation. The window edges are snapped
// to rune boundaries so multi-byte characters are never split.
func describeAround(text string, span [2]int) string {
	start := span[0] - descriptionWindow
	if start < 0 {
		start = 0
	}
	end := span[1] + descriptionWindow
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	snippet := strings.Join(strings.Fields(text[start:end]), " ")
	return strings.Trim(snippet, " .,!?-:;")
}

func isAlphanumeric(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
