// Package llm provides clients for the two external inference capabilities
// the intake pipeline depends on: text-to-score sentiment classification and
// text-to-structured-fields extraction.
//
// Providers are swappable behind the Client interface so the pipeline can be
// exercised with deterministic stubs in tests. All requests use temperature
// zero; repeated runs on identical input are reproducible.
package llm
