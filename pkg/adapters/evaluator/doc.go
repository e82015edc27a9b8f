// Package evaluator is the HTTP client for the external rule-evaluation service.
package evaluator
