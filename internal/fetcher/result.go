package fetcher

// Result represents the outcome of one symbol's request in a batch.
// Results are collected by the coordinator in the order the symbols were given.
type Result struct {
	// Symbol is the ticker the request was made for
	Symbol string

	// Value is the payload returned by the client method
	Value any

	// Err contains any error that occurred during the request.
	// If Err is not nil, Value should be considered invalid.
	Err error
}
