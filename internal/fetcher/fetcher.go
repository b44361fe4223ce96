// Package fetcher holds the transport pieces shared by the IEX Cloud clients:
// the HTTP client, the single GET helper and the error taxonomy.
package fetcher
