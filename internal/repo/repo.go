// Package repo contains the SQL repositories. Every method runs against
// the Querier resolved from the request context: inside a unit of work that
// is the active transaction, outside it the pool. Lookups that find nothing
// return a nil entity and a nil error; deciding whether a missing row is a
// business failure belongs to the service layer.
package repo

import (
	"context"

	"clinic-api/internal/platform/pg"
)

// DB resolves the query surface for the current context. *pg.TxRunner
// implements it.
type DB interface {
	GetQuerier(ctx context.Context) pg.Querier
}
