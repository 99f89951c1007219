package database

import (
	"context"
	"errors"
)

// Collection names shared by every store driver.
const (
	CollectionQuotes          = "quotes"
	CollectionCompanies       = "companies"
	CollectionUsers           = "users"
	CollectionFailedTransfers = "failedTransfers"
	CollectionNotifications   = "notifications"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Op is a comparison operator for Filter.
type Op string

const (
	OpEqual        Op = "=="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
)

// Filter is a single equality or range condition on a (dotted) field path.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Query selects documents of one collection. A leading "-" on OrderBy sorts
// descending. Limit <= 0 means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Limit   int
}

// Document is a query result that can be decoded into a model.
type Document interface {
	DataTo(dst any) error
}

// Store is the hierarchical document store behind the repositories.
//
// Documents are addressed by collection and id and carry their id in an "id"
// field. Update takes dotted field paths ("payment.provisionStatus").
// Inside RunTransaction every operation issued with the callback's context
// joins the transaction; reads must come before writes.
type Store interface {
	Get(ctx context.Context, collection, id string, dst any) error
	Create(ctx context.Context, collection, id string, doc any) error
	Set(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
