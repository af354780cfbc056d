package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/faizmokh/jurnal/internal/logging"
	"github.com/faizmokh/jurnal/internal/session"
	"github.com/faizmokh/jurnal/internal/store"
)

// Adapter moves whole tables between memory and one resource of a store.
// After every successful Persist the store holds exactly the table that was
// written.
type Adapter struct {
	store    store.Store
	resource string
	order    Order
	logger   *log.Logger
}

// NewAdapter binds an adapter to resource within s.
func NewAdapter(s store.Store, resource string, order Order, logger *log.Logger) *Adapter {
	return &Adapter{
		store:    s,
		resource: resource,
		order:    order,
		logger:   logging.OrDiscard(logger),
	}
}

// Resource names the sheet the adapter reads and writes.
func (a *Adapter) Resource() string {
	return a.resource
}

// Load reads the full table. A resource that was never written loads as an
// empty table; every other failure is returned so callers never mistake an
// unreachable store for an empty one.
func (a *Adapter) Load(ctx context.Context) (Table, error) {
	if a == nil || a.store == nil {
		return Table{}, errors.New("adapter not initialized with a store")
	}

	content, err := a.store.Read(ctx, a.resource)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.logger.Debug("sheet absent, starting empty", "resource", a.resource)
			return NewTable(a.order), nil
		}
		return Table{}, fmt.Errorf("load %s: %w", a.resource, err)
	}
	return FromRecords(content.Records, content.Token, a.order), nil
}

// Persist replaces the stored resource with t, provided nobody else wrote it
// since t was loaded. The returned table carries the new change token.
func (a *Adapter) Persist(ctx context.Context, t Table) (Table, error) {
	if a == nil || a.store == nil {
		return t, errors.New("adapter not initialized with a store")
	}

	token, err := a.store.Write(ctx, a.resource, t.Records(), t.Token)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			a.logger.Warn("sheet changed since load", append([]any{"resource", a.resource}, actorAttrs(ctx)...)...)
		}
		return t, fmt.Errorf("persist %s: %w", a.resource, err)
	}

	a.logger.Info("persisted sheet", append([]any{"resource", a.resource, "rows", t.Len()}, actorAttrs(ctx)...)...)
	next := t.clone()
	next.Token = token
	return next, nil
}

// actorAttrs names the session a write was made under, when ctx carries one.
func actorAttrs(ctx context.Context) []any {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil
	}
	attrs := []any{"session", sess.ID}
	if sess.Authenticated() {
		attrs = append(attrs, "account", sess.Username)
	}
	return attrs
}
