package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/godview/internal/admin/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits or rolls back; outer DB stays open

// Ping is a no-op: the transaction already holds a live connection.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions           { return &sessionsRepo{q: t.tx} }
func (t *txStore) Organizations() store.Organizations { return &organizationsRepo{q: t.tx} }
func (t *txStore) Members() store.Members             { return &membersRepo{q: t.tx} }
func (t *txStore) Suppliers() store.Suppliers         { return &suppliersRepo{q: t.tx} }
func (t *txStore) Invitations() store.Invitations     { return &invitationsRepo{q: t.tx} }
func (t *txStore) SuperAdminInvitations() store.SuperAdminInvitations {
	return &superAdminInvitationsRepo{q: t.tx}
}
func (t *txStore) ImpersonationTokens() store.ImpersonationTokens {
	return &impersonationTokensRepo{q: t.tx}
}
func (t *txStore) AuditLogs() store.AuditLogs             { return &auditLogsRepo{q: t.tx} }
func (t *txStore) FeatureFlags() store.FeatureFlags       { return &featureFlagsRepo{q: t.tx} }
func (t *txStore) EmailDeliveries() store.EmailDeliveries { return &emailDeliveriesRepo{q: t.tx} }
func (t *txStore) Insights() store.Insights               { return &insightsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx is opened
