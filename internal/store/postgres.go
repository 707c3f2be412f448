package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentalempire/internal/game"
)

// Postgres stores snapshots in game.saves as jsonb, one row per slot.
type Postgres struct {
	db   *pgxpool.Pool
	slot string
}

func NewPostgres(db *pgxpool.Pool, slot string) *Postgres {
	return &Postgres{db: db, slot: slotOrDefault(slot)}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS game`,
		`CREATE TABLE IF NOT EXISTS game.saves (
			slot text PRIMARY KEY,
			version integer NOT NULL,
			payload jsonb NOT NULL,
			saved_at timestamptz NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure saves schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) (game.Snapshot, error) {
	var payload []byte
	err := p.db.QueryRow(ctx, `SELECT payload FROM game.saves WHERE slot = $1`, p.slot).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.Snapshot{}, game.ErrNoSnapshot
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load save %q: %w", p.slot, err)
	}
	return game.DecodeSnapshot(payload)
}

func (p *Postgres) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO game.saves (slot, version, payload, saved_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (slot) DO UPDATE SET
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			saved_at = now()
	`, p.slot, int(snap.Version), string(data))
	if err != nil {
		return fmt.Errorf("save %q: %w", p.slot, err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM game.saves WHERE slot = $1`, p.slot); err != nil {
		return fmt.Errorf("clear save %q: %w", p.slot, err)
	}
	return nil
}
