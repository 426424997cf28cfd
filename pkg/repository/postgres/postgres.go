package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = goerr.Wrap(model.ErrNotFound, "row not found in postgres")

//go:embed schema.sql
var schemaSQL string

// Postgres stores templates in a PostgreSQL table, such as the one a hosted
// Supabase project exposes.
type Postgres struct {
	pool     *pgxpool.Pool
	template *templateRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*Postgres)

// WithTableName overrides the templates table name
func WithTableName(name string) Option {
	return func(p *Postgres) {
		p.template.table = name
	}
}

// New connects to the database identified by dsn
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	p := &Postgres{
		pool:     pool,
		template: newTemplateRepository(pool),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Migrate creates the templates table when it does not exist
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, p.SchemaSQL()); err != nil {
		return goerr.Wrap(err, "failed to apply schema", goerr.V("table", p.template.table))
	}
	return nil
}

// SchemaSQL returns the DDL Migrate applies
func (p *Postgres) SchemaSQL() string {
	return SchemaSQL(p.template.table)
}

func (p *Postgres) Template() interfaces.TemplateRepository {
	return p.template
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// DropTable removes the templates table. Intended for test cleanup.
func (p *Postgres) DropTable(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS "+p.template.ident()); err != nil {
		return goerr.Wrap(err, "failed to drop table", goerr.V("table", p.template.table))
	}
	return nil
}
