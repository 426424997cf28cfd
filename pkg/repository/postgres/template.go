package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/model"
)

// DefaultTableName is the templates table used unless overridden
const DefaultTableName = "templates"

type templateRepository struct {
	pool  *pgxpool.Pool
	table string
}

func newTemplateRepository(pool *pgxpool.Pool) *templateRepository {
	return &templateRepository{
		pool:  pool,
		table: DefaultTableName,
	}
}

// SchemaSQL returns the DDL of the templates table
func SchemaSQL(table string) string {
	return strings.NewReplacer(
		"{{table}}", pgx.Identifier{table}.Sanitize(),
		"{{index}}", pgx.Identifier{table + "_name_idx"}.Sanitize(),
	).Replace(schemaSQL)
}

func (r *templateRepository) ident() string {
	return pgx.Identifier{r.table}.Sanitize()
}

const templateColumns = "id, name, url, created_at, updated_at"

func scanTemplate(row pgx.Row) (*model.Template, error) {
	var t model.Template
	if err := row.Scan(&t.ID, &t.Name, &t.URL, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *templateRepository) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	query := "INSERT INTO " + r.ident() + " (name, url) VALUES ($1, $2) RETURNING " + templateColumns

	created, err := scanTemplate(r.pool.QueryRow(ctx, query, t.Name, t.URL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert template", goerr.V("name", t.Name))
	}

	return created, nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	query := "SELECT " + templateColumns + " FROM " + r.ident() + " WHERE id = $1"

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to select template", goerr.V(model.TemplateIDKey, id))
	}

	return t, nil
}

func (r *templateRepository) List(ctx context.Context, order model.TemplateOrder) ([]*model.Template, error) {
	orderBy := "id ASC"
	if order == model.TemplateOrderName {
		orderBy = "name ASC, id ASC"
	}
	query := "SELECT " + templateColumns + " FROM " + r.ident() + " ORDER BY " + orderBy

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select templates")
	}
	defer rows.Close()

	var templates []*model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan template")
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate templates")
	}

	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	query := "UPDATE " + r.ident() + " SET name = $2, url = $3, updated_at = now() WHERE id = $1 RETURNING " + templateColumns

	updated, err := scanTemplate(r.pool.QueryRow(ctx, query, t.ID, t.Name, t.URL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, t.ID))
		}
		return nil, goerr.Wrap(err, "failed to update template", goerr.V(model.TemplateIDKey, t.ID))
	}

	return updated, nil
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM "+r.ident()+" WHERE id = $1", id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete template", goerr.V(model.TemplateIDKey, id))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
	}

	return nil
}
