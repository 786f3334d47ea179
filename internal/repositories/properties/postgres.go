package properties

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, p *models.Property) (*models.Property, error) {

	query :=
		`INSERT INTO user_properties (user_id, name, value)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	var id string
	if err := r.db.QueryRowContext(ctx, query, p.UserID, p.Name, p.Value).Scan(&id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.ID = id
	return p, nil
}

func (r *PostgresRepository) UpdateValue(ctx context.Context, id string, value string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user_properties SET value = $2 WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) (models.PropertyList, error) {

	query :=
		`SELECT id, user_id, name, value FROM user_properties
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out models.PropertyList
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.exec(ctx, `DELETE FROM user_properties WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) DeleteByName(ctx context.Context, userID, name string) (int64, error) {
	return r.exec(ctx, `DELETE FROM user_properties WHERE user_id = $1 AND name = $2`, userID, name)
}

func (r *PostgresRepository) DeleteByNameValue(ctx context.Context, userID, name, value string) (int64, error) {
	return r.exec(ctx, `DELETE FROM user_properties WHERE user_id = $1 AND name = $2 AND value = $3`, userID, name, value)
}

func (r *PostgresRepository) DeleteAllByName(ctx context.Context, name string) (int64, error) {
	return r.exec(ctx, `DELETE FROM user_properties WHERE name = $1`, name)
}

func (r *PostgresRepository) DeleteAllByNameValue(ctx context.Context, name, value string) (int64, error) {
	return r.exec(ctx, `DELETE FROM user_properties WHERE name = $1 AND value = $2`, name, value)
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.exec(ctx, `DELETE FROM user_properties WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresRepository) FindUserIDs(ctx context.Context, filters []models.PropertyFilter) ([]string, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	query, args := findUserIDsQuery(filters)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// findUserIDsQuery joins user_properties once per filter so that a user
// matches only when every pair is present. Filters are sorted to keep the
// statement stable for a given set.
func findUserIDsQuery(filters []models.PropertyFilter) (string, []any) {
	sorted := make([]models.PropertyFilter, len(filters))
	copy(sorted, filters)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Value < sorted[j].Value
	})

	var b strings.Builder
	args := make([]any, 0, 2*len(sorted))

	b.WriteString("SELECT DISTINCT p0.user_id FROM user_properties p0")
	for i := 1; i < len(sorted); i++ {
		fmt.Fprintf(&b, " JOIN user_properties p%d ON p%d.user_id = p0.user_id AND p%d.name = $%d AND p%d.value = $%d",
			i, i, i, 2*i+1, i, 2*i+2)
	}
	b.WriteString(" WHERE p0.name = $1 AND p0.value = $2 ORDER BY p0.user_id")

	for _, f := range sorted {
		args = append(args, f.Name, f.Value)
	}
	return b.String(), args
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
