package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/storage/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// store runs squirrel statements against the transaction carried by the context, if any.
type store struct {
	db *database.DB
}

func (s store) get(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, s.db.Executor(ctx), dest, query, args...)
}

func (s store) selectAll(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, s.db.Executor(ctx), dest, query, args...)
}

// exec returns the number of affected rows.
func (s store) exec(ctx context.Context, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := s.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s store) exists(ctx context.Context, b sq.SelectBuilder) (bool, error) {
	var found bool
	err := s.get(ctx, &found, b.Prefix("SELECT EXISTS (").Suffix(")"))
	return found, err
}

type pair struct {
	Key   int `db:"key"`
	Value int `db:"value"`
}

// groupIDs runs a two-column (key, value) query and groups values by key, in query order.
func (s store) groupIDs(ctx context.Context, b sq.Sqlizer) (map[int][]int, error) {
	var pairs []pair
	if err := s.selectAll(ctx, &pairs, b); err != nil {
		return nil, err
	}
	grouped := make(map[int][]int)
	for _, p := range pairs {
		grouped[p.Key] = append(grouped[p.Key], p.Value)
	}
	return grouped, nil
}

func idsOrEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
