package repository

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
)

const (
	roomsTable = "rooms"
	colID      = "id"

	// dialectGormPostgres is the postgres dialect with "?" placeholders, the
	// form gorm's Raw expects before handing the statement to pgx.
	dialectGormPostgres = "gorm-postgres"
)

func init() {
	opts := postgres.DialectOptions()
	opts.PlaceHolderFragment = []byte("?")
	opts.IncludePlaceholderNum = false
	goqu.RegisterDialect(dialectGormPostgres, opts)
}

// filterExpression renders a room filter as a conjunctive WHERE expression.
func filterExpression(filter roomDomain.Filter) (exp.ExpressionList, error) {
	conditions := filter.Conditions()
	expressions := make([]exp.Expression, 0, len(conditions))

	for _, c := range conditions {
		col := goqu.C(string(c.Field))
		switch c.Comparator {
		case roomDomain.Gte:
			expressions = append(expressions, col.Gte(c.Value))
		case roomDomain.Lte:
			expressions = append(expressions, col.Lte(c.Value))
		case roomDomain.Eq:
			expressions = append(expressions, col.Eq(c.Value))
		default:
			return nil, fmt.Errorf("unsupported comparator %q on %s", c.Comparator, c.Field)
		}
	}

	return goqu.And(expressions...), nil
}

func roomsDataset(filter roomDomain.Filter) (*goqu.SelectDataset, error) {
	where, err := filterExpression(filter)
	if err != nil {
		return nil, err
	}
	ds := goqu.Dialect(dialectGormPostgres).From(roomsTable).Prepared(true)
	if !where.IsEmpty() {
		ds = ds.Where(where)
	}
	return ds, nil
}

func countRoomsQuery(filter roomDomain.Filter) (string, []interface{}, error) {
	ds, err := roomsDataset(filter)
	if err != nil {
		return "", nil, err
	}
	query, args, err := ds.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build room count query: %w", err)
	}
	return query, args, nil
}

func selectRoomsQuery(filter roomDomain.Filter, page roomDomain.Page) (string, []interface{}, error) {
	ds, err := roomsDataset(filter)
	if err != nil {
		return "", nil, err
	}
	ds = ds.Order(goqu.I(colID).Asc())
	if page.Limit > 0 {
		ds = ds.Limit(uint(page.Limit)).Offset(uint(page.Offset()))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build room list query: %w", err)
	}
	return query, args, nil
}
