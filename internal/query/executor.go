package query

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sqlgrade/grade/internal/postgres"
	"github.com/sqlgrade/grade/internal/result"
)

// Executor runs SQL statements for evaluation. Every invocation opens its own
// autocommit connection and closes it before returning, so no state leaks
// between the queries of one pair, or between pairs.
type Executor struct {
	cfg postgres.Config
}

func NewExecutor(cfg postgres.Config) *Executor {
	return &Executor{cfg: cfg}
}

// Run executes one query and returns its outcome. Errors never escape this
// boundary: connectivity, syntax and timeout failures all come back as a
// Failure outcome carrying the classified error message.
func (e *Executor) Run(sqlText string) result.Outcome {
	conn, err := postgres.Open(e.cfg)
	if err != nil {
		return result.Failure(postgres.TranslateError(err).Error())
	}
	defer conn.Close()

	rows, err := conn.DB().Query(sqlText)
	if err != nil {
		return result.Failure(postgres.TranslateError(err).Error())
	}
	defer rows.Close()

	set, err := parseRows(rows)
	if err != nil {
		return result.Failure(postgres.TranslateError(err).Error())
	}

	return result.Success(set)
}

func parseRows(rows *sql.Rows) (result.Set, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		dbTypes[i] = ct.DatabaseTypeName()
	}

	var set result.Set

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(result.Row, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i], dbTypes[i])
		}

		set = append(set, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return set, nil
}

// convertValue maps a driver value to the tagged scalar the comparator
// understands. NUMERIC columns arrive as byte slices and are parsed as
// decimals so scale differences never affect equality.
func convertValue(raw interface{}, dbType string) result.Value {
	switch v := raw.(type) {
	case nil:
		return result.Null()
	case bool:
		return result.Boolean(v)
	case int64:
		return result.NumberFromInt(v)
	case float64:
		return result.NumberFromFloat(v)
	case time.Time:
		return result.Date(v)
	case []byte:
		return convertText(string(v), dbType)
	case string:
		return convertText(v, dbType)
	default:
		return result.Text(fmt.Sprintf("%v", raw))
	}
}

func convertText(s, dbType string) result.Value {
	if isNumericType(dbType) {
		if d, err := decimal.NewFromString(s); err == nil {
			return result.Number(d)
		}
	}
	return result.Text(s)
}

func isNumericType(dbType string) bool {
	switch dbType {
	case "NUMERIC", "DECIMAL", "INT2", "INT4", "INT8", "FLOAT4", "FLOAT8":
		return true
	}
	return false
}

