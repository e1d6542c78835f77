package postgres

import (
	"database/sql"
	"fmt"
	"log"
)

// Column describes one column of an introspected table.
type Column struct {
	Name        string
	DataType    string
	Nullable    bool
	Default     string
	Constraints []string
}

// ForeignKey is one foreign-key edge between two tables.
type ForeignKey struct {
	Name         string
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// Schema is the introspected shape of the public schema: tables with their
// columns, enumerated types with their value lists, and foreign-key edges.
// Order slices preserve the order the database reported things in so the
// rendered prompt is stable across runs.
type Schema struct {
	Tables      map[string][]Column
	TableOrder  []string
	Enums       map[string][]string
	EnumOrder   []string
	ForeignKeys []ForeignKey
}

const enumQuery = `
SELECT t.typname, e.enumlabel
FROM pg_type t
JOIN pg_enum e ON t.oid = e.enumtypid
ORDER BY t.typname, e.enumsortorder;`

const columnQuery = `
SELECT
    c.table_name,
    c.column_name,
    c.data_type,
    c.is_nullable,
    c.column_default,
    tc.constraint_type
FROM information_schema.columns c
LEFT JOIN information_schema.constraint_column_usage ccu
    ON c.table_name = ccu.table_name AND c.column_name = ccu.column_name
LEFT JOIN information_schema.table_constraints tc
    ON ccu.constraint_name = tc.constraint_name
WHERE c.table_schema = 'public'
ORDER BY c.table_name, c.ordinal_position;`

const foreignKeyQuery = `
SELECT
    conname,
    conrelid::regclass AS source_table,
    a.attname AS source_column,
    confrelid::regclass AS target_table,
    af.attname AS target_column
FROM pg_constraint AS c
JOIN pg_attribute AS a ON a.attnum = ANY(c.conkey) AND a.attrelid = c.conrelid
JOIN pg_attribute AS af ON af.attnum = ANY(c.confkey) AND af.attrelid = c.confrelid
WHERE contype = 'f';`

// Introspect reads the schema used to ground SQL generation. A failure in any
// one of the metadata queries is logged and skipped; the remaining schema is
// still usable as partial grounding context.
func Introspect(cfg Config) (*Schema, error) {
	conn, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("schema introspection: %w", err)
	}
	defer conn.Close()

	schema := &Schema{
		Tables: make(map[string][]Column),
		Enums:  make(map[string][]string),
	}

	if err := loadEnums(conn.DB(), schema); err != nil {
		log.Printf("[WARN] Enum introspection failed: %v", err)
	}
	if err := loadColumns(conn.DB(), schema); err != nil {
		log.Printf("[WARN] Column introspection failed: %v", err)
	}
	if err := loadForeignKeys(conn.DB(), schema); err != nil {
		log.Printf("[WARN] Foreign key introspection failed: %v", err)
	}

	return schema, nil
}

func loadEnums(db *sql.DB, schema *Schema) error {
	rows, err := db.Query(enumQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return err
		}
		if _, seen := schema.Enums[name]; !seen {
			schema.EnumOrder = append(schema.EnumOrder, name)
		}
		schema.Enums[name] = append(schema.Enums[name], label)
	}
	return rows.Err()
}

func loadColumns(db *sql.DB, schema *Schema) error {
	rows, err := db.Query(columnQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, columnName, dataType, isNullable string
			columnDefault, constraintType               sql.NullString
		)
		if err := rows.Scan(&tableName, &columnName, &dataType, &isNullable, &columnDefault, &constraintType); err != nil {
			return err
		}

		if _, seen := schema.Tables[tableName]; !seen {
			schema.TableOrder = append(schema.TableOrder, tableName)
			schema.Tables[tableName] = nil
		}

		col := Column{
			Name:     columnName,
			DataType: dataType,
			Nullable: isNullable == "YES",
			Default:  columnDefault.String,
		}
		if constraintType.Valid && constraintType.String != "" {
			col.Constraints = append(col.Constraints, constraintType.String)
		}
		schema.Tables[tableName] = append(schema.Tables[tableName], col)
	}
	return rows.Err()
}

func loadForeignKeys(db *sql.DB, schema *Schema) error {
	rows, err := db.Query(foreignKeyQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Name, &fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return err
		}
		schema.ForeignKeys = append(schema.ForeignKeys, fk)
	}
	return rows.Err()
}
