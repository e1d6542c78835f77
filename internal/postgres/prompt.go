package postgres

import (
	"fmt"
	"strings"
)

// DescribeSchema renders the introspected schema as the grounding text given
// to the SQL generator: enumerated types, tables with column annotations,
// then foreign-key relationships.
func DescribeSchema(schema *Schema) string {
	var b strings.Builder
	b.WriteString("Database Schema Description:\n")

	if len(schema.EnumOrder) > 0 {
		b.WriteString("\nEnumerated Types:")
		for _, name := range schema.EnumOrder {
			fmt.Fprintf(&b, "\n- %s: %s", name, strings.Join(schema.Enums[name], ", "))
		}
	}

	b.WriteString("\n\nTables:")
	for _, table := range schema.TableOrder {
		fmt.Fprintf(&b, "\n\nTable '%s':", table)
		for _, col := range schema.Tables[table] {
			b.WriteString("\n" + describeColumn(col))
		}
	}

	if len(schema.ForeignKeys) > 0 {
		b.WriteString("\n\nTable Relationships:")
		for _, fk := range schema.ForeignKeys {
			fmt.Fprintf(&b, "\n- %s.%s -> %s.%s (Foreign Key: %s)",
				fk.SourceTable, fk.SourceColumn, fk.TargetTable, fk.TargetColumn, fk.Name)
		}
	}

	return b.String()
}

func describeColumn(col Column) string {
	desc := fmt.Sprintf("- %s (%s)", col.Name, col.DataType)
	if !col.Nullable {
		desc += " NOT NULL"
	}
	if col.Default != "" {
		desc += fmt.Sprintf(" DEFAULT %s", col.Default)
	}
	if len(col.Constraints) > 0 {
		desc += fmt.Sprintf(" [%s]", strings.Join(col.Constraints, ", "))
	}
	return desc
}
