package aurora

import (
	"context"
	"fmt"
	"sort"
	"strings"

	appErrors "tablescout-backend/pkg/errors"
)

// FindByID returns the first row matching id, or nil when no row matches.
func (c *Client) FindByID(ctx context.Context, table, idColumn string, id any) (Record, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = :id", table, idColumn)
	records, err := c.ExecuteQuery(ctx, sql, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Insert builds and executes a parameterized INSERT listing every key of
// item as a column. Returns the number of inserted rows.
func (c *Client) Insert(ctx context.Context, table string, item Record) (int64, error) {
	if len(item) == 0 {
		return 0, appErrors.NewRelationalStore("Insert", "", "no columns to insert", nil)
	}

	columns := sortedColumns(item)
	placeholders := make([]string, len(columns))
	for i, column := range columns {
		placeholders[i] = ":" + column
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return c.ExecuteStatement(ctx, sql, item)
}

// Update builds and executes a parameterized UPDATE over every column of
// item except idColumn, keyed on idColumn. The item must carry the id
// column's value.
func (c *Client) Update(ctx context.Context, table string, item Record, idColumn string) (int64, error) {
	if _, ok := item[idColumn]; !ok {
		return 0, appErrors.NewRelationalStore("Update", "",
			fmt.Sprintf("item is missing id column %q", idColumn), nil)
	}

	assignments := make([]string, 0, len(item)-1)
	for _, column := range sortedColumns(item) {
		if column == idColumn {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = :%s", column, column))
	}
	if len(assignments) == 0 {
		return 0, appErrors.NewRelationalStore("Update", "", "no columns to update", nil)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s",
		table, strings.Join(assignments, ", "), idColumn, idColumn)
	return c.ExecuteStatement(ctx, sql, item)
}

// Delete builds and executes a parameterized DELETE keyed on idColumn.
func (c *Client) Delete(ctx context.Context, table, idColumn string, id any) (int64, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = :id", table, idColumn)
	return c.ExecuteStatement(ctx, sql, map[string]any{"id": id})
}

func sortedColumns(item Record) []string {
	columns := make([]string, 0, len(item))
	for column := range item {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
