package action

import "github.com/piresc/arbiter/internal/pkg/models"

// CollectionChannel is where changes to any entity of kind are announced:
// "tables", "queries" or "scripts"
func CollectionChannel(kind models.EntityKind) string {
	switch kind {
	case models.KindQuery:
		return "queries"
	default:
		return string(kind) + "s"
	}
}

// EntityChannel is where changes to one entity are announced, e.g. "table:users"
func EntityChannel(kind models.EntityKind, name string) string {
	return string(kind) + ":" + name
}

// RowsChannel is where row changes of a table are announced, e.g. "table:users:data"
func RowsChannel(table string) string {
	return EntityChannel(models.KindTable, table) + ":data"
}
