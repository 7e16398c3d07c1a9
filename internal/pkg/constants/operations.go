package constants

// Operation names accepted by the local executor
const (
	OpGetAllTables  = "getAllTables"
	OpGetAllQueries = "getAllQueries"
	OpGetAllScripts = "getAllScripts"

	OpGetTable  = "getTable"
	OpGetQuery  = "getQuery"
	OpGetScript = "getScript"

	OpCreateTable  = "createTable"
	OpCreateQuery  = "createQuery"
	OpCreateScript = "createScript"

	OpUpdateTable  = "updateTable"
	OpUpdateQuery  = "updateQuery"
	OpUpdateScript = "updateScript"

	OpDeleteTable  = "deleteTable"
	OpDeleteQuery  = "deleteQuery"
	OpDeleteScript = "deleteScript"

	OpQueryTableData  = "queryTableData"
	OpInsertTableData = "insertTableData"
	OpUpdateTableData = "updateTableData"
	OpDeleteTableData = "deleteTableData"

	OpRunQuery  = "runQuery"
	OpRunScript = "runScript"

	OpNothing = "nothing"
)

// Executor modes
const (
	ExecutorLocal    = "local"
	ExecutorUpstream = "upstream"
)
