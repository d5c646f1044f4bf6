package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldChatID     = "chat_id"
	FieldRowID      = "row_id"
	FieldRecordKind = "kind"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldBackend    = "backend"
	FieldMirrorOp   = "mirror_op"
	FieldQueue      = "queue"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentSheets  = "sheets"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentConfig  = "config"
)

// Operations defines standard operation names
const (
	OpAppend   = "append"
	OpDelete   = "delete"
	OpScan     = "scan"
	OpSync     = "sync"
	OpParse    = "parse"
	OpDispatch = "dispatch"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
