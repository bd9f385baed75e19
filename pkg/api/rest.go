package api

import "time"

// Пути и параметры REST API
const (
	RowsPathPrefix = "/rest/v1/"
	HealthPath     = "/api/v1/health"
	MetricsPath    = "/metrics"

	ParamSince      = "since"
	ParamLimit      = "limit"
	ParamOffset     = "offset"
	ParamSelect     = "select"
	ParamRemoteID   = "remote_id"
	ParamUserID     = "user_id"
	ParamOnConflict = "on_conflict"

	SelectRemoteID = "remote_id"

	DefaultLimit = 1000
	MaxLimit     = 5000
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// SelectQuery describes one page request against a remote table.
// Since is an inclusive lower bound on updated_at; nil means from the beginning.
type SelectQuery struct {
	Since   *time.Time
	OwnerID string
	Limit   int
	Offset  int
}
