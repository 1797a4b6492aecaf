package httpapi

// Endpoints lists the main paths of the service.
type Endpoints struct {
	MCP    string `json:"mcp"`
	Health string `json:"health"`
	Info   string `json:"info"`
}

// Overview is the body of GET /.
type Overview struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Endpoints Endpoints `json:"endpoints"`
	Status    string    `json:"status"`
}

type HealthResponse struct {
	Body HealthStatus
}

type HealthStatus struct {
	Status    string `json:"status" example:"UP"`
	Timestamp string `json:"timestamp" format:"date-time"`
}

type InfoResponse struct {
	Body ServerInfo
}

type ServerInfo struct {
	App     AppInfo       `json:"app"`
	Server  ServerDetails `json:"server"`
	Config  ConfigInfo    `json:"config"`
	Runtime RuntimeInfo   `json:"runtime"`
}

type AppInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type ServerDetails struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`
}

type ConfigInfo struct {
	BaseURL string `json:"base_url"`
	Region  string `json:"region"`
}

type RuntimeInfo struct {
	StartTime     string  `json:"start_time" format:"date-time"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
