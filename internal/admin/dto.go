// AngelaMos | 2026
// dto.go

package admin

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type Overview struct {
	Users            int                        `json:"users"`
	Providers        int                        `json:"providers"`
	ActiveProviders  int                        `json:"active_providers"`
	BlockedProviders int                        `json:"blocked_providers"`
	OpenRequests     int                        `json:"open_requests"`
	Orders           int                        `json:"orders"`
	OrdersByStatus   map[domain.OrderStatus]int `json:"orders_by_status"`
	PendingSync      int                        `json:"pending_sync"`
	Revenue          float64                    `json:"revenue"`
	Commission       float64                    `json:"commission"`
	OutstandingDebt  float64                    `json:"outstanding_debt"`
	ActiveCoupons    int                        `json:"active_coupons"`
	UnreadAlerts     int                        `json:"unread_notifications"`
	ByCategory       map[domain.Category]int    `json:"providers_by_category"`
}

type SystemStatsResponse struct {
	Backend     BackendStatus `json:"backend"`
	Runtime     RuntimeStats  `json:"runtime"`
	LiveClients int           `json:"live_clients"`
}

type BackendStatus struct {
	Healthy  bool            `json:"healthy"`
	Database *DBPoolStats    `json:"database,omitempty"`
	Redis    *RedisPoolStats `json:"redis,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
