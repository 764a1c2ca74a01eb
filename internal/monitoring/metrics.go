package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Metrics aggregates request-level counters for the whole process.
type Metrics struct {
	mu sync.RWMutex

	RequestCount    int64
	RequestDuration float64 // average, milliseconds
	ActiveRequests  int64
	ErrorCount      int64
	StatusCodes     map[string]int64
	Endpoints       map[string]int64
	StartTime       time.Time
	LastRequest     time.Time

	totalDuration time.Duration
}

var globalMetrics = &Metrics{
	StatusCodes: make(map[string]int64),
	Endpoints:   make(map[string]int64),
	StartTime:   time.Now(),
}

// MetricsMiddleware records count, latency, status and endpoint for every
// request passing through the router.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			endpoint = c.Request.Method + " " + c.Request.URL.Path
		}

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests--
		globalMetrics.RequestCount++
		globalMetrics.LastRequest = time.Now()
		globalMetrics.totalDuration += duration
		globalMetrics.RequestDuration = float64(globalMetrics.totalDuration.Milliseconds()) / float64(globalMetrics.RequestCount)
		globalMetrics.StatusCodes[http.StatusText(status)]++
		globalMetrics.Endpoints[endpoint]++
		if status >= http.StatusInternalServerError {
			globalMetrics.ErrorCount++
		}
		globalMetrics.mu.Unlock()
	}
}

// MetricsSnapshot is a point-in-time copy safe to serialize.
type MetricsSnapshot struct {
	RequestCount    int64            `json:"request_count"`
	RequestDuration float64          `json:"avg_request_duration_ms"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoints"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
}

func GetMetrics() MetricsSnapshot {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	statusCodes := make(map[string]int64, len(globalMetrics.StatusCodes))
	for k, v := range globalMetrics.StatusCodes {
		statusCodes[k] = v
	}
	endpoints := make(map[string]int64, len(globalMetrics.Endpoints))
	for k, v := range globalMetrics.Endpoints {
		endpoints[k] = v
	}

	return MetricsSnapshot{
		RequestCount:    globalMetrics.RequestCount,
		RequestDuration: globalMetrics.RequestDuration,
		ActiveRequests:  globalMetrics.ActiveRequests,
		ErrorCount:      globalMetrics.ErrorCount,
		StatusCodes:     statusCodes,
		Endpoints:       endpoints,
		StartTime:       globalMetrics.StartTime,
		LastRequest:     globalMetrics.LastRequest,
	}
}

type MemoryUsage struct {
	Alloc      uint64 `json:"alloc_mb"`
	TotalAlloc uint64 `json:"total_alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime_ns"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
	MemoryUsage    MemoryUsage   `json:"memory"`
}

func GetSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Uptime:         time.Since(startTime),
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
		MemoryUsage: MemoryUsage{
			Alloc:      bToMb(m.Alloc),
			TotalAlloc: bToMb(m.TotalAlloc),
			Sys:        bToMb(m.Sys),
			NumGC:      m.NumGC,
		},
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// HealthCheck is the recorded outcome of one registered probe.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthCheckFunc func(ctx context.Context) error

type healthChecker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
	funcs  map[string]HealthCheckFunc
}

var globalHealthChecker = &healthChecker{
	checks: make(map[string]HealthCheck),
	funcs:  make(map[string]HealthCheckFunc),
}

func RegisterHealthCheck(name string, fn HealthCheckFunc) {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.funcs[name] = fn
	globalHealthChecker.checks[name] = HealthCheck{Name: name, Status: "unknown"}
}

func RunHealthChecks() map[string]HealthCheck {
	globalHealthChecker.mu.RLock()
	funcs := make(map[string]HealthCheckFunc, len(globalHealthChecker.funcs))
	for name, fn := range globalHealthChecker.funcs {
		funcs[name] = fn
	}
	globalHealthChecker.mu.RUnlock()

	results := make(map[string]HealthCheck, len(funcs))
	for name, fn := range funcs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		check := HealthCheck{Name: name, Status: "healthy"}
		if err := fn(ctx); err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
		}
		cancel()
		results[name] = check
	}

	globalHealthChecker.mu.Lock()
	for name, check := range results {
		globalHealthChecker.checks[name] = check
	}
	globalHealthChecker.mu.Unlock()

	return results
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"application": GetMetrics(),
			"system":      GetSystemMetrics(),
			"timestamp":   time.Now().Format(time.RFC3339),
		})
	}
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := RunHealthChecks()

		status := "healthy"
		code := http.StatusOK
		for _, check := range checks {
			if check.Status != "healthy" {
				status = "unhealthy"
				code = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := RunHealthChecks()

		for _, check := range checks {
			if check.Status != "healthy" {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"reason": check.Message,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
			"uptime": time.Since(startTime).String(),
		})
	}
}
