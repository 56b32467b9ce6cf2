package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// ParameterAnalytics represents the analytics service
type ParameterAnalytics struct {
	metrics map[string]interface{}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// MetricsResponse represents the metrics response
type MetricsResponse struct {
	Service   string                 `json:"service"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics"`
}

// NewParameterAnalytics creates a new analytics service
func NewParameterAnalytics() *ParameterAnalytics {
	return &ParameterAnalytics{
		metrics: map[string]interface{}{
			"total_requests":     0,
			"avg_response_time":  0.0,
			"success_rate":       100.0,
			"active_connections": 0,
			"memory_usage":       "45.2MB",
			"cpu_usage":          "12.5%",
		},
	}
}

// healthHandler handles health check requests
func (pa *ParameterAnalytics) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Service:   "parameter-analytics",
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// metricsHandler handles metrics requests
func (pa *ParameterAnalytics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	// Simulate some metrics updates
	pa.metrics["total_requests"] = pa.metrics["total_requests"].(int) + 1
	pa.metrics["avg_response_time"] = 125.5 + float64(time.Now().UnixNano()%100)/10.0
	pa.metrics["success_rate"] = 98.5 + float64(time.Now().UnixNano()%20)/10.0
	pa.metrics["active_connections"] = time.Now().UnixNano() % 50

	response := MetricsResponse{
		Service:   "parameter-analytics",
		Status:    "healthy",
		Timestamp: time.Now(),
		Metrics:   pa.metrics,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// prometheusMetricsHandler handles Prometheus metrics requests
func (pa *ParameterAnalytics) prometheusMetricsHandler(w http.ResponseWriter, r *http.Request) {
	// Update metrics
	pa.metrics["total_requests"] = pa.metrics["total_requests"].(int) + 1
	pa.metrics["avg_response_time"] = 125.5 + float64(time.Now().UnixNano()%100)/10.0
	pa.metrics["success_rate"] = 98.5 + float64(time.Now().UnixNano()%20)/10.0
	pa.metrics["active_connections"] = time.Now().UnixNano() % 50

	// Generate Prometheus format metrics
	prometheusMetrics := `# HELP parameter_analytics_total_requests Total number of requests
# TYPE parameter_analytics_total_requests counter
parameter_analytics_total_requests{service="parameter-analytics"} ` + fmt.Sprintf("%d", pa.metrics["total_requests"].(int)) + `

# HELP parameter_analytics_avg_response_time Average response time in milliseconds
# TYPE parameter_analytics_avg_response_time gauge
parameter_analytics_avg_response_time{service="parameter-analytics"} ` + fmt.Sprintf("%.2f", pa.metrics["avg_response_time"].(float64)) + `

# HELP parameter_analytics_success_rate Success rate percentage
# TYPE parameter_analytics_success_rate gauge
parameter_analytics_success_rate{service="parameter-analytics"} ` + fmt.Sprintf("%.2f", pa.metrics["success_rate"].(float64)) + `

# HELP parameter_analytics_active_connections Number of active connections
# TYPE parameter_analytics_active_connections gauge
parameter_analytics_active_connections{service="parameter-analytics"} ` + fmt.Sprintf("%d", pa.metrics["active_connections"].(int64)) + `
`

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(prometheusMetrics))
}

// analyticsHandler handles analytics requests
func (pa *ParameterAnalytics) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics := map[string]interface{}{
		"performance_insights": []string{
			"Response times are within acceptable limits",
			"Memory usage is optimal",
			"CPU utilization is efficient",
		},
		"recommendations": []string{
			"Consider implementing caching for frequently accessed data",
			"Monitor memory usage trends",
			"Optimize database queries",
		},
		"trends": map[string]interface{}{
			"response_time_trend": "stable",
			"memory_trend":        "stable",
			"cpu_trend":           "stable",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}

func main() {
	service := NewParameterAnalytics()

	// Set up routes
	http.HandleFunc("/health", service.healthHandler)
	http.HandleFunc("/metrics", service.prometheusMetricsHandler) // Use Prometheus format
	http.HandleFunc("/json-metrics", service.metricsHandler)    // Keep JSON format for other uses
	http.HandleFunc("/analytics", service.analyticsHandler)

	// Start server
	port := "3032"
	log.Printf("Parameter Analytics Service starting on port %s", port)
	log.Printf("Health check available at http://localhost:%s/health", port)
	log.Printf("Metrics available at http://localhost:%s/metrics", port)
	log.Printf("Analytics available at http://localhost:%s/analytics", port)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
