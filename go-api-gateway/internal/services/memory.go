// Memory service for Universal AI Tools Go API Gateway
// Provides memory monitoring, optimization, and analytics capabilities

package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"universal-ai-tools/go-api-gateway/internal/config"
	"universal-ai-tools/go-api-gateway/internal/database"
	"universal-ai-tools/go-api-gateway/internal/models"
)

// MemoryService handles memory monitoring and optimization operations
type MemoryService struct {
	config *config.Config
	logger *zap.Logger
	db     *database.Coordinator
}

// NewMemoryService creates a new memory service instance
func NewMemoryService(cfg *config.Config, logger *zap.Logger, db *database.Coordinator) (*MemoryService, error) {
	service := &MemoryService{
		config: cfg,
		logger: logger.With(zap.String("service", "memory")),
		db:     db,
	}

	service.logger.Info("Memory service initialized")
	return service, nil
}

// Service request/response types

// MemoryUsageRequest represents a request for detailed memory usage
type MemoryUsageRequest struct {
	IncludeHistory bool   `json:"include_history"`
	ServiceName    string `json:"service_name,omitempty"`
}

// MemoryHistoryRequest represents a request for memory history
type MemoryHistoryRequest struct {
	Hours       int    `json:"hours"`
	Granularity string `json:"granularity"`
	ServiceName string `json:"service_name,omitempty"`
}

// MemoryAnalyticsRequest represents a request for memory analytics
type MemoryAnalyticsRequest struct {
	TimeRange string `json:"time_range"`
	GroupBy   string `json:"group_by"`
}

// Core service methods

// GetSystemMemoryInfo retrieves system memory information
func (s *MemoryService) GetSystemMemoryInfo(ctx context.Context) (*models.SystemMemoryInfo, error) {
	// In a real implementation, this would use system calls or libraries
	// like github.com/shirou/gopsutil to get actual system memory info

	// For now, return mock data that would be replaced with actual system calls
	memInfo := &models.SystemMemoryInfo{
		Total:     16 * 1024 * 1024 * 1024, // 16GB
		Available: 8 * 1024 * 1024 * 1024,  // 8GB
		Used:      8 * 1024 * 1024 * 1024,  // 8GB
		Free:      6 * 1024 * 1024 * 1024,  // 6GB
		Cached:    2 * 1024 * 1024 * 1024,  // 2GB
		Buffers:   512 * 1024 * 1024,       // 512MB
	}

	s.logger.Debug("Retrieved system memory info",
		zap.Uint64("total", memInfo.Total),
		zap.Uint64("used", memInfo.Used),
		zap.Uint64("available", memInfo.Available))

	return memInfo, nil
}

// GetDetailedUsage retrieves detailed memory usage information
func (s *MemoryService) GetDetailedUsage(ctx context.Context, req *MemoryUsageRequest) (*models.MemoryUsageHistory, error) {
	// Mock implementation - in production this would query actual metrics
	dataPoints := []models.MemoryUsageHistoryPoint{
		{
			Timestamp:    time.Now().Add(-1 * time.Hour),
			TotalMemory:  16 * 1024 * 1024 * 1024,
			UsedMemory:   7 * 1024 * 1024 * 1024,
			FreeMemory:   9 * 1024 * 1024 * 1024,
			UsagePercent: 43.75,
			ServiceName:  req.ServiceName,
		},
		{
			Timestamp:    time.Now(),
			TotalMemory:  16 * 1024 * 1024 * 1024,
			UsedMemory:   8 * 1024 * 1024 * 1024,
			FreeMemory:   8 * 1024 * 1024 * 1024,
			UsagePercent: 50.0,
			ServiceName:  req.ServiceName,
		},
	}

	summary := models.MemoryUsageSummary{
		AverageUsage:   46.875,
		PeakUsage:      50.0,
		MinUsage:       43.75,
		TrendDirection: "stable",
	}

	usage := &models.MemoryUsageHistory{
		DataPoints:  dataPoints,
		TimeRange:   "1h",
		Granularity: "5m",
		ServiceName: req.ServiceName,
		Summary:     summary,
	}

	return usage, nil
}

// GetMemoryHistory retrieves historical memory usage data
func (s *MemoryService) GetMemoryHistory(ctx context.Context, req *MemoryHistoryRequest) (*models.MemoryUsageHistory, error) {
	// Generate mock historical data based on request parameters
	var dataPoints []models.MemoryUsageHistoryPoint

	duration := time.Duration(req.Hours) * time.Hour
	var interval time.Duration

	switch req.Granularity {
	case "minute":
		interval = time.Minute
	case "hour":
		interval = time.Hour
	case "day":
		interval = 24 * time.Hour
	default:
		interval = time.Hour
	}

	now := time.Now()
	for t := now.Add(-duration); t.Before(now); t = t.Add(interval) {
		// Generate realistic but mock memory usage data
		baseUsage := int64(8 * 1024 * 1024 * 1024) // 8GB base
		variation := int64(1024 * 1024 * 1024)     // Â±1GB variation
		usedMemory := uint64(baseUsage + (time.Now().Unix()%variation - variation/2))

		dataPoints = append(dataPoints, models.MemoryUsageHistoryPoint{
			Timestamp:    t,
			TotalMemory:  16 * 1024 * 1024 * 1024,
			UsedMemory:   usedMemory,
			FreeMemory:   16*1024*1024*1024 - usedMemory,
			UsagePercent: float64(usedMemory) / float64(16*1024*1024*1024) * 100,
			ServiceName:  req.ServiceName,
		})
	}

	summary := models.MemoryUsageSummary{
		AverageUsage:   50.0,
		PeakUsage:      62.5,
		MinUsage:       37.5,
		TrendDirection: "stable",
	}

	history := &models.MemoryUsageHistory{
		DataPoints:  dataPoints,
		TimeRange:   fmt.Sprintf("%dh", req.Hours),
		Granularity: req.Granularity,
		ServiceName: req.ServiceName,
		Summary:     summary,
	}

	s.logger.Debug("Retrieved memory history",
		zap.Int("data_points", len(dataPoints)),
		zap.String("time_range", history.TimeRange),
		zap.String("granularity", req.Granularity))

	return history, nil
}

// GetMemoryMetrics retrieves comprehensive memory metrics
func (s *MemoryService) GetMemoryMetrics(ctx context.Context) (*models.MemoryMetrics, error) {
	// Mock comprehensive metrics - in production this would aggregate real data
	systemMetrics := models.SystemMemory{
		Total:        16 * 1024 * 1024 * 1024,
		Available:    8 * 1024 * 1024 * 1024,
		Used:         8 * 1024 * 1024 * 1024,
		Free:         8 * 1024 * 1024 * 1024,
		UsagePercent: 50.0,
	}

	applicationMetrics := models.ApplicationMemory{
		Allocated:  64 * 1024 * 1024,  // 64MB
		TotalAlloc: 256 * 1024 * 1024, // 256MB
		Sys:        128 * 1024 * 1024, // 128MB
		NumGC:      42,
		HeapAlloc:  48 * 1024 * 1024, // 48MB
		HeapSys:    64 * 1024 * 1024, // 64MB
		HeapIdle:   16 * 1024 * 1024, // 16MB
		HeapInuse:  48 * 1024 * 1024, // 48MB
		StackInuse: 4 * 1024 * 1024,  // 4MB
		StackSys:   8 * 1024 * 1024,  // 8MB
	}

	serviceMetrics := []models.ServiceMemoryMetric{
		{
			ServiceName:  "api-gateway",
			MemoryUsage:  64 * 1024 * 1024,
			UsagePercent: 0.4,
			PeakUsage:    96 * 1024 * 1024,
			AverageUsage: 56 * 1024 * 1024,
			GCCount:      42,
			Status:       "healthy",
		},
		{
			ServiceName:  "chat-service",
			MemoryUsage:  128 * 1024 * 1024,
			UsagePercent: 0.8,
			PeakUsage:    256 * 1024 * 1024,
			AverageUsage: 112 * 1024 * 1024,
			GCCount:      38,
			Status:       "healthy",
		},
	}

	metrics := &models.MemoryMetrics{
		Timestamp:            time.Now(),
		SystemMetrics:        systemMetrics,
		ApplicationMetrics:   applicationMetrics,
		ServiceMetrics:       serviceMetrics,
		AlertsActive:         0,
		RecommendationsCount: 2,
	}

	return metrics, nil
}

// OptimizeMemory performs memory optimization based on request parameters
func (s *MemoryService) OptimizeMemory(ctx context.Context, req *models.MemoryOptimizationRequest) (*models.MemoryOptimizationResult, error) {
	startTime := time.Now()

	s.logger.Info("Starting memory optimization",
		zap.String("type", req.OptimizationType),
		zap.Strings("target_services", req.TargetServices))

	// Simulate memory optimization process
	var memoryFreed uint64
	var servicesOptimized []string
	var cachesCleared []string

	switch req.OptimizationType {
	case "aggressive":
		memoryFreed = 256 * 1024 * 1024 // 256MB
		servicesOptimized = []string{"api-gateway", "chat-service", "memory-service"}
		if req.ClearCaches {
			cachesCleared = []string{"api_cache", "session_cache", "file_cache"}
		}
	case "conservative":
		memoryFreed = 64 * 1024 * 1024 // 64MB
		servicesOptimized = []string{"api-gateway"}
		if req.ClearCaches {
			cachesCleared = []string{"api_cache"}
		}
	default: // standard
		memoryFreed = 128 * 1024 * 1024 // 128MB
		servicesOptimized = []string{"api-gateway", "chat-service"}
		if req.ClearCaches {
			cachesCleared = []string{"api_cache", "session_cache"}
		}
	}

	// If specific services are targeted, use those
	if len(req.TargetServices) > 0 {
		servicesOptimized = req.TargetServices
	}

	result := &models.MemoryOptimizationResult{
		Timestamp:         time.Now(),
		MemoryFreed:       memoryFreed,
		Duration:          time.Since(startTime),
		OptimizationType:  req.OptimizationType,
		ServicesOptimized: servicesOptimized,
		GCTriggered:       req.ForceGC,
		CachesCleared:     cachesCleared,
	}

	s.logger.Info("Memory optimization completed",
		zap.Uint64("memory_freed", result.MemoryFreed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// RecordGarbageCollection records garbage collection results
func (s *MemoryService) RecordGarbageCollection(ctx context.Context, result *models.GarbageCollectionResult) error {
	// In production, this would store the GC result in the database
	s.logger.Info("Recording garbage collection result",
		zap.Uint64("memory_freed", result.MemoryFreed),
		zap.Uint64("heap_freed", result.HeapFreed),
		zap.Time("timestamp", result.Timestamp))

	// Mock database storage
	return nil
}

// ClearCache clears application caches based on request
func (s *MemoryService) ClearCache(ctx context.Context, req *models.ClearCacheRequest) (*models.ClearCacheResult, error) {
	s.logger.Info("Clearing caches",
		zap.Strings("cache_types", req.CacheTypes),
		zap.Strings("services", req.Services))

	// Simulate cache clearing
	var memoryFreed uint64
	itemsCleared := 0

	for _, cacheType := range req.CacheTypes {
		switch cacheType {
		case "api_cache":
			memoryFreed += 32 * 1024 * 1024 // 32MB
			itemsCleared += 1500
		case "session_cache":
			memoryFreed += 16 * 1024 * 1024 // 16MB
			itemsCleared += 750
		case "file_cache":
			memoryFreed += 64 * 1024 * 1024 // 64MB
			itemsCleared += 300
		default:
			memoryFreed += 8 * 1024 * 1024 // 8MB
			itemsCleared += 100
		}
	}

	result := &models.ClearCacheResult{
		Timestamp:     time.Now(),
		MemoryFreed:   memoryFreed,
		CachesCleared: req.CacheTypes,
		ItemsCleared:  itemsCleared,
		Services:      req.Services,
	}

	return result, nil
}

// Alert management methods

// GetMemoryAlerts retrieves all memory alerts
func (s *MemoryService) GetMemoryAlerts(ctx context.Context) ([]models.MemoryAlert, error) {
	// Mock alert data - in production this would query the database
	alerts := []models.MemoryAlert{
		{
			ID:          "alert-1",
			Name:        "High Memory Usage",
			Description: "Alert when memory usage exceeds 80%",
			Threshold:   80.0,
			AlertType:   "usage",
			IsActive:    true,
			CreatedAt:   time.Now().Add(-24 * time.Hour),
			UpdatedAt:   time.Now().Add(-1 * time.Hour),
		},
		{
			ID:          "alert-2",
			Name:        "Memory Leak Detection",
			Description: "Alert when potential memory leak is detected",
			Threshold:   90.0,
			AlertType:   "leak",
			IsActive:    true,
			CreatedAt:   time.Now().Add(-72 * time.Hour),
			UpdatedAt:   time.Now().Add(-2 * time.Hour),
		},
	}

	return alerts, nil
}

// CreateMemoryAlert creates a new memory alert
func (s *MemoryService) CreateMemoryAlert(ctx context.Context, req *models.CreateMemoryAlertRequest) (*models.MemoryAlert, error) {
	alert := &models.MemoryAlert{
		ID:          fmt.Sprintf("alert-%d", time.Now().Unix()),
		Name:        req.Name,
		Description: req.Description,
		Threshold:   req.Threshold,
		AlertType:   req.AlertType,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	s.logger.Info("Created memory alert",
		zap.String("alert_id", alert.ID),
		zap.String("name", alert.Name),
		zap.Float64("threshold", alert.Threshold))

	return alert, nil
}

// UpdateMemoryAlert updates an existing memory alert
func (s *MemoryService) UpdateMemoryAlert(ctx context.Context, alertID string, req *models.UpdateMemoryAlertRequest) (*models.MemoryAlert, error) {
	// Mock update - in production this would update the database
	alert := &models.MemoryAlert{
		ID:        alertID,
		UpdatedAt: time.Now(),
	}

	if req.Name != nil {
		alert.Name = *req.Name
	}
	if req.Description != nil {
		alert.Description = *req.Description
	}
	if req.Threshold != nil {
		alert.Threshold = *req.Threshold
	}
	if req.AlertType != nil {
		alert.AlertType = *req.AlertType
	}
	if req.IsActive != nil {
		alert.IsActive = *req.IsActive
	}

	s.logger.Info("Updated memory alert", zap.String("alert_id", alertID))

	return alert, nil
}

// DeleteMemoryAlert deletes a memory alert
func (s *MemoryService) DeleteMemoryAlert(ctx context.Context, alertID string) error {
	// Mock deletion - in production this would delete from database
	s.logger.Info("Deleted memory alert", zap.String("alert_id", alertID))
	return nil
}

// Analytics methods

// GetMemoryAnalytics retrieves memory usage analytics
func (s *MemoryService) GetMemoryAnalytics(ctx context.Context, req *MemoryAnalyticsRequest) (*models.MemoryAnalytics, error) {
	// Mock analytics data
	usageTrends := []models.MemoryUsageHistoryPoint{
		{
			Timestamp:    time.Now().Add(-24 * time.Hour),
			TotalMemory:  16 * 1024 * 1024 * 1024,
			UsedMemory:   7 * 1024 * 1024 * 1024,
			FreeMemory:   9 * 1024 * 1024 * 1024,
			UsagePercent: 43.75,
		},
		{
			Timestamp:    time.Now(),
			TotalMemory:  16 * 1024 * 1024 * 1024,
			UsedMemory:   8 * 1024 * 1024 * 1024,
			FreeMemory:   8 * 1024 * 1024 * 1024,
			UsagePercent: 50.0,
		},
	}

	analytics := &models.MemoryAnalytics{
		TimeRange:      req.TimeRange,
		GroupBy:        req.GroupBy,
		UsageTrends:    usageTrends,
		PeakUsageTimes: []time.Time{time.Now().Add(-12 * time.Hour)},
		Anomalies:      []models.MemoryAnomaly{},
		Efficiency: models.MemoryEfficiencyMetrics{
			OverallScore:       78.5,
			AllocationRate:     1.2,
			GCFrequency:        0.8,
			MemoryLeakScore:    95.0,
			FragmentationScore: 82.3,
		},
	}

	return analytics, nil
}

// GetMemoryTrends retrieves memory usage trends and predictions
func (s *MemoryService) GetMemoryTrends(ctx context.Context) (*models.MemoryTrends, error) {
	predictions := []models.MemoryPredictionPoint{
		{
			Timestamp:      time.Now().Add(1 * time.Hour),
			PredictedUsage: 8600 * 1024 * 1024, // ~8.6GB
			Confidence:     0.85,
		},
		{
			Timestamp:      time.Now().Add(24 * time.Hour),
			PredictedUsage: 9200 * 1024 * 1024, // ~9.2GB
			Confidence:     0.72,
		},
	}

	trends := &models.MemoryTrends{
		CurrentTrend:      "stable",
		PredictedUsage:    predictions,
		TrendConfidence:   0.78,
		EstimatedCapacity: 120 * time.Hour, // 5 days until memory full
	}

	return trends, nil
}

// GetMemoryRecommendations retrieves memory optimization recommendations
func (s *MemoryService) GetMemoryRecommendations(ctx context.Context) (*models.MemoryRecommendations, error) {
	recommendations := []models.MemoryRecommendation{
		{
			ID:              "rec-1",
			Type:            "optimization",
			Priority:        "medium",
			Title:           "Enable Aggressive Garbage Collection",
			Description:     "Current GC frequency is low. Enabling more aggressive GC could free up memory.",
			Action:          "Adjust GOGC environment variable to lower value",
			EstimatedImpact: "5-10% memory reduction",
			CreatedAt:       time.Now().Add(-1 * time.Hour),
		},
		{
			ID:              "rec-2",
			Type:            "alert",
			Priority:        "low",
			Title:           "Set Up Memory Leak Detection",
			Description:     "No memory leak detection is currently configured.",
			Action:          "Create memory leak alert with 95% threshold",
			EstimatedImpact: "Early detection of memory issues",
			CreatedAt:       time.Now().Add(-30 * time.Minute),
		},
	}

	result := &models.MemoryRecommendations{
		Recommendations: recommendations,
		TotalCount:      len(recommendations),
		HighPriority:    0,
		ActionRequired:  1,
	}

	return result, nil
}
