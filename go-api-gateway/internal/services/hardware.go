// Hardware authentication service implementation for Go API Gateway
// Handles Bluetooth device registration, pairing, and proximity authentication

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

// HardwareAuthService handles hardware device authentication and management
type HardwareAuthService struct {
	config  *config.Config
	logger  *zap.Logger
	dbCoord *database.Coordinator
}

// NewHardwareAuthService creates a new hardware authentication service
func NewHardwareAuthService(cfg *config.Config, logger *zap.Logger, dbCoord *database.Coordinator) (*HardwareAuthService, error) {
	return &HardwareAuthService{
		config:  cfg,
		logger:  logger.Named("hardware_auth"),
		dbCoord: dbCoord,
	}, nil
}

// RegisterDevice registers a new hardware device
func (s *HardwareAuthService) RegisterDevice(ctx context.Context, userID string, req *models.RegisterDeviceRequest) (*models.HardwareDevice, error) {
	s.logger.Info("Registering new hardware device",
		zap.String("user_id", userID),
		zap.String("device_name", req.DeviceName),
		zap.String("device_type", req.DeviceType))

	// Validate request
	if req.DeviceName == "" || req.DeviceType == "" {
		return nil, fmt.Errorf("device name and type are required")
	}

	// Create device record
	device := &models.HardwareDevice{
		ID:          generateDeviceID(),
		UserID:      userID,
		DeviceName:  req.DeviceName,
		DeviceType:  req.DeviceType,
		MacAddress:  req.MacAddress,
		BluetoothID: req.BluetoothID,
		Status:      "unpaired",
		TrustLevel:  getDefaultTrustLevel(req.TrustLevel),
		IsPrimary:   req.IsPrimary,
		IsOnline:    false,
		Metadata:    req.Metadata,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// In production, this would save to database
	// For now, simulate successful registration
	s.logger.Info("Hardware device registered successfully",
		zap.String("device_id", device.ID),
		zap.String("device_name", device.DeviceName))

	return device, nil
}

// GetDevices retrieves hardware devices for a user
func (s *HardwareAuthService) GetDevices(ctx context.Context, userID string) ([]*models.HardwareDevice, error) {
	s.logger.Debug("Retrieving hardware devices for user", zap.String("user_id", userID))

	// Mock data for development - in production this would query the database
	devices := []*models.HardwareDevice{
		{
			ID:             "dev_001",
			UserID:         userID,
			DeviceName:     "iPhone 15 Pro",
			DeviceType:     "phone",
			MacAddress:     "AA:BB:CC:DD:EE:FF",
			BluetoothID:    "bt_iphone_001",
			Status:         "paired",
			TrustLevel:     "high",
			IsPrimary:      true,
			IsOnline:       true,
			SignalStrength: -45,
			LastSeen:       &[]time.Time{time.Now().Add(-5 * time.Minute)}[0],
			CreatedAt:      time.Now().Add(-24 * time.Hour),
			UpdatedAt:      time.Now().Add(-5 * time.Minute),
		},
		{
			ID:             "dev_002",
			UserID:         userID,
			DeviceName:     "MacBook Pro",
			DeviceType:     "laptop",
			MacAddress:     "11:22:33:44:55:66",
			BluetoothID:    "bt_macbook_001",
			Status:         "paired",
			TrustLevel:     "high",
			IsPrimary:      false,
			IsOnline:       false,
			SignalStrength: -65,
			LastSeen:       &[]time.Time{time.Now().Add(-2 * time.Hour)}[0],
			CreatedAt:      time.Now().Add(-7 * 24 * time.Hour),
			UpdatedAt:      time.Now().Add(-2 * time.Hour),
		},
	}

	return devices, nil
}

// UpdateDevice updates hardware device information
func (s *HardwareAuthService) UpdateDevice(ctx context.Context, userID, deviceID string, req *models.UpdateDeviceRequest) (*models.HardwareDevice, error) {
	s.logger.Info("Updating hardware device",
		zap.String("user_id", userID),
		zap.String("device_id", deviceID))

	// Get existing device (mock implementation)
	device, err := s.GetDevice(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}

	// Update fields if provided
	if req.DeviceName != nil {
		device.DeviceName = *req.DeviceName
	}
	if req.DeviceType != nil {
		device.DeviceType = *req.DeviceType
	}
	if req.Status != nil {
		device.Status = *req.Status
	}
	if req.TrustLevel != nil {
		device.TrustLevel = *req.TrustLevel
	}
	if req.IsPrimary != nil {
		device.IsPrimary = *req.IsPrimary
	}
	if req.SignalStrength != nil {
		device.SignalStrength = *req.SignalStrength
	}
	if req.Metadata != nil {
		device.Metadata = *req.Metadata
	}

	device.UpdatedAt = time.Now()

	s.logger.Info("Hardware device updated successfully", zap.String("device_id", deviceID))
	return device, nil
}

// GetDevice retrieves a specific hardware device
func (s *HardwareAuthService) GetDevice(ctx context.Context, userID, deviceID string) (*models.HardwareDevice, error) {
	s.logger.Debug("Retrieving hardware device",
		zap.String("user_id", userID),
		zap.String("device_id", deviceID))

	// Mock implementation - in production this would query the database
	if deviceID == "dev_001" {
		return &models.HardwareDevice{
			ID:             "dev_001",
			UserID:         userID,
			DeviceName:     "iPhone 15 Pro",
			DeviceType:     "phone",
			MacAddress:     "AA:BB:CC:DD:EE:FF",
			BluetoothID:    "bt_iphone_001",
			Status:         "paired",
			TrustLevel:     "high",
			IsPrimary:      true,
			IsOnline:       true,
			SignalStrength: -45,
			LastSeen:       &[]time.Time{time.Now().Add(-5 * time.Minute)}[0],
			CreatedAt:      time.Now().Add(-24 * time.Hour),
			UpdatedAt:      time.Now().Add(-5 * time.Minute),
		}, nil
	}

	return nil, fmt.Errorf("device not found")
}

// DeleteDevice removes a hardware device
func (s *HardwareAuthService) DeleteDevice(ctx context.Context, userID, deviceID string) error {
	s.logger.Info("Deleting hardware device",
		zap.String("user_id", userID),
		zap.String("device_id", deviceID))

	// Verify device exists and belongs to user
	_, err := s.GetDevice(ctx, userID, deviceID)
	if err != nil {
		return err
	}

	// In production, this would delete from database
	s.logger.Info("Hardware device deleted successfully", zap.String("device_id", deviceID))
	return nil
}

// ScanForDevices scans for nearby Bluetooth devices
func (s *HardwareAuthService) ScanForDevices(ctx context.Context, userID string, req *models.BluetoothScanRequest) (*models.BluetoothScanResult, error) {
	s.logger.Info("Starting Bluetooth device scan",
		zap.String("user_id", userID),
		zap.Int("duration", req.Duration))

	// Simulate scanning delay
	scanDuration := float64(req.Duration)
	if scanDuration == 0 {
		scanDuration = 10.0 // Default 10 seconds
	}

	// Mock discovered devices
	discoveredDevices := []models.BluetoothDiscoveredDevice{
		{
			Name:           "iPhone 15 Pro",
			MacAddress:     "AA:BB:CC:DD:EE:FF",
			BluetoothID:    "bt_iphone_001",
			DeviceType:     "phone",
			SignalStrength: -45,
			Distance:       2.5,
			IsKnown:        true,
			IsRegistered:   true,
			LastSeen:       time.Now(),
			Services:       []string{"A2DP", "HID"},
			Manufacturer:   "Apple Inc.",
		},
		{
			Name:           "Unknown Device",
			MacAddress:     "FF:EE:DD:CC:BB:AA",
			BluetoothID:    "bt_unknown_001",
			DeviceType:     "unknown",
			SignalStrength: -70,
			Distance:       8.2,
			IsKnown:        false,
			IsRegistered:   false,
			LastSeen:       time.Now(),
			Services:       []string{},
			Manufacturer:   "Unknown",
		},
	}

	result := &models.BluetoothScanResult{
		ScanID:         fmt.Sprintf("scan_%d", time.Now().Unix()),
		DevicesFound:   discoveredDevices,
		KnownDevices:   []models.BluetoothDiscoveredDevice{discoveredDevices[0]},
		UnknownDevices: []models.BluetoothDiscoveredDevice{discoveredDevices[1]},
		TotalDevices:   len(discoveredDevices),
		ScanDuration:   scanDuration,
		Timestamp:      time.Now(),
	}

	s.logger.Info("Bluetooth scan completed",
		zap.String("scan_id", result.ScanID),
		zap.Int("total_devices", result.TotalDevices))

	return result, nil
}

// PairDevice initiates pairing with a device
func (s *HardwareAuthService) PairDevice(ctx context.Context, userID string, req *models.PairDeviceRequest) (*models.PairDeviceResponse, error) {
	s.logger.Info("Initiating device pairing",
		zap.String("user_id", userID),
		zap.String("device_id", req.DeviceID))

	// Simulate pairing process
	response := &models.PairDeviceResponse{
		DeviceID:     req.DeviceID,
		Status:       "success",
		Message:      "Device paired successfully",
		RequiresCode: false,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}

	// Simulate cases where pairing code is required
	if req.PairCode == "" && req.DeviceID == "requires_code" {
		response.Status = "requires_approval"
		response.PairCode = "123456"
		response.RequiresCode = true
		response.Message = "Pairing code required"
		response.ExpiresAt = time.Now().Add(5 * time.Minute)
	}

	s.logger.Info("Device pairing completed",
		zap.String("device_id", req.DeviceID),
		zap.String("status", response.Status))

	return response, nil
}

// AuthenticateDevice authenticates using hardware device
func (s *HardwareAuthService) AuthenticateDevice(ctx context.Context, req *models.AuthenticationRequest) (*models.AuthenticationResponse, error) {
	s.logger.Info("Authenticating hardware device",
		zap.String("device_id", req.DeviceID),
		zap.String("mac_address", req.MacAddress))

	// Validate authentication request
	if req.DeviceID == "" && req.MacAddress == "" && req.BluetoothID == "" {
		return &models.AuthenticationResponse{
			Status:  "failed",
			Message: "No device identifier provided",
		}, nil
	}

	// Mock authentication logic
	response := &models.AuthenticationResponse{
		DeviceID:      req.DeviceID,
		Status:        "authenticated",
		Token:         fmt.Sprintf("hw_token_%d", time.Now().Unix()),
		ExpiresAt:     time.Now().Add(2 * time.Hour),
		TrustLevel:    "high",
		Permissions:   []string{"read", "write", "admin"},
		Message:       "Authentication successful",
		NextChallenge: fmt.Sprintf("challenge_%d", time.Now().Unix()+3600),
	}

	// Simulate failed authentication for unknown devices
	if req.DeviceID == "unknown_device" {
		response.Status = "unknown_device"
		response.Token = ""
		response.TrustLevel = "none"
		response.Permissions = []string{}
		response.Message = "Device not registered"
	}

	s.logger.Info("Hardware authentication completed",
		zap.String("device_id", req.DeviceID),
		zap.String("status", response.Status))

	return response, nil
}

// AuthenticateByProximity authenticates based on device proximity
func (s *HardwareAuthService) AuthenticateByProximity(ctx context.Context, userID string, req *models.ProximityAuthRequest) (*models.ProximityAuthResponse, error) {
	s.logger.Info("Starting proximity authentication",
		zap.String("user_id", userID),
		zap.Int("min_signal_strength", req.MinSignalStrength))

	// Mock proximity devices
	proximityDevices := []models.ProximityDevice{
		{
			DeviceID:       "dev_001",
			DeviceName:     "iPhone 15 Pro",
			SignalStrength: -45,
			Distance:       2.5,
			TrustLevel:     "high",
			LastSeen:       time.Now(),
		},
	}

	// Check if minimum requirements are met
	requiredCount := len(req.RequiredDevices)
	if requiredCount == 0 {
		requiredCount = 1 // Default require at least 1 device
	}

	response := &models.ProximityAuthResponse{
		AuthenticatedDevices: proximityDevices,
		RequiredCount:        requiredCount,
		FoundCount:           len(proximityDevices),
	}

	if len(proximityDevices) >= requiredCount {
		response.Status = "authenticated"
		response.Token = fmt.Sprintf("prox_token_%d", time.Now().Unix())
		response.ExpiresAt = time.Now().Add(1 * time.Hour)
		response.Message = "Proximity authentication successful"
	} else {
		response.Status = "insufficient_devices"
		response.Message = fmt.Sprintf("Required %d devices, found %d", requiredCount, len(proximityDevices))
	}

	s.logger.Info("Proximity authentication completed",
		zap.String("status", response.Status),
		zap.Int("found_count", response.FoundCount))

	return response, nil
}

// GetAuthStatus gets current hardware authentication status
func (s *HardwareAuthService) GetAuthStatus(ctx context.Context, userID string) (*models.HardwareAuthStatus, error) {
	s.logger.Debug("Retrieving hardware auth status", zap.String("user_id", userID))

	// Mock authentication status
	status := &models.HardwareAuthStatus{
		UserID:               userID,
		IsAuthenticated:      true,
		AuthenticationMethod: "proximity",
		ActiveDevices: []models.ProximityDevice{
			{
				DeviceID:       "dev_001",
				DeviceName:     "iPhone 15 Pro",
				SignalStrength: -45,
				Distance:       2.5,
				TrustLevel:     "high",
				LastSeen:       time.Now().Add(-1 * time.Minute),
			},
		},
		TrustScore:         0.95,
		SessionExpiresAt:   time.Now().Add(2 * time.Hour),
		LastAuthentication: time.Now().Add(-30 * time.Minute),
		Permissions:        []string{"read", "write", "admin"},
		Restrictions:       []string{},
	}

	return status, nil
}

// Helper functions

func generateDeviceID() string {
	return fmt.Sprintf("hw_dev_%d", time.Now().UnixNano())
}

func getDefaultTrustLevel(provided string) string {
	if provided != "" {
		return provided
	}
	return "medium"
}

// GetProximityStatus gets current proximity status for a user
func (s *HardwareAuthService) GetProximityStatus(ctx context.Context, userID string) (*models.ProximityAuthResponse, error) {
	s.logger.Debug("Getting proximity status", zap.String("user_id", userID))

	// Mock proximity status
	return &models.ProximityAuthResponse{
		Status:        "authenticated",
		RequiredCount: 1,
		FoundCount:    1,
		AuthenticatedDevices: []models.ProximityDevice{
			{
				DeviceID:       "dev_001",
				DeviceName:     "iPhone 15 Pro",
				SignalStrength: -45,
				Distance:       2.5,
				TrustLevel:     "high",
				LastSeen:       time.Now(),
			},
		},
		Token:     fmt.Sprintf("prox_token_%d", time.Now().Unix()),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		Message:   "Proximity authentication active",
	}, nil
}

// ConfigureProximity configures proximity detection settings
func (s *HardwareAuthService) ConfigureProximity(ctx context.Context, userID string, req *models.ProximityConfigRequest) error {
	s.logger.Info("Configuring proximity settings",
		zap.String("user_id", userID),
		zap.Float64("rssi_threshold", req.RSSIThreshold))

	// In production, this would save configuration to database
	return nil
}

// CreateChallenge creates an authentication challenge
func (s *HardwareAuthService) CreateChallenge(ctx context.Context, req *models.CreateChallengeRequest) (*models.ChallengeResponse, error) {
	s.logger.Info("Creating authentication challenge", zap.String("device_id", req.DeviceID))

	challenge := &models.ChallengeResponse{
		ChallengeID: fmt.Sprintf("challenge_%d", time.Now().Unix()),
		Challenge:   fmt.Sprintf("challenge_data_%d", time.Now().UnixNano()),
		ExpiresAt:   time.Now().Add(5 * time.Minute),
		Type:        req.ChallengeType,
	}

	return challenge, nil
}

// VerifyChallenge verifies an authentication challenge
func (s *HardwareAuthService) VerifyChallenge(ctx context.Context, req *models.VerifyChallengeRequest) (*models.VerifyResponse, error) {
	s.logger.Info("Verifying authentication challenge",
		zap.String("challenge_id", req.ChallengeID),
		zap.String("device_id", req.DeviceID))

	// Mock verification logic
	verified := req.Response != ""

	response := &models.VerifyResponse{
		Verified: verified,
		DeviceID: req.DeviceID,
		Message:  "Challenge verification completed",
	}

	if verified {
		response.Token = fmt.Sprintf("verify_token_%d", time.Now().Unix())
		response.ExpiresAt = time.Now().Add(2 * time.Hour)
	}

	return response, nil
}

