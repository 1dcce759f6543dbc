package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	EnginePath              string `json:"engine_path"`               // Path to the ffmpeg binary
	CameraDevice            string `json:"camera_device"`             // Camera device, e.g. "/dev/video0" or "0"
	MicrophoneDevice        string `json:"microphone_device"`         // Microphone device; empty means video-only sessions
	OutputDirectory         string `json:"output_directory"`          // Where finished recordings are written
	ResolutionPreset        string `json:"resolution_preset"`         // Preset bucket label, e.g. "hd", "full-hd", "any"
	PreferHardwareEncoder   bool   `json:"prefer_hardware_encoder"`   // Probe hardware encoders before falling back to software
	UseLowCompressionCodec  bool   `json:"use_low_compression_codec"` // Use the cheaper fallback codec when software encoding
	ValidateModeBeforeStart bool   `json:"validate_mode_before_start"`
	MaxRecordingSeconds     int    `json:"max_recording_seconds"` // 0 disables the auto-stop
	CountdownSeconds        int    `json:"countdown_seconds"`     // Operator countdown before the engine starts
	SettleDelayMillis       int    `json:"settle_delay_millis"`   // Post-launch wait before declaring a start successful
	StopTimeoutSeconds      int    `json:"stop_timeout_seconds"`  // Grace period before the engine is terminated
	ListenAddress           string `json:"listen_address"`        // Operator control API address
	JournalPath             string `json:"journal_path"`          // SQLite session journal; empty disables the journal
	LogPath                 string `json:"log_path"`
	LogLevel                string `json:"log_level"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file doesn't exist, create a default one
			defaultConfig := defaults()
			if err := saveConfig(filename, defaultConfig); err != nil {
				return nil, fmt.Errorf("failed to create default config file: %w", err)
			}
			fmt.Printf("Default config file created at %s\n", filename)
			return defaultConfig, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for missing values
	def := defaults()
	if config.EnginePath == "" {
		config.EnginePath = def.EnginePath
	}
	if config.CameraDevice == "" {
		config.CameraDevice = def.CameraDevice
	}
	if config.OutputDirectory == "" {
		config.OutputDirectory = def.OutputDirectory
	}
	if config.ResolutionPreset == "" {
		config.ResolutionPreset = def.ResolutionPreset
	}
	if config.SettleDelayMillis == 0 {
		config.SettleDelayMillis = def.SettleDelayMillis
	}
	if config.StopTimeoutSeconds == 0 {
		config.StopTimeoutSeconds = def.StopTimeoutSeconds
	}
	if config.ListenAddress == "" {
		config.ListenAddress = def.ListenAddress
	}
	if config.LogPath == "" {
		config.LogPath = def.LogPath
	}
	if config.LogLevel == "" {
		config.LogLevel = def.LogLevel
	}

	return &config, nil
}

func defaults() *Config {
	return &Config{
		EnginePath:              "ffmpeg",
		CameraDevice:            "/dev/video0",
		MicrophoneDevice:        "",
		OutputDirectory:         "./recordings",
		ResolutionPreset:        "hd",
		PreferHardwareEncoder:   true,
		UseLowCompressionCodec:  false,
		ValidateModeBeforeStart: false,
		MaxRecordingSeconds:     0,
		CountdownSeconds:        3,
		SettleDelayMillis:       400,
		StopTimeoutSeconds:      5,
		ListenAddress:           "127.0.0.1:8750",
		JournalPath:             "./videobooth.db",
		LogPath:                 "./logs",
		LogLevel:                "info",
	}
}

// ConfigOverrides holds potential override values for configuration
type ConfigOverrides struct {
	EnginePath            *string
	CameraDevice          *string
	MicrophoneDevice      *string
	OutputDirectory       *string
	ResolutionPreset      *string
	PreferHardwareEncoder *bool
	MaxRecordingSeconds   *int
	CountdownSeconds      *int
	ListenAddress         *string
	JournalPath           *string
}

// Override allows overriding specific configuration values using ConfigOverrides struct
func (c *Config) Override(overrides ConfigOverrides) {
	if overrides.EnginePath != nil && *overrides.EnginePath != "" {
		c.EnginePath = *overrides.EnginePath
	}
	if overrides.CameraDevice != nil && *overrides.CameraDevice != "" {
		c.CameraDevice = *overrides.CameraDevice
	}
	if overrides.MicrophoneDevice != nil && *overrides.MicrophoneDevice != "" {
		c.MicrophoneDevice = *overrides.MicrophoneDevice
	}
	if overrides.OutputDirectory != nil && *overrides.OutputDirectory != "" {
		c.OutputDirectory = *overrides.OutputDirectory
	}
	if overrides.ResolutionPreset != nil && *overrides.ResolutionPreset != "" {
		c.ResolutionPreset = *overrides.ResolutionPreset
	}
	if overrides.PreferHardwareEncoder != nil {
		c.PreferHardwareEncoder = *overrides.PreferHardwareEncoder
	}
	if overrides.MaxRecordingSeconds != nil && *overrides.MaxRecordingSeconds > 0 {
		c.MaxRecordingSeconds = *overrides.MaxRecordingSeconds
	}
	if overrides.CountdownSeconds != nil && *overrides.CountdownSeconds >= 0 {
		c.CountdownSeconds = *overrides.CountdownSeconds
	}
	if overrides.ListenAddress != nil && *overrides.ListenAddress != "" {
		c.ListenAddress = *overrides.ListenAddress
	}
	if overrides.JournalPath != nil && *overrides.JournalPath != "" {
		c.JournalPath = *overrides.JournalPath
	}
}

// saveConfig saves a configuration to a JSON file
func saveConfig(filename string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
