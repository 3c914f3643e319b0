package config

const defaultBaseURL = "https://www.cms.gov/license/ama?file=/files/zip/medicare-ncci-2025q4-practitioner-ptp-edits-ccipra-v313r0-f1.zip"

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/rvuweb",
			LogDir:  "~/.local/share/rvuweb/logs",
			WebBind: "127.0.0.1:8080",
		},
		NCCI: NCCI{
			BaseURL:        defaultBaseURL,
			RequestTimeout: 60,
			DebugDir:       "",
			SyncOnStart:    true,
		},
		Auth: Auth{
			Password: "demo123",
		},
		Logging: Logging{
			Format: "text",
			Level:  "info",
		},
	}
}
