package config

const (
	defaultConfigPath          = "~/.config/pixbatch/config.toml"
	defaultFormat              = "jpeg"
	defaultQuality             = 85
	defaultMaintainAspectRatio = true
	defaultMaxFileBytes        = 10 * 1024 * 1024
	defaultMinDimension        = 10
	defaultMaxDimension        = 8000
	defaultMaxPixels           = 32_000_000
	defaultWebSizeDimension    = 2000
	defaultOutputDir           = "./converted"
	defaultArchiveName         = "converted_images.zip"
	defaultIndividualThreshold = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNotifyTimeout       = 10
	defaultNotifyMinKind       = "info"
	defaultWatchDebounceMillis = 500
)

var defaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Conversion: Conversion{
			Format:              defaultFormat,
			Quality:             defaultQuality,
			MaintainAspectRatio: defaultMaintainAspectRatio,
		},
		Limits: Limits{
			MaxFileBytes:     defaultMaxFileBytes,
			AllowedTypes:     append([]string(nil), defaultAllowedTypes...),
			MinDimension:     defaultMinDimension,
			MaxDimension:     defaultMaxDimension,
			MaxPixels:        defaultMaxPixels,
			WebSizeDimension: defaultWebSizeDimension,
		},
		Export: Export{
			OutputDir:           defaultOutputDir,
			ArchiveName:         defaultArchiveName,
			IndividualThreshold: defaultIndividualThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			MinKind:        defaultNotifyMinKind,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounceMillis,
		},
	}
}
