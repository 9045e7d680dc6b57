package constants

import "time"

const (
	AppName            = "tendwell"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tendwell/tendwell.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tendwell-"
	BackupFileSuffix = ".db"

	// Desktop companion that shows engine events as toasts
	TrayAppIdentifier      = "tendwell-tray"
	NotifierLockfileName   = "tendwell-tray.lock"
	NotificationDurationMs = 5000

	// Upper bounds for user-supplied habit numbers. They keep every product
	// and sum the engine forms far below the int range.
	MaxTargetAmount      = 100_000
	MaxGemsPerCompletion = 10_000
	MaxCompletionAmount  = 1_000

	// Day is one calendar day. Date arithmetic uses calendar dates, not this
	// duration, so DST transitions never shift a day boundary.
	Day = 24 * time.Hour
)
