package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used to fetch remote calendars.
var UserAgent = "Go-CompactDates/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "compactdates"
	AppID          = "com.github.tartampluch.go-compactdates"
	BindAddr       = "127.0.0.1"
	LogFileName    = "compactdates.log"
	ConfigFileName = "compactdates"
	ConfigFileType = "yaml"
	EnvPrefix      = "COMPACTDATES"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagYear    = "year"
	FlagLocale  = "locale"
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagStyle   = "style"
	FlagRanges  = "ranges"
	FlagPort    = "port"
	FlagStrict  = "strict"
	FlagCalName = "name"
	FlagUser    = "user"
	FlagPass    = "password"

	FlagDescYear    = "Implicit year used when decoding (default: current year)"
	FlagDescLocale  = "Locale used for display formatting (en, fr)"
	FlagDescDebug   = "Enable debug logging"
	FlagDescConfig  = "Path to a configuration file"
	FlagDescStyle   = "Display style: count, short or readable"
	FlagDescRanges  = "Collapse runs of consecutive days into DD-DD.MM ranges"
	FlagDescPort    = "Port the HTTP service listens on"
	FlagDescStrict  = "Fail when any group or day token is dropped"
	FlagDescCalName = "Calendar name written to the iCalendar feed"
	FlagDescUser    = "Username for HTTP Basic auth when importing from a URL"
	FlagDescPass    = "Password for HTTP Basic auth when importing from a URL"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Configuration Keys (viper)
// -----------------------------------------------------------------------------

const (
	KeyPort   = "port"
	KeyLocale = "locale"
	KeyYear   = "year"
	KeyDebug  = "debug"
)

// SupportedLanguages defines the list of available display languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyDateCount      = "date_count"         // Requires Count, pluralized
	TKeyValidationWarn = "validation_warning" // Requires Parsed, Total
	TKeyWeekdayPrefix  = "weekday_"           // Suffixed with the lowercase English weekday name
)

// WeekdayKeys lists every weekday translation key, Sunday first to match time.Weekday.
var WeekdayKeys = []string{
	TKeyWeekdayPrefix + "sunday",
	TKeyWeekdayPrefix + "monday",
	TKeyWeekdayPrefix + "tuesday",
	TKeyWeekdayPrefix + "wednesday",
	TKeyWeekdayPrefix + "thursday",
	TKeyWeekdayPrefix + "friday",
	TKeyWeekdayPrefix + "saturday",
}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18081"
	DefaultLanguage = "en"
	DefaultCalName  = "Bookings"
	UIDSalt         = "go-compactdates-v1-" // Salt for deterministic UID generation

	// MinRunLength is the shortest run of consecutive days collapsed into a DD-DD.MM range.
	MinRunLength = 3

	// ShortListLimit is the largest date count the short style lists in full.
	ShortListLimit = 3
)

// Display styles accepted by the formatter.
const (
	StyleCount    = "count"
	StyleShort    = "short"
	StyleReadable = "readable"
)

// -----------------------------------------------------------------------------
// Compact Format Tokens
// -----------------------------------------------------------------------------

const (
	CompactOpen       = "["
	CompactClose      = "]"
	GroupSeparator    = ","
	GroupJoin         = ", "
	DaySeparator      = "/"
	MonthSeparator    = "."
	FormatTwoDigits   = "%02d"
	FormatDayMonth    = "%02d.%02d"
	FormatFullDate    = "%02d.%02d.%04d"
	FormatISODate     = "%04d-%02d-%02d"
	FormatShortSpan   = "%s - %s (%d)"
	FormatReadable    = "%s %s"
	FormatRangeGroup  = "[%02d-%02d.%02d]"
	FallbackDateCount = "%d dates"
	FallbackDateOne   = "%d date"
	FallbackWarning   = "Only %d of %d date groups could be read; the rest were ignored."
)

// Reasons attached to dropped tokens by the strict decoder.
const (
	ReasonMissingSeparator = "missing_separator"
	ReasonInvalidMonth     = "invalid_month"
	ReasonInvalidDay       = "invalid_day"
	ReasonInvalidDate      = "invalid_date"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go CompactDates//Engine//EN"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "compactdates"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are generated.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted at the parsing boundary.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatEuropean  = "02.01.2006"

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"

	MinPort = 1
	MaxPort = 65535

	// MaxRequestBody bounds the JSON payload accepted by the encode endpoint.
	MaxRequestBody = 1 << 20
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	HeaderUserAgent     = "User-Agent"
)

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	AddrSeparator      = ":"
	MethodSeparator    = ", "

	RouteCalendar = "/calendar.ics"
	RouteDecode   = "/api/decode"
	RouteEncode   = "/api/encode"
	RouteValidate = "/api/validate"
	RouteFormat   = "/api/format"

	QueryValue  = "value"
	QueryYear   = "year"
	QueryStyle  = "style"
	QueryLocale = "locale"
	QueryRanges = "ranges"
	QueryName   = "name"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidDate     = "invalid calendar date"
	ErrPartialDecode   = "compact value only partially decoded"
	ErrDateParse       = "unable to parse date"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrICalDecode      = "failed to decode iCalendar data"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrYearRange       = "year must be between 1 and 9999"
	ErrConfigRead      = "failed to read configuration"
	ErrConfigParse     = "failed to parse configuration"
	ErrSettingsInvalid = "invalid configuration"
	ErrRequestCreate   = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "server returned unexpected status"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrBadRequestBody  = "request body must be a JSON object with a dates array"
	ErrBadYear         = "year query parameter must be a number"
	ErrOpenFile        = "failed to open file"
	ErrUnsupportedLang = "unsupported locale"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrSourceEmpty     = "calendar source is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrStrictDecode    = "compact value contains unreadable tokens"
	ErrNoDates         = "no dates given (pass them as arguments or on stdin)"
	ErrReadInput       = "failed to read standard input"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgSkippedDate   = "Skipping invalid date"
	MsgSkippedToken  = "Dropping compact token"
	MsgEncoded       = "Dates encoded"
	MsgDecoded       = "Compact value decoded"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgICalExported  = "Calendar export successful"
	MsgICalImported  = "Calendar import successful"
	MsgSkippedEvent  = "Skipping event without usable start date"
	MsgConfigMissing = "No configuration file found, using environment and defaults"
	MsgConfigLoaded  = "Configuration loaded"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgRequestServed = "Request served"
	MsgFetchStart    = "Requesting remote calendar"
	MsgFetchStatus   = "Remote calendar returned error status"
	MsgFetchStream   = "Streaming remote calendar"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyValue     = "value"
	LogKeyToken     = "token"
	LogKeyReason    = "reason"
	LogKeyYear      = "year"
	LogKeyCount     = "count"
	LogKeyDropped   = "dropped"
	LogKeyGroups    = "groups"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyPath      = "path"
	LogKeyMethod    = "method"
	LogKeyDuration  = "duration_ms"
	LogKeyURL       = "url"
	LogKeyLength    = "content_length"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompICal    = "ical"
	CompServer  = "server"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
	CompFetcher = "fetcher"
)
