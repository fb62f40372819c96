package interp

// HelpText is the command reference printed by /help.
const HelpText = `AVAILABLE COMMANDS:
-------------------
/generate [url]       - Generate a new QR code
/color [flags]        - Set colors
  -bg [hex]           - Background color
  -fg [hex]           - Dots color
  -corners [hex]      - Corners square color
/style [part] [type]  - Set shape style
  dots [type]         - square, rounded, dots, classy
  corners [type]      - square, dot, extra-rounded
/add logo [url]       - Add logo (URL or Local)
/remove logo          - Remove the logo
qr export [name] [fmt] - Download QR (fmt: png, jpg, svg)`

// Commands lists the first tokens the interpreter recognizes.
var Commands = []string{"/generate", "/color", "/style", "/add", "/remove", "/help", "qr"}

const (
	msgGenerated     = "qr code generated (version 6, ecc: h)"
	msgColorsApplied = "colors applied"
	msgLogoSafe      = "logo obstruction: safe"
	msgLogoCleared   = "logo layer cleared"
	msgQRTest        = "scan reliability: 98.6%\nerror tolerance: high"

	usageColor  = "usage: /color -bg [hex] -fg [hex] -corners [hex]"
	usageStyle  = "usage: /style dots [type] | /style corners [type]"
	usageAdd    = "usage: /add logo [url] (or empty for local)"
	usageRemove = "usage: /remove logo"

	errMissingURL      = "error: missing url argument"
	errContentTooLong  = "error: content too long for a qr code"
	errFileInput       = "error: file input not ready"
	errEngineNotReady  = "export failed: engine not ready"
	errUnknownQR       = "unknown qr command"
	logMissingURL      = "Error: Missing URL argument"
	logLocalLogoLoaded = "Local logo loaded: "
)

// LogExportFailed prefixes the system log entry for a write that failed
// after "qr export" already answered.
const LogExportFailed = "Export failed: "
