package constants

import "strings"

// FileFormats holds the allowed values for the sourceFormat field in a raw extraction.
var FileFormats = []string{"PDF", "PDF_OCR", "IMAGE", "SHEET", "TXT"}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tiff": {},
	"xlsx": {},
	"xls":  {},
	"csv":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its extraction format.
// Unknown extensions map to the empty string.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "PDF"
	case "jpg", "jpeg", "png", "bmp", "tiff":
		return "IMAGE"
	case "xlsx", "xls", "csv":
		return "SHEET"
	case "txt", "text", "md":
		return "TXT"
	default:
		return ""
	}
}
