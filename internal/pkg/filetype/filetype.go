// Package filetype maps file names and extensions to MIME types, coarse
// categories and preview/edit eligibility. All functions are total over any
// string input.
package filetype

import (
	"strings"

	"filemanager/internal/domain"
)

const octetStream = "application/octet-stream"

var mimeByExt = map[string]string{
	// images
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "bmp": "image/bmp", "webp": "image/webp",
	"svg": "image/svg+xml",
	// documents
	"txt": "text/plain", "html": "text/html", "htm": "text/html",
	"pdf": "application/pdf", "doc": "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"md":   "text/markdown",
	// audio
	"mp3": "audio/mpeg", "wav": "audio/wav", "ogg": "audio/ogg",
	"flac": "audio/flac", "aac": "audio/aac",
	// video
	"mp4": "video/mp4", "avi": "video/x-msvideo", "wmv": "video/x-ms-wmv",
	"flv": "video/x-flv", "mov": "video/quicktime", "mkv": "video/x-matroska",
	"webm": "video/webm",
	// archives
	"zip": "application/zip", "rar": "application/x-rar-compressed",
	"7z": "application/x-7z-compressed", "tar": "application/x-tar",
	"gz": "application/gzip",
	// code
	"java": "text/x-java-source", "js": "application/javascript",
	"css": "text/css", "json": "application/json", "xml": "application/xml",
	"py": "text/x-python", "c": "text/x-c", "cpp": "text/x-c++",
	"cs": "text/x-csharp", "go": "text/x-go", "php": "application/x-php",
	"rb": "application/x-ruby", "sql": "application/sql",
	// other
	"bin": octetStream,
}

var categoryByExt = map[string]domain.FileCategory{}

func init() {
	add := func(cat domain.FileCategory, exts ...string) {
		for _, e := range exts {
			categoryByExt[e] = cat
		}
	}
	add(domain.CategoryImage,
		"jpg", "jpeg", "png", "gif", "bmp", "tiff", "svg", "webp", "ico", "heic", "heif")
	add(domain.CategoryDocument,
		"doc", "docx", "ppt", "pptx", "xls", "xlsx", "pdf", "txt", "csv", "rtf",
		"odt", "ods", "odp", "md", "json", "xml")
	add(domain.CategoryVideo,
		"mp4", "avi", "mov", "wmv", "flv", "mkv", "webm", "m4v", "mpeg", "mpg", "3gp", "ts")
	add(domain.CategoryAudio,
		"mp3", "wav", "ogg", "flac", "aac", "wma", "m4a", "mid", "midi")
	add(domain.CategoryArchive,
		"zip", "rar", "7z", "tar", "gz", "bz2", "xz", "iso", "cab")
	add(domain.CategoryExecutable,
		"exe", "dll", "bat", "com", "msi", "app", "dmg", "apk", "deb", "rpm")
	add(domain.CategoryCode,
		"java", "c", "cpp", "h", "py", "js", "html", "css", "php", "rb", "go",
		"swift", "kt", "cs", "sql", "sh", "bash", "ps1", "pl", "groovy", "scala",
		"yml", "yaml", "ini", "properties")
}

// Ext returns the lowercased extension of name without the dot, or "" when
// name has no extension or ends with a dot.
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i == -1 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// NameWithoutExt strips the final extension, keeping the rest intact.
func NameWithoutExt(name string) string {
	i := strings.LastIndex(name, ".")
	if i == -1 {
		return name
	}
	return name[:i]
}

// MimeByExt resolves a MIME type from an extension, tolerating a leading
// dot and mixed case. Unknown extensions resolve to application/octet-stream.
func MimeByExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return octetStream
	}
	if m, ok := mimeByExt[ext]; ok {
		return m
	}
	return octetStream
}

// MimeByName resolves a MIME type from a file name.
func MimeByName(name string) string {
	return MimeByExt(Ext(name))
}

// CategoryOf classifies a file name (or bare extension) into a coarse
// category.
func CategoryOf(name string) domain.FileCategory {
	ext := name
	if strings.Contains(name, ".") {
		ext = Ext(name)
	}
	ext = strings.ToLower(ext)
	if cat, ok := categoryByExt[ext]; ok {
		return cat
	}
	return domain.CategoryOther
}

// IsPreviewable reports whether the file can be rendered inline: images,
// text-like documents, PDF, audio and video.
func IsPreviewable(name string) bool {
	switch CategoryOf(name) {
	case domain.CategoryImage, domain.CategoryVideo, domain.CategoryAudio, domain.CategoryCode:
		return true
	}
	mime := MimeByName(name)
	return strings.HasPrefix(mime, "text/") ||
		mime == "application/pdf" ||
		mime == "application/json" ||
		mime == "application/xml"
}

// IsEditable reports whether the file is plain text the UI can open in an
// editor.
func IsEditable(name string) bool {
	mime := MimeByName(name)
	return strings.HasPrefix(mime, "text/") ||
		mime == "application/json" ||
		mime == "application/xml" ||
		mime == "application/javascript"
}

// PreviewType names the renderer for a file: image, text, pdf, audio,
// video or none.
func PreviewType(name string) string {
	mime := MimeByName(name)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "text/") || mime == "application/json" || mime == "application/xml":
		return "text"
	case mime == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	default:
		return "none"
	}
}

var unsafeFileNameChars = strings.NewReplacer(
	"\\", "_", "/", "_", ":", "_", "*", "_", "?", "_", "\"", "_",
	"<", "_", ">", "_", "|", "_",
)

// SanitizeName replaces path separators and other characters that are not
// safe in a stored file name.
func SanitizeName(name string) string {
	return unsafeFileNameChars.Replace(name)
}
