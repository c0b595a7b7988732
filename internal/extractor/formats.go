package extractor

import "strings"

var knownExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".aac":  true,
	".m4a":  true,
	".m4b":  true,
}

// IsSupportedExt returns true if the extension has a native decoder or a
// known ffmpeg fallback.
func IsSupportedExt(ext string) bool {
	return knownExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of accepted formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg, .oga, .opus, .aac, .m4a, .m4b"
}
