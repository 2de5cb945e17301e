package ir

// Report describes whether FFmpeg is usable in the target environment.
type Report struct {
	Status          string `json:"status"` // "healthy" or "degraded"
	Target          string `json:"target"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
	FFmpegVersion   string `json:"ffmpeg_version"`
	FFmpegPath      string `json:"ffmpeg_path,omitempty"`
}
