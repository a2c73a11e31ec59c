// File: pkg/storage/model.go
package storage

import "fmt"

// Kind names a concrete backend implementation
type Kind string

const (
	KindMemory Kind = "memory"
	KindLocal  Kind = "local"
	KindGCS    Kind = "gcs"
	KindS3     Kind = "s3"
	KindRedis  Kind = "redis"
)

// BackendStatus describes one configured backend as checked by the CLI
type BackendStatus struct {
	Name      string
	Kind      Kind
	Reachable bool
	Error     string
	// A value of -1 indicates that the usage is unknown or could not be retrieved
	UsageBytes int64
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "N/A"
	}
	if bytes == 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	if exp >= len(sizes) {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp])
}
