package ports

// Watcher monitors a dataset file for changes and triggers a reload.
// The adapter (fsnotify) watches the file's directory so editors that replace
// the file via rename are still observed. Only one Watch call should be active
// at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute path
	// each time the file is written, created, renamed over, or removed.
	// The callback may be invoked from any goroutine. Returns an error if
	// the parent directory doesn't exist or permissions are insufficient.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
