package watcher

import "context"

// EventHandler processes one newly arrived document.
type EventHandler func(ctx context.Context, path string) error

// Watcher monitors an inbox directory for new documents to run the pipeline on.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}
