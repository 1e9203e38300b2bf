package pushqueue

import "context"

// Queue registers a browser-push delivery with the platform push
// worker. The local build posts to an HTTP relay; the gcloud build
// enqueues through Cloud Tasks.
type Queue interface {
	Register(ctx context.Context, task *PushTask) (*TaskResponse, error)
}
