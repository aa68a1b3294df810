// Package job runs background tasks on River with Postgres as the queue.
//
// Tasks are plain structs with Name and Handle methods, registered on the
// manager via WithTask. Periodic tasks add a Schedule method returning a
// five-field cron expression. Payloads travel as JSON and are unmarshaled
// into the type the Handle signature declares.
//
//	type RenderThumbnails struct{ store storage.Storage }
//
//	func (t *RenderThumbnails) Name() string { return "render_thumbnails" }
//	func (t *RenderThumbnails) Handle(ctx context.Context, p ThumbnailPayload) error {
//	    ...
//	}
//
//	mgr, err := job.NewManager(pool, job.WithTask(&RenderThumbnails{store: store}))
//
// Jobs may be enqueued before Start is called; they sit in the queue until
// the manager starts. EnqueueTx inserts the job inside a caller transaction
// so the job becomes visible only if the transaction commits.
package job
