// Package download stages drawing files on disk and orchestrates the whole
// per-identifier pipeline.
//
// # Manager
//
// The Manager coordinates one batch run:
//
//  1. Apply the property-prefetch policy to the session
//  2. Resolve each identifier to its item and latest revision
//  3. Discover datasets of the wanted types
//  4. Stage every file, cache-first with a ticket fallback
//  5. Aggregate per-identifier outcomes into a RunReport
//
// # Basic Usage
//
//	manager := download.NewManager(settings, session, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, logger)
//
//	report, err := manager.Run(ctx, []string{"12345", "67890"})
//	if err != nil {
//	    log.Fatal(err) // configuration error; per-item failures are in the report
//	}
//
// # Concurrency
//
// Run is sequential: one remote session is not safely shareable across
// concurrent calls. RunParallel takes one additional session per worker and
// processes identifiers concurrently with no shared mutable state; reports
// are merged back into input order.
//
// # Failure scoping
//
// A file failure is recorded in its DownloadResult and never aborts sibling
// files. An identifier failure is recorded in its ItemReport and never
// aborts the batch. Only configuration errors (rejected property policy,
// unusable destination root) abort the run.
package download
