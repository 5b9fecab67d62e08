// Package static provides handlers for serving static directories and single
// files on top of the router. Serving targets are validated when the handler
// is constructed, so registering a handler for a missing file or directory
// fails at startup rather than on the first request:
//
//	r.Get("/favicon.ico", static.File[*router.Context]("./assets/favicon.ico"))
//	r.Get("/assets/:file", static.Dir[*router.Context]("./assets", static.WithStripPrefix("/assets")))
package static
