// Package trellis is an embeddable toolkit that adds comments, file
// attachments, ordered lists, and actor groups to any application whose
// records can be named by a fingerprint (a "Type/ID" string). The host
// supplies a pgx pool, an object store, and an access checker; the engine
// supplies repositories, access-checked services, JSON handlers, and
// background tasks.
package trellis
