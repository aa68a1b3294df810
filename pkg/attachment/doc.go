// Package attachment stores file uploads against host-application objects
// addressed by fingerprint. Blobs live in object storage under the engine
// prefix; rows carry the metadata and, for images, a variants map of
// thumbnail keys filled in by a background job.
//
// Deleting an attachment removes the row first and treats blob removal as
// best effort; the scheduled sweep task reconciles any stragglers.
package attachment
