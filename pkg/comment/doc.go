// Package comment attaches threaded comments to any host-application
// object addressed by fingerprint. Comments are themselves commentable
// through their own "Comment/<id>" fingerprint, which is how replies
// nest; a reply bumps its parent's reply count in the same transaction.
//
// Bodies are stored as the author wrote them (markdown) alongside a
// rendered, sanitized HTML version that is refreshed on every update.
package comment
