// Package actorgroup maintains named groups of actors. Groups carry a
// unique normalized name and an owner fingerprint; members reference
// actors by fingerprint and may appear at most once per group.
package actorgroup
