// Package services contains catalog service implementations.
//
// A [Catalog] wraps a streaming platform's web API behind a uniform
// interface: authentication, playlist reads, playlist mutations, and
// track search. [SpotifyService] is the production implementation.
package services
