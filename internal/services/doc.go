// Package services implements the outbound HTTP integrations allplay depends on.
//
// # Search
//
// [Searcher] is the search capability front ends depend on. [YouTubeSearch]
// implements it with the YouTube Data API (search.list, type video) through
// google.golang.org/api/youtube/v3, authenticated with an API key or a
// pre-issued OAuth2 access token. Calls pass through a token-bucket limiter.
//
// Results arrive asynchronously, so an older query can finish after a newer
// one. [Sequencer] hands out increasing tokens and [LatestSearch] uses them to
// drop superseded responses with [shared.ErrStaleSearch].
//
// # Video info
//
// [OEmbedService] resolves a bare video id to its title through the public
// oEmbed endpoint. It needs no credentials and backs commands that accept a
// video id without a title.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrEmptyQuery] : blank search query
//   - [shared.ErrMissingCredentials] : no API key or access token configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a bad status
//   - [shared.ErrStaleSearch] : a newer search was issued meanwhile
package services
