// Package api serves the leaderboard over HTTP.
//
// Routes:
//
//	GET  /health                             liveness
//	GET  /health/db                          database connectivity
//	GET  /api/v1/leaderboard                 ranked page (limit, offset, mode, sort)
//	POST /api/v1/leaderboard                 submit {username, score, mode}
//	GET  /api/v1/leaderboard/stats/summary   aggregate statistics
//	GET  /api/v1/leaderboard/{username}      one player's scores
//	GET  /ws                                 websocket feed of accepted scores
//	GET  /metrics                            Prometheus metrics
//
// Errors use the envelope {"error":{"code","message","details"}}.
package api
