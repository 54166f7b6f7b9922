// Package gateway is the HTTP client for the remote render service.
//
// It covers preview rendering, video job submission and status, synchronous
// image generation, and the font/animation/transition catalogs. Every failure
// (network, timeout, non-2xx) is wrapped with services.ErrTransport; non-2xx
// answers also carry a *StatusError with the server's detail message.
// Asset upload and listing are handled elsewhere and are not part of this
// client.
package gateway
