// Package resolver implements the document resolution strategy for the
// application shell: given a matched navigation request, produce exactly one
// response from up to three candidate sources plus an offline fallback.
//
// The resolver orchestrates the following, in order:
//
// - Offline short-circuit (serve the fallback clone, or one best-effort fetch)
// - Concurrent precache lookup and network candidate (preload or live fetch)
// - ETag freshness comparison between the cached and network documents
// - Cancellation of a live fetch whose result is known to be discarded
//
// # Collaborators
//
// The precache store, network transport, preload subsystem, and connectivity
// probe are injected as narrow interfaces, so tests substitute them with
// plain structs instead of a mocking framework:
//
//	res, err := resolver.New(resolver.Config{
//		Store:       store,      // resolver.PrecacheStore
//		Transport:   transport,  // resolver.Transport
//		Probe:       probe,      // resolver.Probe (optional)
//		DocumentURL: "https://app.example.com/index.html",
//		DocumentKey: precache.DocumentKey("app.example.com", "/index.html"),
//	})
//
// # Response selection
//
// The precache lookup is always issued and joined first: it is local and
// fast, and it gates whether the network result is needed at all. When both
// candidates are available and their ETags match, the cached copy is served
// and the in-flight fetch is cancelled (its body is unconsumed, so
// cancellation is a pure signal). When they differ, the network version wins.
// When the network candidate fails outright, the cached copy is the safe
// fallback even if possibly stale.
//
// Preload responses are host-managed and are never cancelled here. A live
// fetch whose response is returned to the caller is never cancelled either:
// its cancel function is deferred onto the response body's Close.
//
// # Errors
//
// Failures are recovered locally whenever a fallback (precache or offline)
// exists. A *NetworkError wraps the transport or preload failure when nothing
// could recover it; ErrNoCandidate is terminal and means no source of any
// kind produced a response. No retries are performed internally: navigation
// requests are user-initiated and idempotent to retry externally.
package resolver
