package main

import (
	"net/http"
	"time"
)

const timeoutBody = `<html lang="en">
<head><title>Timeout</title></head>
<body>
<h1>The research service took too long</h1>
<p>The request was cancelled. Your archive is unchanged.</p>
<form method="get">
    <button type="submit">Retry</button>
</form>
</body>
</html>
`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
// Streaming handlers must not be wrapped since [http.TimeoutHandler] buffers the response.
func timeoutHandler(h http.Handler, requestTimeout time.Duration) http.Handler {
	// We want the timeout to be a little shorter than the server's write timeout so that the
	// timeout handler has a chance to respond before the server closes the connection.
	httpHandlerTimeout := requestTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return http.TimeoutHandler(h, httpHandlerTimeout, timeoutBody)
}
