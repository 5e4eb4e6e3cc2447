package http

import (
	"bytes"
	stdhttp "net/http"
	"time"

	_ "embed"
)

//go:embed static/favicon.ico
var favicon []byte

// faviconHandler serves the embedded catalog icon. Browsers request it on
// every page view, so it is cacheable and bypasses the API middleware chain.
func faviconHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if len(favicon) == 0 {
		w.WriteHeader(stdhttp.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/x-icon")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	stdhttp.ServeContent(w, r, "favicon.ico", time.Time{}, bytes.NewReader(favicon))
}
