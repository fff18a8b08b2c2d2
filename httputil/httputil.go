package httputil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"
)

// NewTimeoutClient returns a client with separate connect and read/write
// timeouts. proxy can be nil, in which case http.ProxyFromEnvironment is used.
// New one must be created for each request because read/write
// deadline is set at connection time
func NewTimeoutClient(connectTimeout time.Duration, readWriteTimeout time.Duration, proxy *url.URL) *http.Client {
	dial := func(netw, addr string) (net.Conn, error) {
		conn, err := net.DialTimeout(netw, addr, connectTimeout)
		if err != nil {
			return nil, err
		}
		conn.SetDeadline(time.Now().Add(readWriteTimeout))
		return conn, nil
	}
	proxyFn := http.ProxyFromEnvironment
	if proxy != nil {
		proxyFn = http.ProxyURL(proxy)
	}
	return &http.Client{
		Transport: &http.Transport{
			Dial:  dial,
			Proxy: proxyFn,
		},
	}
}

func NewDefaultTimeoutClient() *http.Client {
	return NewTimeoutClient(time.Second*120, time.Second*120, nil)
}

// ServeJSON writes v as indented JSON
func ServeJSON(w http.ResponseWriter, v any, code int) {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(d)
}

// ServeError writes {"error": msg} with a given status code
func ServeError(w http.ResponseWriter, msg string, code int) {
	ServeJSON(w, map[string]string{"error": msg}, code)
}
