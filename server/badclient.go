package server

import (
	"net/http"
	"strings"
)

/*
when someone is scanning for vulnerabilities, reply with 404
early, without looking for handlers.
the urls come from observing attacks on public servers
*/

var (
	badClientsContains = []string{
		"/wp-login.php",
		"/wp-includes/",
		"/xmlrpc.php",
		"/wp-admin",
		"/wp-content/",
		".env",
		".git/",
		"id_rsa",
		"id_dsa",
		"/etc/passwd",
		"/cgi-bin/",
	}
	badClientPrefix = []string{
		"/plus/",
		"/index.php",
		"/phpmyadmin",
		"/?-",
	}
	badClientSuffix = []string{
		".php",
		".bak",
		".sql",
		".key",
		".pem",
		".sqlite",
		".db",
	}
)

func isBadClient(uri string) bool {
	uri = strings.ToLower(uri)
	for _, s := range badClientSuffix {
		if strings.HasSuffix(uri, s) {
			return true
		}
	}
	for _, s := range badClientPrefix {
		if strings.HasPrefix(uri, s) {
			return true
		}
	}
	for _, s := range badClientsContains {
		if strings.Contains(uri, s) {
			return true
		}
	}
	return false
}

// TryServeBadClient returns true if sent a response to the client
func TryServeBadClient(w http.ResponseWriter, r *http.Request) bool {
	if !isBadClient(r.URL.Path) {
		return false
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	return true
}
