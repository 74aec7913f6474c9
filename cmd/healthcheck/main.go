// Command healthcheck checks the local dropvault health endpoint and exits
// non-zero when it is not healthy. It is the container HEALTHCHECK for
// scratch images, which have no shell or curl.
package main

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultAddr = "127.0.0.1:8080"
	healthPath  = "/api/v1/health"
	timeout     = 2 * time.Second
)

func main() {
	os.Exit(check(healthURL(os.Getenv("DROPVAULT_LISTEN_ADDR"))))
}

func check(target string) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 1
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

func healthURL(listenAddr string) string {
	u := url.URL{Scheme: "http", Host: normalizeAddr(listenAddr), Path: healthPath}
	return u.String()
}

// normalizeAddr turns a listen address into one the check can dial from
// inside the same container: wildcard hosts become loopback.
func normalizeAddr(raw string) string {
	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return net.JoinHostPort(host, port)
}
