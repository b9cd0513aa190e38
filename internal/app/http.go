package app

import (
	"net/http"
	"time"

	"github.com/machibo/backoffice/internal/config"
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: config.GetSeconds("request_timeout", 15*time.Second)}
}
