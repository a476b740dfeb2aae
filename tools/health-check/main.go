package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vampire-games/vampired/internal/logging"
	"github.com/vampire-games/vampired/internal/shutdown"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Url string `envconfig:"VAMPIRE_HP_URL" default:"http://localhost:1234/health"`
}

// Liveness probe for the game server: exits 0 when /health answers 200.
func main() {
	flag.Parse()
	ctx, cancel := shutdown.New()
	logger := logging.FromContext(ctx)
	defer cancel()

	config := Config{}
	if err := envconfig.Process("", &config); err != nil {
		logger.Fatalf("processing the config: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.Url, nil)
	if err != nil {
		logger.Fatalf("new request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Fatalf("client get: %v", err)
	}
	defer resp.Body.Close()

	_, _ = fmt.Fprintln(os.Stdout, resp.Status)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
