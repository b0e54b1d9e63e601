// Command resolve prints the downloadable video URL for a LinkedIn post
// without starting the server or persisting anything.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"linkvid/internal/browser"
	"linkvid/internal/config"
	"linkvid/internal/scrape"
	"linkvid/internal/service"
)

func main() {
	_ = godotenv.Load()

	var (
		postURL  = flag.String("url", "", "LinkedIn post URL (required)")
		email    = flag.String("email", "", "LinkedIn email for authenticated access")
		password = flag.String("password", "", "LinkedIn password")
		timeout  = flag.Duration("timeout", 0, "override for the video wait timeout")
	)
	flag.Parse()

	if *postURL == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := service.ValidatePostURL(*postURL); err != nil {
		log.Fatalf("Invalid URL: %v", err)
	}

	cfg := config.Load()
	waitTimeout := cfg.WaitTimeout
	if *timeout > 0 {
		waitTimeout = *timeout
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	session := browser.NewRodSession(browser.Options{
		BrowserPath: cfg.BrowserPath,
		Headless:    cfg.Headless,
		Proxy:       cfg.Proxy,
		Logger:      logger,
	})
	defer session.Close()

	if err := session.Start(); err != nil {
		log.Fatalf("Failed to initialize WebDriver: %v", err)
	}

	if *email != "" && *password != "" {
		if err := browser.Login(session, *email, *password, waitTimeout); err != nil {
			logger.Printf("Login failed, continuing unauthenticated: %v", err)
		}
	}

	resolver := scrape.NewResolver(waitTimeout, cfg.RenderDelay, logger)
	start := time.Now()
	videoURL, err := resolver.Resolve(session, *postURL)
	if err != nil {
		log.Fatalf("Could not extract video URL from the post: %v", err)
	}
	logger.Printf("Resolved in %s", time.Since(start).Round(time.Millisecond))

	fmt.Println(videoURL)
}
