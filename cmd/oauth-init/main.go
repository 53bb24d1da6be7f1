// Command oauth-init runs the OAuth consent flow once and stores the user
// token the worker uses to write the Google Sheets ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	"rentbook/internal/cli"
	"rentbook/internal/config"
	"rentbook/internal/log"
	gsheet "rentbook/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := config.Load()

	if err := run(context.Background(), cfg); err != nil {
		logger.Error("OAuth initialisation failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	oauthCfg, err := gsheet.OAuthConfig(gsheet.Options{
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
	})
	if err != nil {
		return fmt.Errorf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE: %w", err)
	}
	// The OAuth client must list this URI among its authorised redirect URIs.
	oauthCfg.RedirectURL = "http://localhost:" + cfg.OAuthRedirectPort + "/callback"

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + cfg.OAuthRedirectPort, Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if e := r.URL.Query().Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", e)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- r.URL.Query().Get("code")
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Open this URL to authorize:\n%s\n", oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	select {
	case code := <-codeCh:
		tok, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		out := cfg.GoogleOAuthTokenFile
		if out == "" {
			out = "token.json"
		}
		if err := gsheet.SaveToken(out, tok); err != nil {
			return err
		}
		fmt.Printf("Saved token to %s\n", out)
		return nil
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Minute):
		return errors.New("authorization timed out")
	case <-ctx.Done():
		return errors.New("interrupted")
	}
}
