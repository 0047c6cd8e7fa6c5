package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zmb3/spotify/v2"

	"github.com/tessro/tracklog/internal/browser"
	"github.com/tessro/tracklog/internal/spotify/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing Spotify OAuth authentication.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Opens a browser to authenticate with Spotify using OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify OAuth tokens from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the current Spotify authentication status.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if cfg.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id not configured. Set it in ~/.tracklogrc or via TRACKLOG_SPOTIFY_CLIENT_ID")
	}

	a, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}
	login, err := a.Begin()
	if err != nil {
		return err
	}

	callbackServer, err := auth.NewCallbackServer(a.RedirectURI())
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	fmt.Fprintln(out, "Opening browser for Spotify authentication...")
	if err := browser.Open(login.URL); err != nil {
		fmt.Fprintf(out, "Could not open browser automatically.\n")
		fmt.Fprintf(out, "Please open this URL in your browser:\n\n%s\n\n", login.URL)
	}

	fmt.Fprintln(out, "Waiting for authentication...")
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	result, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authentication timed out: %w", err)
	}

	fmt.Fprintln(out, "Exchanging code for tokens...")
	if _, err := a.Complete(ctx, login, result); err != nil {
		return err
	}

	user, err := currentUser(ctx, a)
	if err != nil {
		logger.Debug("fetch current user", "err", err)
		fmt.Fprintln(out, "Authentication successful! Token stored.")
		return nil
	}

	if JSONOutput() {
		return printJSON(out, map[string]any{
			"status":       "authenticated",
			"user_id":      user.ID,
			"display_name": user.DisplayName,
		})
	}
	fmt.Fprintf(out, "Successfully authenticated as %s\n", user.DisplayName)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	storage, err := auth.NewTokenStorage(cfg.Spotify.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		if JSONOutput() {
			return printJSON(out, map[string]string{"status": "not_authenticated"})
		}
		fmt.Fprintln(out, "Not authenticated with Spotify.")
		return nil
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if JSONOutput() {
		return printJSON(out, map[string]string{"status": "logged_out"})
	}
	fmt.Fprintln(out, "Logged out of Spotify.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	a, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	token, err := a.Storage().Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token == nil {
		if JSONOutput() {
			return printJSON(out, map[string]any{"authenticated": false})
		}
		fmt.Fprintln(out, "Not authenticated with Spotify.")
		fmt.Fprintln(out, "Run 'tracklog auth login' to authenticate.")
		return nil
	}

	// A refresh token keeps an expired access token usable.
	status := map[string]any{
		"authenticated": true,
		"expired":       !token.Valid(),
		"refreshable":   token.RefreshToken != "",
		"expires_at":    token.Expiry,
		"token_file":    a.Storage().Path(),
	}

	user, userErr := currentUser(cmd.Context(), a)
	if userErr == nil {
		status["user_id"] = user.ID
		status["display_name"] = user.DisplayName
	} else if cfg.Spotify.ClientID != "" {
		status["error"] = userErr.Error()
	}

	if JSONOutput() {
		return printJSON(out, status)
	}

	switch {
	case userErr == nil:
		fmt.Fprintf(out, "Authenticated as: %s\n", user.DisplayName)
	case !token.Valid() && token.RefreshToken == "":
		fmt.Fprintln(out, "Authenticated but token expired.")
		fmt.Fprintln(out, "Run 'tracklog auth login' to re-authenticate.")
	default:
		fmt.Fprintln(out, "Authenticated with Spotify.")
		if cfg.Spotify.ClientID != "" {
			fmt.Fprintf(out, "Token may be invalid: %v\n", userErr)
		}
	}
	if !token.Expiry.IsZero() {
		fmt.Fprintf(out, "Token expires: %s (%s)\n", token.Expiry.Format(time.RFC3339), humanize.Time(token.Expiry))
	}
	fmt.Fprintf(out, "Token file: %s\n", a.Storage().Path())
	return nil
}

func currentUser(ctx context.Context, a *auth.Authenticator) (*spotify.PrivateUser, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, fmt.Errorf("spotify.client_id not configured")
	}
	httpClient, err := a.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return spotify.New(httpClient).CurrentUser(ctx)
}
