package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// driveReadonlyScope is the only scope docgap asks Google for.
const driveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// Callback port range for the loopback redirect.
const (
	callbackPortStart = 8085
	callbackPortEnd   = 8095
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to release-note sources",
}

var authGDriveCmd = &cobra.Command{
	Use:   "gdrive",
	Short: "Sign in to Google Drive",
	Long: `Sign in to Google Drive with an OAuth desktop client and store a
refresh token so 'docgap analyze gdrive:<file-id>' can read private
documents.

Create a desktop OAuth client in the Google Cloud console and pass its
ID and secret. The browser opens on the consent page; after approval the
credentials are written to ~/.docgap/gdrive-credentials.json and
gdrive.credentials_file is set.

Examples:
  docgap auth gdrive --client-id xxx.apps.googleusercontent.com --client-secret yyy
  docgap auth gdrive --client-id xxx --client-secret yyy --no-browser`,
	RunE: runAuthGDrive,
}

func init() {
	authGDriveCmd.Flags().String("client-id", "", "OAuth client ID")
	authGDriveCmd.Flags().String("client-secret", "", "OAuth client secret")
	authGDriveCmd.Flags().StringP("out", "o", "", "credentials file (default ~/.docgap/gdrive-credentials.json)")
	authGDriveCmd.Flags().Bool("no-browser", false, "print the consent URL instead of opening a browser")
	authGDriveCmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for consent")
	_ = authGDriveCmd.MarkFlagRequired("client-id")
	_ = authGDriveCmd.MarkFlagRequired("client-secret")

	authCmd.AddCommand(authGDriveCmd)
	rootCmd.AddCommand(authCmd)
}

// authorizedUser is the credentials file format Google client libraries load.
type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

func runAuthGDrive(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	clientID, _ := cmd.Flags().GetString("client-id")
	clientSecret, _ := cmd.Flags().GetString("client-secret")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		out = filepath.Join(home, ".docgap", "gdrive-credentials.json")
	}

	state := uuid.NewString()
	server, err := listenLoopback(state, callbackPortStart, callbackPortEnd)
	if err != nil {
		return err
	}
	defer func() { _ = server.close() }()

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoints.Google,
		RedirectURL:  server.redirectURL(),
		Scopes:       []string{driveReadonlyScope},
	}
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)

	cmd.Println("Open this URL to authorise docgap:")
	cmd.Printf("\n  %s\n\n", authURL)
	if !noBrowser {
		if err := openBrowser(authURL); err != nil {
			cmd.Printf("Could not open a browser (%v); open the URL manually.\n", err)
		}
	}

	code, err := server.wait(cmd.Context(), timeout)
	if err != nil {
		return err
	}

	token, err := conf.Exchange(cmd.Context(), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return errors.New("google returned no refresh token; revoke docgap's access and retry")
	}

	if err := writeCredentials(out, authorizedUser{
		Type:         "authorized_user",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: token.RefreshToken,
	}); err != nil {
		return err
	}
	if err := settingsService.Set("gdrive.credentials_file", out); err != nil {
		return fmt.Errorf("save gdrive.credentials_file: %w", err)
	}

	cmd.Printf("Google Drive credentials saved to %s\n", out)
	return nil
}

// writeCredentials writes creds to path, readable by the owner only.
func writeCredentials(path string, creds authorizedUser) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
