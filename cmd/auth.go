package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"larose-cli/api"
	"larose-cli/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authRefreshCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	var email string
	var password string
	var authFile string
	authFileDefault := os.Getenv(envAuthFile)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to La Rose",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authFile != "" {
				fileEmail, filePassword, err := readAuthFile(authFile)
				if err != nil {
					return err
				}
				if email == "" {
					email = fileEmail
				}
				if password == "" {
					password = filePassword
				}
			}

			out := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				fmt.Fprint(out, "Email: ")
				value, err := reader.ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				email = strings.TrimSpace(value)
			}
			if password == "" {
				fmt.Fprint(out, "Password: ")
				value, err := readPassword(reader)
				fmt.Fprintln(out)
				if err != nil {
					return err
				}
				password = value
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			resp, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			session := sessionFromAuth(resp, email, time.Now())
			if err := storage.SaveSession(&session); err != nil {
				return err
			}

			name := session.User.FullName
			if name == "" {
				name = session.User.Email
			}
			fmt.Fprintf(out, "Logged in as %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&authFile, "auth-file", authFileDefault, "Load credentials from file (default: $"+envAuthFile+")")
	return cmd
}

// readPassword hides input on a terminal and falls back to a plain line otherwise.
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func sessionFromAuth(resp api.AuthResponse, email string, now time.Time) storage.Session {
	session := storage.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         storage.SessionUser{ID: resp.UserID, Email: email},
		LoggedInAt:   now.UTC().Format(time.RFC3339),
	}
	if exp, ok := storage.TokenExpiry(resp.AccessToken); ok {
		session.ExpiresAt = exp.Format(time.RFC3339)
	}
	if info := resp.UserInfo; info != nil {
		session.User.ID = info.ID
		if info.Email != "" {
			session.User.Email = info.Email
		}
		session.User.FullName = info.FullName
		session.User.Phone = info.Phone
		for _, role := range info.Roles {
			session.User.Roles = append(session.User.Roles, role.Name)
		}
	}
	return session
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check auth status",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := storage.LoadSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				status := map[string]any{"loggedIn": false}
				if session != nil && session.AccessToken != "" {
					status = map[string]any{
						"loggedIn":  !session.Expired(time.Now()),
						"user":      session.User,
						"expiresAt": session.ExpiresAt,
						"admin":     session.IsAdmin(),
					}
				}
				return writeJSON(out, status)
			}

			if session == nil || session.AccessToken == "" {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			if session.Expired(time.Now()) {
				fmt.Fprintf(out, "Token expired for %s. Run 'larose auth login' to re-authenticate.\n", session.User.Email)
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s.\n", session.User.Email)
			if len(session.User.Roles) > 0 {
				fmt.Fprintf(out, "Roles: %s\n", strings.Join(session.User.Roles, ", "))
			}
			if session.ExpiresAt != "" {
				fmt.Fprintf(out, "Token expires: %s\n", session.ExpiresAt)
			}
			return nil
		},
	}

	return cmd
}

func authRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := storage.LoadSession()
			if err != nil {
				return err
			}
			if session == nil || session.RefreshToken == "" {
				return fmt.Errorf("no refresh token stored, run 'larose auth login'")
			}

			resp, err := client.RefreshToken(cmd.Context(), session.RefreshToken)
			if err != nil {
				return err
			}
			refreshed := sessionFromAuth(resp, session.User.Email, time.Now())
			if resp.UserInfo == nil {
				refreshed.User = session.User
			}
			if refreshed.RefreshToken == "" {
				refreshed.RefreshToken = session.RefreshToken
			}
			if err := storage.SaveSession(&refreshed); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed.")
			return nil
		},
	}
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if session, err := storage.LoadSession(); err == nil && session != nil && session.AccessToken != "" {
				if err := client.Logout(cmd.Context()); err != nil {
					logger.V(1).Info("backend logout failed", "error", err.Error())
				}
			}
			if err := storage.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}

	return cmd
}

// readAuthFile reads an INI-like file with [username] and [password] sections.
func readAuthFile(path string) (string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var email string
	var password string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "[username]", "[email]":
			if scanner.Scan() {
				email = strings.TrimSpace(scanner.Text())
			}
		case "[password]":
			if scanner.Scan() {
				password = strings.TrimSpace(scanner.Text())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return email, password, nil
}
