// ABOUTME: Operator CLI for authgate over the HTTP API
// ABOUTME: Stores the server URL and session token in a TOML config file

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
)

// cliConfig is persisted at ~/.config/authgate/cli.toml.
type cliConfig struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(args)
	case "me":
		err = cmdMe()
	case "users":
		err = cmdUsers(args)
	case "logout":
		err = cmdLogout()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Println("Usage: authgate-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <email>           Sign in and store the session token")
	fmt.Println("  me                      Show your identity (profile + role)")
	fmt.Println("  users [page] [limit]    List users (admin only)")
	fmt.Println("  logout                  Discard the stored session token")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  AUTHGATE_URL    Server base URL (overrides config file)")
	fmt.Println("  AUTHGATE_TOKEN  Session token (overrides config file)")
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "authgate", "cli.toml"), nil
}

// loadConfig reads the TOML config file and applies environment overrides.
func loadConfig() (*cliConfig, error) {
	cfg := &cliConfig{ServerURL: "http://localhost:8000"}

	path, err := configFilePath()
	if err == nil {
		// A missing file is fine; defaults and env cover it.
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if url := os.Getenv("AUTHGATE_URL"); url != "" {
		cfg.ServerURL = url
	}
	if token := os.Getenv("AUTHGATE_TOKEN"); token != "" {
		cfg.Token = token
	}

	return cfg, nil
}

func saveConfig(cfg *cliConfig) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// apiUser mirrors the server's filtered user shape.
type apiUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

type apiFail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// doRequest performs an authenticated request and decodes the response into out.
func doRequest(cfg *cliConfig, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequest(method, cfg.ServerURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var fail apiFail
		if json.Unmarshal(data, &fail) == nil && fail.Message != "" {
			return fmt.Errorf("%s (HTTP %d)", fail.Message, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func cmdLogin(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: authgate-admin login <email>")
	}
	email := args[0]

	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password = strings.TrimSpace(password)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	var result struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	if err := doRequest(cfg, http.MethodPost, "/api/auth/login", bytes.NewReader(payload), &result); err != nil {
		return err
	}

	cfg.Token = result.Token
	if err := saveConfig(cfg); err != nil {
		return err
	}

	color.Green("Logged in as %s", email)
	return nil
}

func cmdMe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var result struct {
		Data struct {
			User apiUser `json:"user"`
		} `json:"data"`
	}
	if err := doRequest(cfg, http.MethodGet, "/api/users/me", nil, &result); err != nil {
		return err
	}

	u := result.Data.User
	cyan := color.New(color.FgCyan)
	cyan.Println("Identity")
	fmt.Printf("  ID:       %s\n", u.ID)
	fmt.Printf("  Name:     %s\n", u.Name)
	fmt.Printf("  Email:    %s\n", u.Email)
	fmt.Printf("  Role:     %s\n", u.Role)
	fmt.Printf("  Verified: %v\n", u.Verified)
	return nil
}

func cmdUsers(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	page, limit := "1", "10"
	if len(args) > 0 {
		page = args[0]
	}
	if len(args) > 1 {
		limit = args[1]
	}

	var result struct {
		Results int       `json:"results"`
		Users   []apiUser `json:"users"`
	}
	path := fmt.Sprintf("/api/users?page=%s&limit=%s", page, limit)
	if err := doRequest(cfg, http.MethodGet, path, nil, &result); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tVERIFIED\tCREATED")
	for _, u := range result.Users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n",
			u.ID, u.Name, u.Email, u.Role, u.Verified, u.CreatedAt.Format(time.DateOnly))
	}
	w.Flush()

	fmt.Printf("\n%d user(s)\n", result.Results)
	return nil
}

func cmdLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Best-effort server call to expire the cookie; the real invalidation is
	// dropping the stored token.
	_ = doRequest(cfg, http.MethodGet, "/api/auth/logout", nil, nil)

	cfg.Token = ""
	if err := saveConfig(cfg); err != nil {
		return err
	}

	color.Green("Logged out")
	return nil
}
