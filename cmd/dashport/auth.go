package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/dashport/internal/adapters/cookiefile"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store dashboard session cookies",
	Long: `Capture the dashboard session cookies from a logged-in browser and
store them for later runs.

Open the dashboard in a browser, log in, then copy the Cookie request
header (DevTools > Network > any request > Request Headers) or the
cookies as a JSON object, and paste it when prompted.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	store, err := cookiefile.New(cfg.CookieFile)
	if err != nil {
		return err
	}
	if store.Has() {
		fmt.Println("existing cookies will be replaced")
	}

	fmt.Println("Paste the browser cookies (Cookie header, JSON object, or name=value), then press Enter:")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read cookie input: %w", err)
	}

	cookies := cookiefile.ParseBrowserFormat(strings.TrimSpace(line))
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies recognized in input")
	}

	if err := store.Save(cookies); err != nil {
		return err
	}

	fmt.Printf("stored %d cookie(s) in %s\n", len(cookies), store.Path())
	fmt.Printf("verify with: dashport --log-level debug (base URL %s)\n", cfg.BaseURL)
	return nil
}
