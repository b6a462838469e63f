package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text...]",
		Short: "Send one query to a running ingrid server",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQueryCmd,
	}

	cmd.Flags().String("user", "cli", "user id for the session")
	cmd.Flags().String("session", "", "session id to continue")

	return cmd
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	userID, _ := cmd.Flags().GetString("user")
	sessionID, _ := cmd.Flags().GetString("session")

	requestBody, _ := json.Marshal(map[string]string{
		"user_id":    userID,
		"query":      strings.Join(args, " "),
		"session_id": sessionID,
	})

	resp, err := http.Post(serverAddr(cmd, cfg)+"/v1/query", "application/json", bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("query request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		SessionID string `json:"session_id"`
		Response  struct {
			Content string `json:"content"`
			Worker  string `json:"worker"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Response.Content)
	fmt.Fprintf(cmd.OutOrStdout(), "\n[session: %s, worker: %s]\n", result.SessionID, result.Response.Worker)

	return nil
}
