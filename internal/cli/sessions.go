package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage sessions on a running server",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsClearCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			resp, err := http.Get(serverAddr(cmd, cfg) + "/v1/sessions")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			var result struct {
				Sessions []struct {
					SessionID string `json:"session_id"`
					UserID    string `json:"user_id"`
					UpdatedAt string `json:"updated_at"`
				} `json:"sessions"`
				Count int `json:"count"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if result.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no live sessions")
				return nil
			}

			for _, s := range result.Sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  user=%s  updated=%s\n", s.SessionID, s.UserID, s.UpdatedAt)
			}

			return nil
		},
	}
}

func newSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			request, err := http.NewRequest(http.MethodDelete, serverAddr(cmd, cfg)+"/v1/sessions/"+args[0], nil)
			if err != nil {
				return err
			}

			resp, err := http.DefaultClient.Do(request)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode == http.StatusNotFound {
				fmt.Fprintln(cmd.OutOrStdout(), "session not found")
				return nil
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "session deleted")
			return nil
		},
	}
}
