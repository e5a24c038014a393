package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/jwt"
)

// newTokenCommand 为指定用户签发 Access Token，用于联调与运维
func newTokenCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "签发 Access Token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadBase(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			auth := service.NewAuthService(jwt.NewManager(&cfg.Auth), nil, logger)
			resp, err := auth.IssueToken(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}
