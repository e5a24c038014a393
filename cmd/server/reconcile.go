package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReconcileCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "执行一轮事项状态刷新后退出",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.Refresher.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("状态刷新失败: %w", err)
			}
			if res.Skipped {
				a.logger.Warn("其他实例正在刷新，本次跳过")
				return nil
			}
			a.logger.Info("状态刷新完成",
				zap.Int("scanned", res.Scanned),
				zap.Int("transitions", res.Transitions),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d transitions=%d\n", res.Scanned, res.Transitions)
			return nil
		},
	}
}
