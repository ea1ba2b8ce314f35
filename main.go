package main

import (
	"fmt"
	"os"

	"ticketPlatform/initialization"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/spf13/cobra"
)

var Version string

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ticketPlatform",
	Short: "多监控服务问题聚合平台",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务与后台任务",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "检查全部启用服务的连接状态",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := initialization.InitBasic(configPath); err != nil {
			return err
		}

		results, err := services.ServerService.CheckAll(cmd.Context())
		for _, r := range results {
			status := "OK"
			if !r.Ok {
				status = "FAIL"
			}
			for _, msg := range r.Messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s %s\n", status, r.ServerId, msg)
			}
		}
		return err
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "结果缓存维护",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <serverId>",
	Short: "清除指定服务的结果缓存",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := initialization.InitBasic(configPath); err != nil {
			return err
		}

		_, err := services.ServerService.ResetCache(cmd.Context(), &types.RequestServerQuery{ID: args[0]})
		if err != nil {
			return fmt.Errorf("%v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cache cleared: %s\n", args[0])
		return nil
	},
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, err := initialization.InitBasic(configPath)
	if err != nil {
		return err
	}

	initialization.StartJobs(c)
	return initialization.InitRoute(c)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径, 默认读取 config/config.yaml")

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	global.Version = Version
	rootCmd.Version = Version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
