package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/platform/config"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
	"github.com/ogurasousui/orgchart/internal/platform/logging"
	"github.com/ogurasousui/orgchart/internal/platform/storage"
	"github.com/spf13/cobra"
)

// session はコマンド 1 回分のサービスと購読基盤です。
type session struct {
	svc   *orgchart.Service
	bus   *eventbus.Bus
	close func()
}

// opener は設定パスからセッションを組み立てます。テストでは差し替えます。
type opener func(ctx context.Context, configPath string) (*session, error)

func defaultOpener(ctx context.Context, configPath string) (*session, error) {
	if _, err := config.LoadEnv(".env", ".env.local"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(logger)
	return &session{
		svc:   orgchart.NewService(backend.OrgChart, bus, nil, nil, logger),
		bus:   bus,
		close: backend.Close,
	}, nil
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// newRootCmd はルートコマンドと、開いたセッションを閉じる関数を返します。
// RunE が失敗すると cobra は PostRun を呼ばないため、解放は Execute の後で行います。
func newRootCmd(open opener) (*cobra.Command, func()) {
	var (
		configPath string
		sess       *session
	)

	cmd := &cobra.Command{
		Use:          "orgctl",
		Short:        "Inspect and edit the organization chart",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), effectiveConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			sess = s
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")

	current := func() *session { return sess }
	cmd.AddCommand(
		newListCmd(current),
		newChartCmd(current),
		newAddCmd(current),
		newEditCmd(current),
		newRmCmd(current),
	)

	closeSession := func() {
		if sess != nil && sess.close != nil {
			sess.close()
			sess.close = nil
		}
	}
	return cmd, closeSession
}
