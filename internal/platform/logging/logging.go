package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ogurasousui/orgchart/internal/platform/config"
	"github.com/sirupsen/logrus"
)

// New は設定から logrus.Logger を構築します。
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput は出力先を指定して logrus.Logger を構築します。
func NewWithOutput(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}

	return log, nil
}
