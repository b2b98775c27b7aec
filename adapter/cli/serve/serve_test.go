package serve

import (
	"bytes"
	"context"
	"testing"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/stretchr/testify/assert"
)

func run(args ...string) error {
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetContext(context.Background())
	return Cmd.RunE(Cmd, args)
}

func TestServe_WithoutApp(t *testing.T) {
	cli.SetApp(nil)

	assert.ErrorIs(t, run(), cli.ErrAppNotInitialized)
}

func TestServe_NothingToServe(t *testing.T) {
	cli.SetApp(&cli.App{Config: &config.Config{}})
	defer cli.SetApp(nil)
	noAPI, noMCP = true, true
	defer func() { noAPI, noMCP = false, false }()

	assert.ErrorContains(t, run(), "nothing to serve")
}

func TestServe_RequiresConfig(t *testing.T) {
	cli.SetApp(&cli.App{})
	defer cli.SetApp(nil)

	assert.ErrorContains(t, run(), "configured application")
}

func TestServe_StopsWithContext(t *testing.T) {
	cli.SetApp(&cli.App{Config: &config.Config{HTTPAddr: "127.0.0.1:0"}})
	defer cli.SetApp(nil)
	noMCP = true
	defer func() { noMCP = false }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Cmd.SetContext(ctx)

	assert.NoError(t, Cmd.RunE(Cmd, nil))
}
