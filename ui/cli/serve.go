// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/toeirei/keychain/internal/i18n"
	"github.com/toeirei/keychain/internal/logging"
	"github.com/toeirei/keychain/internal/server"
	"github.com/toeirei/keychain/internal/watch"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <ssh_config>",
		Short: "Serve the resolved hosts over HTTP",
		Long: `Starts a read-only HTTP API:

  GET /healthz         liveness probe
  GET /hosts           all resolved hosts
  GET /hosts/<name>    the record whose patterns contain <name>

With --reload the file is re-resolved whenever it changes. A reload that fails
to parse keeps serving the previous set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			kcs, err := loadResolved(path)
			if err != nil {
				return err
			}
			src := server.NewSource(path, kcs)

			if !appConfig.Debug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              appConfig.Server.Addr,
				Handler:           server.New(src),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()

			if appConfig.Server.Reload {
				go func() {
					err := watch.File(ctx, path, debounce(), func() { reload(src, path) })
					if err != nil {
						logging.Errorf("watch %s: %v", path, err)
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("cli.serving", len(kcs), srv.Addr))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	addResolveFlags(cmd)
	addWatchFlags(cmd)
	cmd.Flags().String("addr", "127.0.0.1:8022", "Listen address")
	cmd.Flags().Bool("reload", false, "Reload when the file changes")
	return cmd
}

// reload re-resolves path into src. On failure the previous set stays.
func reload(src *server.Source, path string) {
	kcs, err := loadResolved(path)
	if err != nil {
		logging.Warnf("%s", i18n.T("cli.reload_failed", path, err))
		return
	}
	src.Set(kcs)
	logging.Infof("%s", i18n.T("cli.reloaded", path, len(kcs)))
}
