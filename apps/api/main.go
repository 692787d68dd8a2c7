package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/semillerodigital/insights/apps/api/di/dig"
	"github.com/semillerodigital/insights/apps/api/echo"
	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/fs"
)

const dbPingTimeout = 5 * time.Second

// app is everything main needs out of the container.
type app struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	DBLogger   core.Logger `name:"dbLogger"`
	DB         *sqlx.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Server     *echoapi.Server
}

func main() {
	c := dig_container.New()
	if err := c.Invoke(run); err != nil {
		log.Fatal(err)
	}
}

func run(a app) error {
	a.Logger.Info(fmt.Sprintf("insights API starting : build %q, env %q", a.Conf.Build, a.Conf.Env))

	core.InitValidators(a.Validate, a.Translator)
	if err := core.ParseEmailTemplates(appfs.FS, false); err != nil {
		a.Logger.Error("parsing email templates", err)
	}

	defer func() {
		if err := a.DB.Close(); err != nil {
			a.DBLogger.Error("closing database", err)
		}
	}()
	defer a.Logger.Info("insights API stopped")

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	err := a.DB.PingContext(ctx)
	cancel()
	if err != nil {
		return errors.Wrapf(err, "reaching database at %s", a.Conf.Database.Address())
	}

	startDebugServer(a.Conf, a.Logger)
	go a.Server.Start()
	return waitForShutdown(a)
}

// startDebugServer serves /debug/pprof and /debug/vars on the default mux.
func startDebugServer(conf *core.Config, logger core.Logger) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("channels", expvar.Func(func() interface{} {
		n := conf.Notifications
		return map[string]bool{
			"email":    n.SendgridApiKey != "" || conf.Debug,
			"discord":  n.DiscordWebhookURL != "",
			"telegram": n.TelegramBotToken != "",
		}
	}))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()
}

func waitForShutdown(a app) error {
	select {
	case err := <-a.Server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-a.Server.ShutdownSignal():
		a.Logger.Info(fmt.Sprintf("%v: draining in-flight requests", sig))

		ctx, cancel := context.WithTimeout(context.Background(), a.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(ctx); err != nil {
			a.Logger.Error("could not stop server gracefully", err)
			if err = a.Server.Close(); err != nil {
				return errors.Wrap(err, "forcing server stop")
			}
		}
	}
	return nil
}
