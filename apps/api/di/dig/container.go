package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/semillerodigital/insights/apps/api/echo"
	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/core/dashboard"
	"github.com/semillerodigital/insights/core/notification"
	"github.com/semillerodigital/insights/services/chat"
	"github.com/semillerodigital/insights/services/classroom"
	"github.com/semillerodigital/insights/services/email"
	"github.com/semillerodigital/insights/services/logger"
	"github.com/semillerodigital/insights/storage/database"
	"github.com/semillerodigital/insights/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// ChannelsParam collects the notification channels, in delivery report order.
type ChannelsParam struct {
	dig.In
	Email    *emailsvc.Channel
	Discord  *chatsvc.Discord
	Telegram *chatsvc.Telegram
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(db, 10); err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

// newEmailService prints emails in DEV; without a SendGrid key, email delivery is disabled.
func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case conf.Debug:
		return emailsvc.NewConsoleService(conf)
	case conf.Notifications.SendgridApiKey != "":
		return emailsvc.NewSendgridService(conf)
	}
	logger.Warn("SENDGRID_API_KEY not set, email notifications are disabled")
	return nil
}

func newNotificationService(
	repo notification.Repository,
	validate *validator.Validate,
	logger core.Logger,
	channels ChannelsParam,
) *notification.Service {
	return notification.NewService(repo, validate, logger, channels.Email, channels.Discord, channels.Telegram)
}

func newServerDeps(
	syncSvc *classroom.Service,
	notificationSvc *notification.Service,
	cellSvc *cell.Service,
	dashboardSvc *dashboard.Service,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		SyncSvc:         syncSvc,
		NotificationSvc: notificationSvc,
		CellSvc:         cellSvc,
		DashboardSvc:    dashboardSvc,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// storage
	must(c.Provide(sqlxrepos.NewClassroomRepository))
	must(c.Provide(sqlxrepos.NewCellRepository))
	must(c.Provide(sqlxrepos.NewNotificationRepository))

	// providers & channels
	must(c.Provide(classroomsvc.NewProvider, dig.As(new(classroom.Provider))))
	must(c.Provide(newEmailService))
	must(c.Provide(emailsvc.NewChannel))
	must(c.Provide(chatsvc.NewDiscord))
	must(c.Provide(chatsvc.NewTelegram))

	// services
	must(c.Provide(classroom.NewService))
	must(c.Provide(newNotificationService))
	must(c.Provide(cell.NewService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
