package dig_container

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/makemyfuture/planner/apps/api/echo"
	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/catalog"
	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
	appfs "github.com/makemyfuture/planner/fs"
	emailsvc "github.com/makemyfuture/planner/services/email"
	logsvc "github.com/makemyfuture/planner/services/logger"
	"github.com/makemyfuture/planner/storage/database"
	sqlxdb "github.com/makemyfuture/planner/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sql.DB {
	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// embeddedCatalogSource serves the catalog document shipped with the binary,
// used when no external catalog file or URL is configured.
type embeddedCatalogSource string

func (src embeddedCatalogSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := appfs.FS.ReadFile(string(src))
	return data, errors.Wrapf(err, "reading embedded catalog %s", string(src))
}

func newCatalogLoader(conf *core.Config) *catalog.Loader {
	var src catalog.Source
	switch {
	case conf.Catalog.File != "":
		src = catalog.FileSource(conf.Catalog.File)
	case conf.Catalog.URL != "":
		src = catalog.HTTPSource{URL: conf.Catalog.URL}
	default:
		src = embeddedCatalogSource("assets/2021_2022_class_data.json")
	}
	return catalog.NewLoader(src)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxdb.NewUserRepository))
	must(c.Provide(sqlxdb.NewScheduleRepository))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(schedule.NewService, dig.As(new(schedule.ServiceInterface))))
	must(c.Provide(newCatalogLoader))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
