package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/services/classroom"
	"github.com/semillerodigital/insights/services/logger"
	"github.com/semillerodigital/insights/storage/database"
	"github.com/semillerodigital/insights/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	errAndDie(logger, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer func() { _ = db.Close() }()
	errAndDie(logger, database.Ping(db, 10))

	classroomRepo := sqlxrepos.NewClassroomRepository(db)

	// start CLI
	cli := commandLine{
		conf:    conf,
		db:      db.DB,
		out:     os.Stdout,
		syncSvc: classroom.NewService(conf, classroomsvc.NewProvider(conf, logger), classroomRepo, validator.New(), logger),
		cellSvc: cell.NewService(sqlxrepos.NewCellRepository(db), classroomRepo, logger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
