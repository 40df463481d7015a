package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db.DB.DB,
		tx:       db,
		accounts: account.NewService(db, sqlxrepos.NewAccountRepository(db)),
		teachers: sqlxrepos.NewTeacherRepository(db),
		validate: validate,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if !errors.Is(err, errHelp) {
			var vErrs validator.ValidationErrors
			if errors.As(err, &vErrs) {
				for field, msg := range vErrs.Translate(translator) {
					logger.Error(fmt.Sprintf("%s: %s", field, msg), err)
				}
			} else {
				logger.Error(fmt.Sprintf("error: %v", err), err)
			}
		}
		os.Exit(1)
	}
}
