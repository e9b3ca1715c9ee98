package database

import (
	"fmt"
	"log"

	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	logLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// Migrations run automatically outside release mode. Release deployments
	// opt in with -migrate or -migrate-only.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := db.AutoMigrate(
			&model.User{},
			&model.LearningEvent{},
		); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}
