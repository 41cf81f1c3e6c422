package database

import (
	"fmt"
	"log"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaultCategories(db)

	return db, nil
}

// Migrate is shared with the test suite, which runs it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.Evaluation{},
		&model.Question{},
		&model.QuestionOption{},
		&model.Attempt{},
		&model.AttemptAnswer{},
		&model.Certificate{},
		&model.Purchase{},
	)
}

func seedDefaultCategories(db *gorm.DB) {
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []model.Category{
		{Name: "Tecnologia", Slug: "tecnologia", Enabled: true},
		{Name: "Gestão", Slug: "gestao", Enabled: true},
		{Name: "Idiomas", Slug: "idiomas", Enabled: true},
		{Name: "Saúde", Slug: "saude", Enabled: true},
	}
	for _, c := range defaults {
		db.Create(&c)
	}
}
