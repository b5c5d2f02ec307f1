package models

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// All returns every model managed by AutoMigrate, in FK dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Asset{},
		&Tag{},
		&ProjectTag{},
		&Download{},
		&AnalyticsEvent{},
		&PageView{},
		&ProjectInteraction{},
		&SearchQuery{},
		&UploadStat{},
		&ErrorLog{},
	}
}

// Migrate runs AutoMigrate for the full schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

// GenerateModels migrates the schema and regenerates gorm query helpers
// under ./generated. Run with GENERATE_MODELS=true.
func GenerateModels(db *gorm.DB) {
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
		Logger:                 newLogger,
	})

	fmt.Println("Migrating models...")
	if err := Migrate(migrateDB); err != nil {
		fmt.Printf("Error during models migration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database migration completed successfully!")

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		User{},
		Project{},
		Asset{},
		Tag{},
		ProjectTag{},
		Download{},
		AnalyticsEvent{},
		PageView{},
		ProjectInteraction{},
		SearchQuery{},
		UploadStat{},
		ErrorLog{},
	)
	g.Execute()
	fmt.Println("Model generation complete!")
}
