package main

import (
	"log"
	"os"
	"time"

	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/pkg/serverutils"
	"cortex-ai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// demoUserId is fixed so re-running the seeder is idempotent.
var demoUserId = uuid.MustParse("00000000-0000-4000-8000-000000000001")

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo workspace...")
	if err := seedWorkspace(db); err != nil {
		log.Fatalf("Error: seeding failed: %v", err)
	}
	log.Println("Workspace seeding completed!")

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		token, err := serverutils.SignUserToken(secret, demoUserId, 30*24*time.Hour)
		if err != nil {
			log.Fatalf("Error: failed to sign token: %v", err)
		}
		log.Printf("Demo user: %s", demoUserId)
		log.Printf("Bearer token: %s", token)
	}
}

func seedWorkspace(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Note{}).Where("user_id = ?", demoUserId).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo workspace already exists, skipping...")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		folder := model.Folder{Id: uuid.New(), Name: "Product", UserId: demoUserId}
		if err := tx.Create(&folder).Error; err != nil {
			return err
		}

		notes := []model.Note{
			{Id: uuid.New(), Title: "Roadmap", Content: "Q3: ship the composer. Q4: workspace search.", FolderId: &folder.Id, UserId: demoUserId},
			{Id: uuid.New(), Title: "Release checklist", Content: "Freeze, tag, changelog, announce.", FolderId: &folder.Id, UserId: demoUserId},
			{Id: uuid.New(), Title: "Reading list", Content: "Designing Data-Intensive Applications.", UserId: demoUserId},
		}
		if err := tx.Create(&notes).Error; err != nil {
			return err
		}

		file := model.File{
			Id:       uuid.New(),
			Name:     "q3-plan.pdf",
			Type:     "application/pdf",
			Size:     48213,
			Metadata: datatypes.JSON([]byte(`{"pages":4,"description":"Quarterly plan with milestones and owners."}`)),
			FolderId: &folder.Id,
			UserId:   demoUserId,
		}
		if err := tx.Create(&file).Error; err != nil {
			return err
		}

		log.Printf("Created folder %q with %d notes and 1 file", folder.Name, len(notes))
		return nil
	})
}
