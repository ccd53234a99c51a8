package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"filemanager/internal/database"
	"filemanager/internal/domain"
)

// Seeds a local database with a demo account and a small folder tree so the
// API has something to serve right after startup.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "filemanager.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("db connect failed: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed: ", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM file_share")
	db.Exec("DELETE FROM file_info")
	db.Exec("DELETE FROM file_folder")
	db.Exec("DELETE FROM sys_user")

	ctx := context.Background()
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	demo := &domain.User{
		Username:     "demo",
		PasswordHash: string(hash),
		Nickname:     "Demo User",
		Email:        "demo@example.com",
		Status:       domain.UserActive,
		StorageLimit: 1 << 30,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := db.WithContext(ctx).Create(demo).Error; err != nil {
		log.Fatal("create demo user: ", err)
	}

	documents := &domain.FileFolder{
		FolderName:   "Documents",
		ParentID:     domain.RootFolderID,
		FolderPath:   "/",
		CreateUserID: demo.ID,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := db.WithContext(ctx).Create(documents).Error; err != nil {
		log.Fatal("create folder: ", err)
	}

	for _, name := range []string{"Photos", "Music"} {
		f := &domain.FileFolder{
			FolderName:   name,
			ParentID:     domain.RootFolderID,
			FolderPath:   "/",
			CreateUserID: demo.ID,
			Status:       domain.FileStatusNormal,
			CreateTime:   now,
			UpdateTime:   now,
		}
		if err := db.WithContext(ctx).Create(f).Error; err != nil {
			log.Fatal("create folder: ", err)
		}
	}

	reports := &domain.FileFolder{
		FolderName:   "Reports",
		ParentID:     documents.ID,
		FolderPath:   fmt.Sprintf("/%d/", documents.ID),
		CreateUserID: demo.ID,
		Status:       domain.FileStatusNormal,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := db.WithContext(ctx).Create(reports).Error; err != nil {
		log.Fatal("create folder: ", err)
	}

	log.Println("Seed complete. Login with demo / demo1234")
}
