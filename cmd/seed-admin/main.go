// seed-admin creates a business with its base currency and default accounts, plus
// its first Admin user. Rerunning with an existing username only resets the password.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin --business "Factory" --email owner@example.com --username admin --password secret1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

func main() {
	businessName := flag.String("business", "", "Required for a new user: business name")
	email := flag.String("email", "", "Required for a new user: business email")
	username := flag.String("username", "admin", "Admin username")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "Admin password (or SEED_ADMIN_PASSWORD)")
	name := flag.String("name", "Factory Admin", "Admin display name")
	flag.Parse()

	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "--password must be at least 6 characters")
		os.Exit(1)
	}

	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", *username).First(&existing).Error
	if err == nil {
		hashed, err := utils.HashPassword(*password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}
		if err := db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"password": string(hashed),
			"role":     models.UserRoleAdmin,
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("updated admin user %q (business %s)\n", existing.Username, existing.BusinessId)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}

	if strings.TrimSpace(*businessName) == "" || strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "--business and --email are required to create a new admin")
		os.Exit(1)
	}
	biz, err := models.CreateBusiness(ctx, &models.NewBusiness{Name: *businessName, Email: *email})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create business: %v\n", err)
		os.Exit(1)
	}
	user, err := models.CreateUser(ctx, &models.NewUser{
		BusinessId: biz.ID,
		Username:   *username,
		Name:       *name,
		Password:   *password,
		Role:       models.UserRoleAdmin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created business %s and admin user %q\n", biz.ID, user.Username)
}
