package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/foliocms/folio/backend/internal/config"
	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/internal/repository"
	"github.com/foliocms/folio/backend/internal/service"
	"github.com/foliocms/folio/backend/pkg/database"
)

var defaultPermissions = strings.Join([]string{
	service.PermissionAdministerSiteConfig,
	service.PermissionAdministerUsers,
	service.PermissionAccessUserProfiles,
}, ",")

func main() {
	cfg := config.Load()

	userID := flag.Int64("user", 1, "Account id the token is issued for")
	name := flag.String("name", "admin", "Account name used with -create")
	create := flag.Bool("create", false, "Create the account with the administrator role if it does not exist")
	perms := flag.String("perms", defaultPermissions, "Comma separated permissions granted by the token")
	expMins := flag.Int("exp", cfg.Auth.TokenTTLMinutes, "Token expiration in minutes")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *userID == database.AnonymousUserID {
		fmt.Fprintln(os.Stderr, "Error: the anonymous account cannot hold a token")
		os.Exit(1)
	}

	if *create {
		if err := ensureAccount(cfg.Database.Path, *userID, *name); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating account: %v\n", err)
			os.Exit(1)
		}
	}

	var permissions []string
	for _, p := range strings.Split(*perms, ",") {
		if p = strings.TrimSpace(p); p != "" {
			permissions = append(permissions, p)
		}
	}

	ttl := time.Duration(*expMins) * time.Minute
	token, err := service.NewTokenService(cfg.Auth.JWTSecret, ttl).Issue(*userID, permissions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(ttl.Seconds()),
			"user_id":      *userID,
			"permissions":  permissions,
		})
		return
	}

	fmt.Println("Admin Token Generated")
	fmt.Println("=====================")
	fmt.Printf("User ID:      %d\n", *userID)
	fmt.Printf("Permissions:  %s\n", strings.Join(permissions, ", "))
	fmt.Printf("Expires:      %s\n", time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:%s/admin/people\n", token, cfg.Server.Port)
}

func ensureAccount(dbPath string, id int64, name string) error {
	db, err := database.Initialize(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		return err
	}

	ctx := context.Background()
	accounts := repository.NewAccountRepository(db)
	if _, err := accounts.GetByID(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	return accounts.Create(ctx, &models.Account{
		ID:        id,
		Name:      name,
		Mail:      name + "@localhost",
		IsActive:  true,
		Roles:     []string{"administrator"},
		CreatedAt: time.Now(),
	})
}
