package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pfm/config"
	"pfm/models"
	pw "pfm/pkg/password"
	"pfm/store"
	"pfm/store/gormstore"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <username> <password>")
		os.Exit(2)
	}
	username := strings.TrimSpace(os.Args[1])
	password := os.Args[2]
	if username == "" || password == "" {
		log.Fatal("username and password must not be empty")
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: failed to load .env: %v", err)
	}
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	st, err := gormstore.Open(dsn, true)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	// check existing
	if existing, err := st.GetUserByUsername(ctx, username); err == nil {
		fmt.Printf("user %s already exists (id=%s)\n", username, existing.ID)
		return
	}

	hpw, err := pw.Hash(password, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := models.User{Username: username, PasswordHash: hpw}
	if err := st.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fmt.Printf("user %s already exists\n", username)
			return
		}
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%s\n", username, user.ID)
}
