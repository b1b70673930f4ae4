package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"pfm/config"
	pw "pfm/pkg/password"
	"pfm/store"
	"pfm/store/gormstore"
)

func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: failed to load .env: %v", err)
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	st, err := gormstore.Open(dsn, false)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	hash, err := pw.Hash(*password, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	if err := st.UpdatePasswordHash(context.Background(), *username, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Fatalf("user not found: %s", *username)
		}
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for user %s\n", *username)
}
