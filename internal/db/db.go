package db

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var database *sqlx.DB

func InitDB() *sqlx.DB {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "pickem.db"
	}

	conn, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}

	_, err = conn.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database connected.")
	database = conn
	return conn
}

func GetDB() *sqlx.DB {
	return database
}
