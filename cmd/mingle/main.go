package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"mingle/internal/app"
	"mingle/internal/common"
)

var (
	port   int
	driver string
	dsn    string
)

func main() {
	godotenv.Load()

	flag.IntVar(&port, "port", envInt("PORT", 3000), "Specify the app port.")
	flag.StringVar(&driver, "driver", envStr("DB_DRIVER", "sqlite3"), "Database driver: sqlite3 or pgx.")
	flag.StringVar(&dsn, "dsn", envStr("DB_DSN", "file:./mingle.db?_foreign_keys=on"), "Database connection string.")
	flag.Parse()

	a := new(app.App)
	if err := a.Run(port, driver, dsn); err != nil {
		panic(err)
	}
	common.InfoLogger.Println("Application runs")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
