package common

import (
	"log"
	"os"
)

var (
	InfoLogger    = log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	WarningLogger = log.New(os.Stdout, "WARNING\t", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger   = log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)
)
