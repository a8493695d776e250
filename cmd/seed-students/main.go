package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/database"
	"github.com/jamgrade/jamgrade-backend/internal/logger"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Seeds student accounts from a CSV file with columns: name,email,password.
func main() {
	var csvPath string
	flag.StringVar(&csvPath, "file", "students.csv", "Path to the students CSV (name,email,password)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("Failed to open CSV")
	}
	defer f.Close()

	fmt.Printf("=== Seeding Students from %s ===\n", csvPath)

	reader := csv.NewReader(f)
	created := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Msg("CSV read error")
		}
		if len(record) < 3 {
			log.Warn().Strs("record", record).Msg("Skipping short record")
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(record[2]), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}

		student := &model.Student{
			Name:         record[0],
			Email:        record[1],
			PasswordHash: string(hash),
		}
		if err := userRepo.CreateStudent(ctx, student); err != nil {
			log.Warn().Err(err).Str("email", student.Email).Msg("Skipping student")
			continue
		}
		created++
	}

	fmt.Printf("Done. Created %d students.\n", created)
}
