// Dev tool: drops and recreates the schema with bun, then seeds a handful of
// users, workshops and discount codes for local testing.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/config"
	"ms-registration/internal/models"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()

	tables := []interface{}{
		(*models.Registration)(nil),
		(*models.Order)(nil),
		(*models.PendingOrder)(nil),
		(*models.Discount)(nil),
		(*models.Workshop)(nil),
		(*models.User)(nil),
	}
	for _, table := range tables {
		if _, err := db.NewDropTable().Model(table).IfExists().Exec(ctx); err != nil {
			log.Fatalf("drop table: %v", err)
		}
	}
	// Create in reverse so referenced tables exist first.
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewCreateTable().Model(tables[i]).Exec(ctx); err != nil {
			log.Fatalf("create table: %v", err)
		}
	}

	users := []models.User{
		{ID: uuid.NewString(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: time.Now()},
		{ID: uuid.NewString(), FirstName: "Dennis", LastName: "Ritchie", Email: "dennis@example.com", CreatedAt: time.Now()},
	}
	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	workshops := []models.Workshop{
		{ID: uuid.NewString(), Title: "Intro to Kernel Hacking", Price: 50000, Capacity: 40, IsRegOpen: true, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Title: "Container Internals", Price: 75000, Capacity: 30, IsRegOpen: true, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Title: "Lightning Talks", Price: 0, Capacity: 200, IsRegOpen: true, CreatedAt: time.Now()},
	}
	if _, err := db.NewInsert().Model(&workshops).Exec(ctx); err != nil {
		log.Fatalf("seed workshops: %v", err)
	}

	discounts := []models.Discount{
		{Code: "EARLYBIRD", Percent: 70, Count: 100},
		{Code: "STAFF", Percent: 0, Count: -1},
	}
	if _, err := db.NewInsert().Model(&discounts).Exec(ctx); err != nil {
		log.Fatalf("seed discounts: %v", err)
	}

	log.Printf("seeded %d users, %d workshops, %d discounts", len(users), len(workshops), len(discounts))
}
