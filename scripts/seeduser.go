// One-off: go run scripts/seeduser.go
// Creates a demo user with an initial balance of 500,000 COP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func main() {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "PG_DSN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		panic(err)
	}
	defer conn.Close(ctx)

	id := uuid.NewString()
	_, err = conn.Exec(ctx,
		`INSERT INTO users (id, name, email, phone, balance, channels)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, "Emmanuel", "sixtandev@gmail.com", "+573043543065",
		int64(50000000), []string{"email", "sms"},
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(id)
}
