package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/parammap-backend/internal/app"
)

func main() {
	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Seed(ctx); err != nil {
		a.Log.Error("seed failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
