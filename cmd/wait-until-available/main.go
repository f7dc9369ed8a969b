package main

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/dirk.krummacker/persons/internal/config"
	"gitlab.com/dirk.krummacker/persons/pkg/client"
)

// Usage example on the command line:
// > PERSONS_API_URL=http://localhost:8080 go run main.go
func main() {
	persons := client.New(config.LoadClient().APIURL)
	totalWaitTime := 0
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		all, err := persons.ListAll(ctx)
		cancel()
		if err == nil {
			fmt.Printf("Service is available with %d persons", len(all))
			fmt.Println()
			break
		}
		fmt.Println(err)
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
