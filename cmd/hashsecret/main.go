// Command hashsecret prints a bcrypt hash of a client secret for use in
// AUTH_CLIENTS ("client_id:hash").
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/spec-kit/ticket-tools/internal/auth"
)

func main() {
	clientID := pflag.StringP("client", "c", "", "client id to prefix the hash with")
	cost := pflag.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	pflag.Parse()

	secret := pflag.Arg(0)
	if secret == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read secret: %v", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		log.Fatal("secret is required")
	}

	hashed, err := auth.HashSecret(secret, *cost)
	if err != nil {
		log.Fatalf("hash secret: %v", err)
	}
	if *clientID != "" {
		fmt.Printf("%s:%s\n", *clientID, hashed)
		return
	}
	fmt.Println(hashed)
}
