// Command ledgerctl is an operator tool for the ledger server.
//
// Usage:
//
//	ledgerctl hash-secret <secret>
//	ledgerctl token -url http://localhost:8080 -client web -secret ... -user 42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/pkg/api"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "hash-secret":
		err = hashSecret(os.Args[2:])
	case "token":
		err = issueToken(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ledgerctl <hash-secret|token> [flags]")
}

// hashSecret prints the bcrypt hash to put in API_CLIENTS.
func hashSecret(args []string) error {
	if len(args) != 1 {
		return errors.New("hash-secret takes exactly one secret")
	}
	hash, err := auth.HashSecret(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

// issueToken asks a running server for a user token, as a front-end would.
func issueToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	baseURL := fs.String("url", "http://localhost:8080", "server base URL")
	clientID := fs.String("client", "", "client id")
	secret := fs.String("secret", os.Getenv("LEDGER_CLIENT_SECRET"), "client secret (default $LEDGER_CLIENT_SECRET)")
	userID := fs.Int64("user", 0, "user id to issue the token for")
	firstName := fs.String("first-name", "", "user first name")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := api.NewAuthServiceClient(http.DefaultClient, *baseURL)
	resp, err := client.IssueToken(ctx, connect.NewRequest(&api.IssueTokenRequest{
		ClientID:     *clientID,
		ClientSecret: *secret,
		User:         api.User{ID: *userID, FirstName: *firstName},
	}))
	if err != nil {
		return err
	}

	fmt.Println(resp.Msg.Token)
	fmt.Fprintln(os.Stderr, "expires:", time.Unix(resp.Msg.ExpiresAt, 0).Format(time.RFC3339))
	return nil
}
