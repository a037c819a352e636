package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"inkpost.backend/pkg/crypto"
)

var (
	stdin          io.Reader = os.Stdin
	stdout         io.Writer = os.Stdout
	generateHashFn           = generateHash
	fatalfFn                 = log.Fatalf
)

// resolvePassword takes the first argument, or the first line of in when there is none
func resolvePassword(args []string, in io.Reader) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required as an argument or on stdin")
	}
	return password, nil
}

func generateHash(password string, cost int) (string, error) {
	crypto.SetCost(cost)
	return crypto.HashPassword(password)
}

func run(args []string) error {
	fs := flag.NewFlagSet("hash-gen", flag.ContinueOnError)
	cost := fs.Int("cost", crypto.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := resolvePassword(fs.Args(), stdin)
	if err != nil {
		return err
	}
	hash, err := generateHashFn(password, *cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Bcrypt Hash: %s\n", hash)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fatalfFn("%v", err)
	}
}
